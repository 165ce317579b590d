package storage

import "errors"

// ErrAlbumNotFound возвращается, когда альбом с указанным токеном не найден
var ErrAlbumNotFound = errors.New("album not found")

// ErrTokenExhausted возвращается, когда исчерпан лимит попыток
// генерации уникальной пары токенов
var ErrTokenExhausted = errors.New("token generation attempts exhausted")
