package storage

import "github.com/anonalbum/anonalbum/internal/token"

// newUniquePair генерирует пару токенов, отсутствующую в used, и помечает
// оба токена занятыми. Используется хранилищами без ограничений уникальности
// на уровне базы. Вызывается под мьютексом хранилища.
func newUniquePair(used map[string]struct{}) (string, string, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		public, deletion := token.NewPair()

		if _, ok := used[public]; ok {
			continue
		}
		if _, ok := used[deletion]; ok {
			continue
		}

		used[public] = struct{}{}
		used[deletion] = struct{}{}
		return public, deletion, nil
	}
	return "", "", ErrTokenExhausted
}
