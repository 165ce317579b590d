// Package token генерирует публичные и секретные токены альбомов и изображений.
// Роль токена определяется его длиной: 8 символов — публичный, 16 — токен удаления.
package token

import (
	"crypto/rand"
	mrand "math/rand"
	"time"
)

// Alphabet содержит 62 допустимых символа токена
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	// PublicLength длина публичного токена (используется в ссылках)
	PublicLength = 8
	// DeletionLength длина секретного токена удаления
	DeletionLength = 16
)

// maxUnbiasedByte — граница отбраковки при выборке символа по байту:
// значения выше дали бы первым символам алфавита лишнюю вероятность
const maxUnbiasedByte = 256 - 256%len(Alphabet)

// New генерирует случайную строку длины n из алфавита Alphabet.
// Равномерная выборка с возвращением; байты выше границы отбраковываются,
// иначе остаток по модулю 62 искажал бы распределение. Уникальность здесь
// не гарантируется, её обеспечивает хранилище повтором генерации при
// конфликте вставки.
func New(n int) string {
	out := make([]byte, 0, n)
	buf := make([]byte, n)

	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			// Крайне маловероятный случай: переходим на источник,
			// инициализированный текущим временем
			return newFallback(n)
		}

		for _, v := range buf {
			if int(v) >= maxUnbiasedByte {
				continue
			}
			out = append(out, Alphabet[int(v)%len(Alphabet)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out)
}

// newFallback генерирует токен без crypto/rand. Intn выбирает индекс
// в границах алфавита, поэтому отбраковка здесь не нужна.
func newFallback(n int) string {
	r := mrand.New(mrand.NewSource(time.Now().UnixNano()))
	out := make([]byte, n)
	for i := range out {
		out[i] = Alphabet[r.Intn(len(Alphabet))]
	}
	return string(out)
}

// NewPair генерирует пару токенов: публичный (8 символов) и токен удаления (16 символов)
func NewPair() (public string, deletion string) {
	return New(PublicLength), New(DeletionLength)
}
