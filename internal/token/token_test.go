package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPair_Lengths(t *testing.T) {
	public, deletion := NewPair()
	assert.Len(t, public, PublicLength)
	assert.Len(t, deletion, DeletionLength)
}

func TestNew_Alphabet(t *testing.T) {
	// Все символы токена должны принадлежать 62-символьному алфавиту
	for i := 0; i < 100; i++ {
		tok := New(DeletionLength)
		for _, c := range tok {
			assert.True(t, strings.ContainsRune(Alphabet, c),
				"символ %q вне алфавита в токене %q", c, tok)
		}
	}
}

func TestNewPair_Uniqueness(t *testing.T) {
	// На большом числе генераций не должно быть ни одного совпадения
	const n = 10000

	publics := make(map[string]struct{}, n)
	deletions := make(map[string]struct{}, n)

	for i := 0; i < n; i++ {
		public, deletion := NewPair()

		_, ok := publics[public]
		require.False(t, ok, "повтор публичного токена %q", public)
		publics[public] = struct{}{}

		_, ok = deletions[deletion]
		require.False(t, ok, "повтор токена удаления %q", deletion)
		deletions[deletion] = struct{}{}
	}
}

func TestAlphabetSize(t *testing.T) {
	assert.Len(t, Alphabet, 62)
}

func TestNew_UniformDistribution(t *testing.T) {
	// Частоты символов должны быть близки к равномерным. Выборка по байту
	// без отбраковки давала бы первым восьми символам алфавита в 1.25 раза
	// большую частоту (~4844 при 248000 символах), что выходит за верхнюю
	// границу; честное распределение держится около 4000 на символ.
	const total = 248000

	counts := make(map[byte]int, len(Alphabet))
	for generated := 0; generated < total; generated += DeletionLength {
		tok := New(DeletionLength)
		for i := 0; i < len(tok); i++ {
			counts[tok[i]]++
		}
	}

	for i := 0; i < len(Alphabet); i++ {
		c := counts[Alphabet[i]]
		assert.Greater(t, c, 3500, "символ %q встречается слишком редко", Alphabet[i])
		assert.Less(t, c, 4500, "символ %q встречается слишком часто", Alphabet[i])
	}
}
