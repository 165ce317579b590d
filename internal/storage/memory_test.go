package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryStorage_CreateAndFind(t *testing.T) {
	ms := NewMemoryStorage(zap.NewNop())
	ctx := context.Background()

	album, err := ms.CreateAlbum(ctx, "vacation")
	require.NoError(t, err)
	assert.Len(t, album.Token, 8)
	assert.Len(t, album.DeletionToken, 16)
	assert.Equal(t, "vacation", album.Title)

	found, err := ms.FindAlbumByToken(ctx, album.Token)
	require.NoError(t, err)
	assert.Equal(t, album.ID, found.ID)
	assert.Equal(t, album.DeletionToken, found.DeletionToken)

	// Отсутствие альбома — не ошибка хранилища, а ErrAlbumNotFound
	_, err = ms.FindAlbumByToken(ctx, "doesnotexist")
	assert.ErrorIs(t, err, ErrAlbumNotFound)
}

func TestMemoryStorage_AppendAndOrder(t *testing.T) {
	ms := NewMemoryStorage(zap.NewNop())
	ctx := context.Background()

	album, err := ms.CreateAlbum(ctx, "")
	require.NoError(t, err)

	urls := []string{
		"https://i.imgur.com/a.png",
		"https://i.imgur.com/b.png",
		"https://i.imgur.com/c.png",
	}
	for i, u := range urls {
		_, err := ms.AppendImage(ctx, album, u, i)
		require.NoError(t, err)
	}

	count, err := ms.ImageCount(ctx, album)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	got, err := ms.ImageURLs(ctx, album)
	require.NoError(t, err)
	assert.Equal(t, urls, got)
}

func TestMemoryStorage_InsertImageAt_Shift(t *testing.T) {
	ms := NewMemoryStorage(zap.NewNop())
	ctx := context.Background()

	album, err := ms.CreateAlbum(ctx, "")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := ms.AppendImage(ctx, album, fmt.Sprintf("https://i.imgur.com/%d.png", i), i)
		require.NoError(t, err)
	}

	// Вставка в середину: хвост сдвигается, голова не меняется
	img, err := ms.InsertImageAt(ctx, album, "https://i.imgur.com/new.png", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Index)

	count, err := ms.ImageCount(ctx, album)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	got, err := ms.ImageURLs(ctx, album)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://i.imgur.com/0.png",
		"https://i.imgur.com/1.png",
		"https://i.imgur.com/new.png",
		"https://i.imgur.com/2.png",
		"https://i.imgur.com/3.png",
	}, got)
}

func TestMemoryStorage_InsertImageAt_Concurrent(t *testing.T) {
	ms := NewMemoryStorage(zap.NewNop())
	ctx := context.Background()

	album, err := ms.CreateAlbum(ctx, "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := ms.AppendImage(ctx, album, fmt.Sprintf("https://i.imgur.com/%d.png", i), i)
		require.NoError(t, err)
	}

	// Конкурирующие вставки в одну позицию не должны порождать
	// дубликаты индексов
	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			_, err := ms.InsertImageAt(ctx, album, fmt.Sprintf("https://i.imgur.com/w%d.png", w), 1)
			assert.NoError(t, err)
		}(w)
	}
	wg.Wait()

	count, err := ms.ImageCount(ctx, album)
	require.NoError(t, err)
	assert.Equal(t, 3+workers, count)

	ms.mu.RLock()
	seen := make(map[int]int)
	for _, img := range ms.images[album.ID] {
		seen[img.Index]++
	}
	ms.mu.RUnlock()

	for idx, n := range seen {
		assert.Equal(t, 1, n, "индекс %d встречается %d раз", idx, n)
	}
}

func TestMemoryStorage_TokensUnique(t *testing.T) {
	ms := NewMemoryStorage(zap.NewNop())
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		album, err := ms.CreateAlbum(ctx, "")
		require.NoError(t, err)

		_, ok := seen[album.Token]
		require.False(t, ok)
		seen[album.Token] = struct{}{}

		_, ok = seen[album.DeletionToken]
		require.False(t, ok)
		seen[album.DeletionToken] = struct{}{}
	}
}
