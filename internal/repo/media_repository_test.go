package repo

import (
	"MediaKeeper/internal/model"
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func mkObject(ownerID int64, hash string) *model.MediaObject {
	return &model.MediaObject{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		FileName:    "cat.jpg",
		MimeType:    "image/jpeg",
		ContentHash: hash,
		Size:        3,
		Content:     []byte{1, 2, 3},
	}
}

func TestMediaRepository_CreateIfAbsent_Dedup(t *testing.T) {
	db := newTestDB(t)
	r := NewMediaRepository(db)
	ctx := context.Background()

	first := mkObject(101, "deadbeef")
	created, got, err := r.CreateIfAbsent(ctx, first)
	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, first.ID, got.ID)

	// повторная загрузка того же содержимого тем же владельцем —
	// запись не дублируется, возвращается существующая
	created, got, err = r.CreateIfAbsent(ctx, mkObject(101, "deadbeef"))
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, got.ID)

	// тот же хеш у другого владельца — отдельная запись
	created, _, err = r.CreateIfAbsent(ctx, mkObject(202, "deadbeef"))
	assert.NoError(t, err)
	assert.True(t, created)
}

// Конкурентные одинаковые загрузки: ровно одна запись, проигравшие
// получают выигравший объект.
func TestMediaRepository_CreateIfAbsent_Race(t *testing.T) {
	db := newTestDB(t)
	r := NewMediaRepository(db)
	ctx := context.Background()

	const workers = 8
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, got, err := r.CreateIfAbsent(ctx, mkObject(55, "cafebabe"))
			if err != nil {
				t.Errorf("CreateIfAbsent: %v", err)
				return
			}
			ids[i] = got.ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Equal(t, ids[0], ids[i], "all uploads must resolve to one object")
	}

	objs, err := r.ListByOwner(ctx, 55)
	assert.NoError(t, err)
	assert.Len(t, objs, 1)
}

func TestMediaRepository_GetListDelete(t *testing.T) {
	db := newTestDB(t)
	r := NewMediaRepository(db)
	ctx := context.Background()

	obj := mkObject(7, "hash-1")
	obj.IsEncrypted = true
	obj.WrappedKey = "d2tleQ=="
	_, _, err := r.CreateIfAbsent(ctx, obj)
	assert.NoError(t, err)

	got, err := r.GetByID(ctx, obj.ID)
	assert.NoError(t, err)
	assert.True(t, got.IsEncrypted)
	assert.Equal(t, "d2tleQ==", got.WrappedKey)
	assert.Equal(t, []byte{1, 2, 3}, got.Content)

	// листинг не тянет содержимое
	objs, err := r.ListByOwner(ctx, 7)
	assert.NoError(t, err)
	assert.Len(t, objs, 1)
	assert.Empty(t, objs[0].Content)

	// удаление чужого — 0 строк
	n, err := r.Delete(ctx, 999, obj.ID)
	assert.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.Delete(ctx, 7, obj.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = r.GetByID(ctx, obj.ID)
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}
