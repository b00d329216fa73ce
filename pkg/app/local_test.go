package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rejonpardenilla/minderal/pkg/store"
)

type failingGet struct {
	*store.Memory
	err error
}

func (f failingGet) Get(ctx context.Context, id string) (store.Doc, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.Memory.Get(ctx, id)
}

func TestGetOrCreateMissing(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()

	doc, err := GetOrCreate(ctx, db, "prefs")
	require.NoError(t, err)
	assert.Equal(t, store.Doc{store.IDField: "prefs"}, doc)

	stored, err := db.Get(ctx, "prefs")
	require.NoError(t, err)
	assert.Equal(t, doc, stored)
}

func TestGetOrCreateExisting(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()
	require.NoError(t, db.Put(ctx, store.Doc{store.IDField: "prefs", "theme": "dark"}))

	doc, err := GetOrCreate(ctx, db, "prefs")
	require.NoError(t, err)
	assert.Equal(t, "dark", doc["theme"])
}

func TestGetOrCreateOtherError(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	boom := errors.New("503 service unavailable")
	db := failingGet{Memory: mem, err: boom}

	doc, err := GetOrCreate(ctx, db, "prefs")
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, ErrLookup)
	assert.ErrorIs(t, err, boom)

	_, err = mem.Get(ctx, "prefs")
	assert.ErrorIs(t, err, store.ErrNotFound, "nothing must be created")
}
