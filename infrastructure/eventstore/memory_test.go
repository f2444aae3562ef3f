package eventstore

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, found, err := store.Get(ctx, "inexistente")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, "k", "v1"))
	require.NoError(t, store.Put(ctx, "k", "v2"))

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", value)
}

func TestMemoryStore_Ordered(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// Inserção fora de ordem deve ser lida ordenada por score
	require.NoError(t, store.AppendOrdered(ctx, "seq", 30, "c"))
	require.NoError(t, store.AppendOrdered(ctx, "seq", 10, "a"))
	require.NoError(t, store.AppendOrdered(ctx, "seq", 20, "b"))

	all, err := store.RangeOrdered(ctx, "seq", math.Inf(-1), math.Inf(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, all)

	partial, err := store.RangeOrdered(ctx, "seq", 10, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, partial)

	empty, err := store.RangeOrdered(ctx, "outra", math.Inf(-1), math.Inf(1))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStore_Ordered_ScoresEmpatadosPreservamChegada(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.AppendOrdered(ctx, "seq", 10, "primeiro"))
	require.NoError(t, store.AppendOrdered(ctx, "seq", 10, "segundo"))
	require.NoError(t, store.AppendOrdered(ctx, "seq", 10, "terceiro"))

	all, err := store.RangeOrdered(ctx, "seq", 10, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"primeiro", "segundo", "terceiro"}, all)
}

func TestMemoryStore_Increment(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value, err := store.Increment(ctx, "contador", 2.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, value)

	value, err = store.Increment(ctx, "contador", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 4.0, value)

	// Incremento zero serve de leitura
	value, err = store.Increment(ctx, "contador", 0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, value)
}

func TestMemoryStore_Increment_Concorrente(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const workers = 1000

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _ = store.Increment(ctx, "contador", 1)
		}()
	}
	wg.Wait()

	value, err := store.Increment(ctx, "contador", 0)
	require.NoError(t, err)
	assert.Equal(t, float64(workers), value)
}

func TestMemoryStore_Sets(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SetAdd(ctx, "usuarios", "u2"))
	require.NoError(t, store.SetAdd(ctx, "usuarios", "u1"))
	require.NoError(t, store.SetAdd(ctx, "usuarios", "u1"))

	members, err := store.SetMembers(ctx, "usuarios")
	require.NoError(t, err)

	// Adição é idempotente e a leitura sai ordenada
	assert.Equal(t, []string{"u1", "u2"}, members)

	empty, err := store.SetMembers(ctx, "vazio")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
