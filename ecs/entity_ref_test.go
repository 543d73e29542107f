package ecs_test

import (
	"runtime"
	"testing"

	"github.com/plus3/blockfall/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefIsShared(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{})

	a := storage.Ref(id)
	b := storage.Ref(id)
	require.NotNil(t, a)
	assert.Same(t, a, b)

	resolved, ok := storage.Resolve(a)
	assert.True(t, ok)
	assert.Equal(t, id, resolved)
}

func TestRefUnknownEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{})

	assert.Nil(t, storage.Ref(ecs.NewEntityId(id.ArchetypeId(), 5)))
	assert.Nil(t, storage.Ref(ecs.NewEntityId(id.ArchetypeId()+1, 0)))

	_, ok := storage.Resolve(nil)
	assert.False(t, ok)
}

func TestRefRelease(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{})

	ref := storage.Ref(id)
	assert.True(t, storage.Release(ref))
	assert.False(t, storage.Release(ref))

	_, ok := storage.Resolve(ref)
	assert.False(t, ok)

	fresh := storage.Ref(id)
	require.NotNil(t, fresh)
	assert.NotSame(t, ref, fresh)
}

func TestRefTrackedWeakly(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{})

	ref := storage.Ref(id)
	assert.Equal(t, 1, storage.CollectStats().LiveRefCount)
	runtime.KeepAlive(ref)

	ref = nil
	runtime.GC()
	runtime.GC()

	assert.Equal(t, 0, storage.CollectStats().LiveRefCount)
	assert.NotNil(t, storage.Ref(id))
}
