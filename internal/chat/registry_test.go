package chat_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantedge/relay/internal/chat"
)

func TestRegistryAddRemoveCount(t *testing.T) {
	r := chat.NewRegistry()
	assert.Equal(t, 0, r.Count())

	r.Add("a", &fakeOutbox{})
	r.Add("b", &fakeOutbox{})
	assert.Equal(t, 2, r.Count())

	// Duplicate add overwrites, it never double-counts.
	r.Add("a", &fakeOutbox{})
	assert.Equal(t, 2, r.Count())

	assert.True(t, r.Remove("a"))
	assert.Equal(t, 1, r.Count())

	// Removing an unknown identifier is a no-op.
	assert.False(t, r.Remove("a"))
	assert.False(t, r.Remove("never-registered"))
	assert.Equal(t, 1, r.Count())
}

func TestRegistryGet(t *testing.T) {
	r := chat.NewRegistry()
	out := &fakeOutbox{}
	r.Add("a", out)

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Same(t, out, got)

	_, ok = r.Get("b")
	assert.False(t, ok)
}

func TestRegistrySnapshot(t *testing.T) {
	r := chat.NewRegistry()
	r.Add("a", &fakeOutbox{})
	r.Add("b", &fakeOutbox{})

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 2)

	// Mutating the registry after the snapshot does not affect it.
	r.Remove("a")
	assert.Len(t, snapshot, 2)
	assert.Equal(t, 1, r.Count())
}

func TestRegistryConcurrentLifecycles(t *testing.T) {
	r := chat.NewRegistry()
	const connections = 64

	var wg sync.WaitGroup
	for i := 0; i < connections; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			r.Add(id, &fakeOutbox{})
		}(fmt.Sprintf("conn-%d", i))
	}
	wg.Wait()
	assert.Equal(t, connections, r.Count())

	for i := 0; i < connections; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			r.Remove(id)
			r.Remove(id)
		}(fmt.Sprintf("conn-%d", i))
	}
	wg.Wait()
	assert.Equal(t, 0, r.Count())
}
