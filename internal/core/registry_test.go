package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func authorizedSession(id, nickname string) *Session {
	s := NewSession(id, "", 4)
	s.Authorize(nickname)
	return s
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	a := authorizedSession("a", "Alice")
	b := authorizedSession("b", "Bob")
	r.Add(a)
	r.Add(b)

	require.True(t, r.Remove(a))
	require.Equal(t, []string{"Bob"}, r.ListAuthorizedNicknames())

	require.False(t, r.Remove(a))
	require.Equal(t, []string{"Bob"}, r.ListAuthorizedNicknames())

	require.False(t, r.Remove(NewSession("ghost", "", 1)))
}

func TestRegistryListSkipsUnauthorizedAndKeepsOrder(t *testing.T) {
	r := NewRegistry()
	r.Add(authorizedSession("1", "Carol"))
	r.Add(NewSession("2", "", 1))
	r.Add(authorizedSession("3", "Alice"))
	r.Add(authorizedSession("4", "Bob"))

	require.Equal(t, []string{"Carol", "Alice", "Bob"}, r.ListAuthorizedNicknames())

	total, authorized := r.Counts()
	require.Equal(t, 4, total)
	require.Equal(t, 3, authorized)
}

func TestRegistryFindByNickname(t *testing.T) {
	r := NewRegistry()
	pending := NewSession("0", "", 1)
	first := authorizedSession("1", "Alice")
	second := authorizedSession("2", "Alice")
	r.Add(pending)
	r.Add(first)
	r.Add(second)

	require.Same(t, first, r.FindByNickname("Alice"), "first match in insertion order wins")
	require.Nil(t, r.FindByNickname("Bob"))
	require.Nil(t, r.FindByNickname(""), "unauthorized sessions never match")
}

func TestRegistryDrain(t *testing.T) {
	r := NewRegistry()
	a := authorizedSession("a", "Alice")
	b := NewSession("b", "", 1)
	r.Add(a)
	r.Add(b)

	drained := r.Drain()
	require.Equal(t, []*Session{a, b}, drained)
	require.False(t, r.Contains(a))

	total, _ := r.Counts()
	require.Zero(t, total)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	const workers = 16
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := authorizedSession(fmt.Sprint(i), fmt.Sprintf("user%d", i))
			r.Add(s)
			_ = r.ListAuthorizedNicknames()
			_ = r.FindByNickname(s.Nickname())
			if i%2 == 0 {
				r.Remove(s)
				r.Remove(s)
			}
		}(i)
	}
	wg.Wait()

	total, authorized := r.Counts()
	require.Equal(t, workers/2, total)
	require.Equal(t, workers/2, authorized)
	require.Len(t, r.ListAuthorizedNicknames(), workers/2)
}
