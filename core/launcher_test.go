package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// TestGoroutineLauncher_CreateRunsEntry verifies context creation
// Given: A goroutine launcher
// When: Create is called with an entry function
// Then: The entry runs and the handle's Done channel closes when it returns
func TestGoroutineLauncher_CreateRunsEntry(t *testing.T) {
	g := NewGoroutineLauncher(zerolog.Nop())

	ran := make(chan struct{})
	h, err := g.Create(func(ctx context.Context) {
		close(ran)
	}, LaunchSpec{Name: "entry"})

	require.NoError(t, err)
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("entry never ran")
	}
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("handle never signalled completion")
	}
	require.Equal(t, "entry", h.Spec().Name)
}

// TestGoroutineLauncher_TerminateCancelsContext verifies forced teardown
// Given: A running execution context blocked on its context
// When: Terminate is called
// Then: The entry's context is cancelled and the handle reports termination
func TestGoroutineLauncher_TerminateCancelsContext(t *testing.T) {
	g := NewGoroutineLauncher(zerolog.Nop())

	unblocked := make(chan struct{})
	h, err := g.Create(func(ctx context.Context) {
		<-ctx.Done()
		close(unblocked)
	}, LaunchSpec{Name: "blocked"})
	require.NoError(t, err)

	g.Terminate(h)

	select {
	case <-unblocked:
	case <-time.After(time.Second):
		t.Fatal("terminate did not cancel the entry context")
	}
	require.True(t, h.Terminated())

	// Idempotent.
	g.Terminate(h)
	g.Terminate(nil)
}

// TestGoroutineLauncher_NilEntry verifies the failure path
func TestGoroutineLauncher_NilEntry(t *testing.T) {
	g := NewGoroutineLauncher(zerolog.Nop())

	h, err := g.Create(nil, LaunchSpec{})

	require.Error(t, err)
	require.Nil(t, h)
}
