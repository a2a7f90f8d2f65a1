package foreground

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	quit   chan struct{}
	closes atomic.Int32
}

func newFakeWindow() *fakeWindow { return &fakeWindow{quit: make(chan struct{})} }

func (w *fakeWindow) Loop() { <-w.quit }

func (w *fakeWindow) Close() error {
	if w.closes.Add(1) == 1 {
		close(w.quit)
	}
	return nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
}

func TestPlaceholderReadyThenClose(t *testing.T) {
	win := newFakeWindow()
	p := Start(func() (Window, error) { return win, nil }, discard())

	waitClosed(t, p.Ready())
	require.NoError(t, p.Err())

	p.Close()
	p.Close()
	assert.Equal(t, int32(1), win.closes.Load())
}

func TestPlaceholderCreationFailure(t *testing.T) {
	boom := errors.New("no display")
	p := Start(func() (Window, error) { return nil, boom }, discard())

	waitClosed(t, p.Ready())
	assert.ErrorIs(t, p.Err(), boom)
	p.Wait()
	p.Close()
}

func TestPlaceholderWaitReturnsWhenUserClosesWindow(t *testing.T) {
	win := newFakeWindow()
	p := Start(func() (Window, error) { return win, nil }, discard())
	waitClosed(t, p.Ready())

	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()

	// Simulates the user closing the window.
	require.NoError(t, win.Close())
	waitClosed(t, done)
}
