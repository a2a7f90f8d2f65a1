// Package foreground keeps a small placeholder window on screen while the
// launched application starts, so streaming hosts always have a foreground
// window to capture.
package foreground

import (
	"log/slog"
	"runtime"
	"sync"
)

// Title is the caption of the placeholder window.
const Title = "hdrlaunch - do not close"

// Window is a native window with a blocking message loop.
type Window interface {
	// Loop dispatches events until the window is destroyed.
	Loop()
	// Close destroys the window from any goroutine.
	Close() error
}

// Factory creates a window on the calling OS thread.
type Factory func() (Window, error)

// Placeholder runs a window on its own locked OS thread.
type Placeholder struct {
	logger *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
	closeOnce sync.Once

	win Window
	err error
}

// Start creates the window on a dedicated goroutine and pumps its messages.
// Ready is signalled once the window exists or its creation failed.
func Start(factory Factory, logger *slog.Logger) *Placeholder {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Placeholder{
		logger: logger,
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
	go p.run(factory)
	return p
}

func (p *Placeholder) run(factory Factory) {
	defer close(p.done)
	// Native windows belong to the thread that created them.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	win, err := factory()
	p.win, p.err = win, err
	p.signalReady()
	if err != nil {
		p.logger.Warn("failed to create placeholder window", "error", err)
		return
	}
	p.logger.Info("placeholder window created", "title", Title)
	win.Loop()
	p.logger.Info("placeholder window closed")
}

func (p *Placeholder) signalReady() {
	p.readyOnce.Do(func() { close(p.ready) })
}

// Ready is closed once the window is up or failed to come up.
func (p *Placeholder) Ready() <-chan struct{} {
	return p.ready
}

// Err reports a creation failure. Only valid after Ready.
func (p *Placeholder) Err() error {
	<-p.ready
	return p.err
}

// Wait blocks until the message loop exits.
func (p *Placeholder) Wait() {
	<-p.done
}

// Done is closed when the message loop exits, including when the user
// closes the window.
func (p *Placeholder) Done() <-chan struct{} {
	return p.done
}

// Close destroys the window and waits for the loop to exit.
func (p *Placeholder) Close() {
	p.closeOnce.Do(func() {
		<-p.ready
		if p.win != nil {
			if err := p.win.Close(); err != nil {
				p.logger.Warn("failed to close placeholder window", "error", err)
			}
		}
	})
	<-p.done
}
