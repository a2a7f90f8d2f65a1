//go:build linux

package inhibit

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	screenSaverName = "org.freedesktop.ScreenSaver"
	screenSaverPath = "/org/freedesktop/ScreenSaver"
	appName         = "hdrlaunch"
)

// ScreenSaver inhibits through org.freedesktop.ScreenSaver on the session
// bus.
type ScreenSaver struct {
	mu     sync.Mutex
	conn   *dbus.Conn
	cookie uint32
	held   bool
}

// New returns the session-bus inhibitor.
func New() Inhibitor {
	return &ScreenSaver{}
}

func (s *ScreenSaver) Inhibit(reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held {
		return nil
	}

	if s.conn == nil {
		conn, err := dbus.SessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		s.conn = conn
	}

	var cookie uint32
	obj := s.conn.Object(screenSaverName, dbus.ObjectPath(screenSaverPath))
	if err := obj.Call(screenSaverName+".Inhibit", 0, appName, reason).Store(&cookie); err != nil {
		return fmt.Errorf("screensaver inhibit: %w", err)
	}
	s.cookie, s.held = cookie, true
	return nil
}

func (s *ScreenSaver) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.held {
		return nil
	}
	s.held = false
	// The shared session bus connection stays open.
	obj := s.conn.Object(screenSaverName, dbus.ObjectPath(screenSaverPath))
	if call := obj.Call(screenSaverName+".UnInhibit", 0, s.cookie); call.Err != nil {
		return fmt.Errorf("screensaver uninhibit: %w", call.Err)
	}
	return nil
}
