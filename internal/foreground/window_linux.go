//go:build linux

package foreground

import "github.com/1broseidon/hdrlaunch/internal/x11"

// Native returns a factory for an X11 placeholder window on display
// (empty = $DISPLAY).
func Native(display string) Factory {
	return func() (Window, error) {
		win, err := x11.NewPlaceholderWindow(display, Title)
		if err != nil {
			return nil, err
		}
		return win, nil
	}
}
