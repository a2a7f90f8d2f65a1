package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// PlaceholderWindow is a 1x1 window that gives the session a foreground
// window while a launched application starts. It owns its own connection so
// its event loop never competes with other X11 users.
type PlaceholderWindow struct {
	conn        *Connection
	win         *xwindow.Window
	destroyOnce sync.Once
}

// NewPlaceholderWindow creates and maps the window.
func NewPlaceholderWindow(display, title string) (*PlaceholderWindow, error) {
	conn, err := NewConnection(display)
	if err != nil {
		return nil, err
	}

	win, err := xwindow.Generate(conn.XUtil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	win.Create(conn.Root, 0, 0, 1, 1,
		xproto.CwBackPixel|xproto.CwEventMask,
		0, xproto.EventMaskStructureNotify)

	if err := ewmh.WmNameSet(conn.XUtil, win.Id, title); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set window title: %w", err)
	}
	if err := icccm.WmProtocolsSet(conn.XUtil, win.Id, []string{"WM_DELETE_WINDOW"}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set wm protocols: %w", err)
	}

	p := &PlaceholderWindow{conn: conn, win: win}

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		xevent.Quit(xu)
	}).Connect(conn.XUtil, win.Id)

	deleteAtom, err := xprop.Atm(conn.XUtil, "WM_DELETE_WINDOW")
	if err == nil {
		xevent.ClientMessageFun(func(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
			if ev.Format == 32 && xproto.Atom(ev.Data.Data32[0]) == deleteAtom {
				p.destroy()
			}
		}).Connect(conn.XUtil, win.Id)
	}

	win.Map()
	return p, nil
}

// Loop dispatches events until the window is destroyed, then disconnects.
func (p *PlaceholderWindow) Loop() {
	p.conn.EventLoop()
	p.conn.Close()
}

// Close destroys the window; Loop returns once the destroy event arrives.
func (p *PlaceholderWindow) Close() error {
	p.destroy()
	return nil
}

func (p *PlaceholderWindow) destroy() {
	p.destroyOnce.Do(func() {
		xproto.DestroyWindow(p.conn.XUtil.Conn(), p.win.Id)
	})
}
