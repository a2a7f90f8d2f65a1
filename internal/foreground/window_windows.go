//go:build windows

package foreground

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procRegisterClassExW = user32.NewProc("RegisterClassExW")
	procCreateWindowExW  = user32.NewProc("CreateWindowExW")
	procShowWindow       = user32.NewProc("ShowWindow")
	procGetMessageW      = user32.NewProc("GetMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessageW = user32.NewProc("DispatchMessageW")
	procDefWindowProcW   = user32.NewProc("DefWindowProcW")
	procPostQuitMessage  = user32.NewProc("PostQuitMessage")
	procPostMessageW     = user32.NewProc("PostMessageW")
)

const (
	wsOverlappedWindow = 0x00CF0000
	swShowNormal       = 1
	wmDestroy          = 0x0002
	wmClose            = 0x0010

	className = "hdrlaunchPlaceholder"
)

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type point struct{ X, Y int32 }

type msg struct {
	Hwnd    windows.HWND
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

var (
	registerOnce sync.Once
	registerErr  error
)

func wndProc(hwnd windows.HWND, message uint32, wParam, lParam uintptr) uintptr {
	if message == wmDestroy {
		procPostQuitMessage.Call(0)
		return 0
	}
	r, _, _ := procDefWindowProcW.Call(uintptr(hwnd), uintptr(message), wParam, lParam)
	return r
}

func registerClass(instance windows.Handle) error {
	registerOnce.Do(func() {
		name, err := windows.UTF16PtrFromString(className)
		if err != nil {
			registerErr = err
			return
		}
		wc := wndClassEx{
			WndProc:   windows.NewCallback(wndProc),
			Instance:  instance,
			ClassName: name,
		}
		wc.Size = uint32(unsafe.Sizeof(wc))
		if r, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
			registerErr = fmt.Errorf("RegisterClassExW: %w", err)
		}
	})
	return registerErr
}

type win32Window struct {
	hwnd windows.HWND
}

// Native returns a factory for a Win32 placeholder window. The display
// argument is ignored on Windows.
func Native(string) Factory {
	return func() (Window, error) {
		var instance windows.Handle
		if err := windows.GetModuleHandleEx(0, nil, &instance); err != nil {
			return nil, fmt.Errorf("GetModuleHandleEx: %w", err)
		}
		if err := registerClass(instance); err != nil {
			return nil, err
		}
		cls, _ := windows.UTF16PtrFromString(className)
		title, err := windows.UTF16PtrFromString(Title)
		if err != nil {
			return nil, err
		}
		hwnd, _, callErr := procCreateWindowExW.Call(0,
			uintptr(unsafe.Pointer(cls)),
			uintptr(unsafe.Pointer(title)),
			wsOverlappedWindow,
			0, 0, 1, 1,
			0, 0, uintptr(instance), 0)
		if hwnd == 0 {
			return nil, fmt.Errorf("CreateWindowExW: %w", callErr)
		}
		procShowWindow.Call(hwnd, swShowNormal)
		return &win32Window{hwnd: windows.HWND(hwnd)}, nil
	}
}

// Loop pumps the thread's message queue until WM_QUIT.
func (w *win32Window) Loop() {
	var m msg
	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		// 0 = WM_QUIT, -1 = error
		if int32(r) <= 0 {
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

// Close asks the owning thread to close the window.
func (w *win32Window) Close() error {
	if r, _, err := procPostMessageW.Call(uintptr(w.hwnd), wmClose, 0, 0); r == 0 {
		return fmt.Errorf("PostMessageW: %w", err)
	}
	return nil
}
