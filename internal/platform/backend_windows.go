//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                     = windows.NewLazySystemDLL("user32.dll")
	procEnumDisplaySettingsW   = user32.NewProc("EnumDisplaySettingsW")
	procChangeDisplaySettingsW = user32.NewProc("ChangeDisplaySettingsW")
)

const (
	enumCurrentSettings  = 0xFFFFFFFF
	enumRegistrySettings = 0xFFFFFFFE

	dmPelsWidth        = 0x00080000
	dmPelsHeight       = 0x00100000
	dmDisplayFrequency = 0x00400000

	cdsUpdateRegistry = 0x00000001
)

// devMode mirrors DEVMODEW (display variant of the unions).
type devMode struct {
	DeviceName         [32]uint16
	SpecVersion        uint16
	DriverVersion      uint16
	Size               uint16
	DriverExtra        uint16
	Fields             uint32
	PositionX          int32
	PositionY          int32
	DisplayOrientation uint32
	DisplayFixedOutput uint32
	Color              int16
	Duplex             int16
	YResolution        int16
	TTOption           int16
	Collate            int16
	FormName           [32]uint16
	LogPixels          uint16
	BitsPerPel         uint32
	PelsWidth          uint32
	PelsHeight         uint32
	DisplayFlags       uint32
	DisplayFrequency   uint32
	ICMMethod          uint32
	ICMIntent          uint32
	MediaType          uint32
	DitherType         uint32
	Reserved1          uint32
	Reserved2          uint32
	PanningWidth       uint32
	PanningHeight      uint32
}

func newDevMode() devMode {
	var dm devMode
	dm.Size = uint16(unsafe.Sizeof(dm))
	return dm
}

// WindowsDisplay drives the primary monitor through user32.
type WindowsDisplay struct{}

var _ DisplaySettings = WindowsDisplay{}

// NewNative returns the user32 display backend and the NVAPI HDR vendor.
// The display argument is ignored on Windows.
func NewNative(display string) (*Backend, error) {
	if err := procEnumDisplaySettingsW.Find(); err != nil {
		return nil, fmt.Errorf("user32 display settings unavailable: %w", err)
	}
	return NewBackend("win32", WindowsDisplay{}, NewNvAPI()), nil
}

func enumDisplaySettings(index uint32) (devMode, bool) {
	dm := newDevMode()
	r1, _, _ := procEnumDisplaySettingsW.Call(0, uintptr(index), uintptr(unsafe.Pointer(&dm)))
	return dm, r1 != 0
}

// CurrentMode returns ENUM_CURRENT_SETTINGS.
func (WindowsDisplay) CurrentMode() (DisplayMode, error) {
	dm, ok := enumDisplaySettings(enumCurrentSettings)
	if !ok {
		return DisplayMode{}, fmt.Errorf("EnumDisplaySettings(ENUM_CURRENT_SETTINGS) failed")
	}
	return modeFromDevMode(dm), nil
}

// SavedMode returns ENUM_REGISTRY_SETTINGS.
func (WindowsDisplay) SavedMode() (DisplayMode, error) {
	dm, ok := enumDisplaySettings(enumRegistrySettings)
	if !ok {
		return DisplayMode{}, fmt.Errorf("EnumDisplaySettings(ENUM_REGISTRY_SETTINGS) failed")
	}
	return modeFromDevMode(dm), nil
}

// Modes enumerates graphics modes until the API reports no more.
func (WindowsDisplay) Modes() ([]DisplayMode, error) {
	var modes []DisplayMode
	for i := uint32(0); ; i++ {
		dm, ok := enumDisplaySettings(i)
		if !ok {
			break
		}
		modes = append(modes, modeFromDevMode(dm))
	}
	if len(modes) == 0 {
		return nil, fmt.Errorf("EnumDisplaySettings returned no modes")
	}
	return modes, nil
}

// ApplyMode calls ChangeDisplaySettingsW. Snapshots are re-applied with all
// of their original fields.
func (WindowsDisplay) ApplyMode(mode DisplayMode, persist bool) ChangeResult {
	dm, ok := mode.Raw.(devMode)
	if !ok {
		dm = newDevMode()
		dm.PelsWidth = mode.Width
		dm.PelsHeight = mode.Height
		dm.Fields = dmPelsWidth | dmPelsHeight
		if mode.RefreshHz != 0 {
			dm.DisplayFrequency = mode.RefreshHz
			dm.Fields |= dmDisplayFrequency
		}
	}

	var flags uint32
	if persist {
		flags = cdsUpdateRegistry
	}
	r1, _, _ := procChangeDisplaySettingsW.Call(uintptr(unsafe.Pointer(&dm)), uintptr(flags))
	return ChangeResult(int32(r1))
}

func modeFromDevMode(dm devMode) DisplayMode {
	return DisplayMode{
		Width:     dm.PelsWidth,
		Height:    dm.PelsHeight,
		RefreshHz: dm.DisplayFrequency,
		Raw:       dm,
	}
}
