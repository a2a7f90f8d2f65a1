package platform

import "fmt"

// DisplayMode describes one display mode: either the live mode read from the
// system or a desired mode built from configuration.
type DisplayMode struct {
	Width     uint32
	Height    uint32
	RefreshHz uint32 // 0 = unspecified
	// Raw carries backend-specific fields (DEVMODEW bytes, RandR ids) so a
	// snapshot can be re-applied exactly. Nil for modes built from config.
	Raw any
}

// String formats the mode as WxH@R.
func (m DisplayMode) String() string {
	return fmt.Sprintf("%dx%d@%d", m.Width, m.Height, m.RefreshHz)
}

// ChangeResult is the numeric result of a display mode change. Values follow
// the Win32 DISP_CHANGE_* codes; other backends map onto them.
type ChangeResult int32

const (
	ChangeSuccessful  ChangeResult = 0
	ChangeRestart     ChangeResult = 1
	ChangeFailed      ChangeResult = -1
	ChangeBadMode     ChangeResult = -2
	ChangeNotUpdated  ChangeResult = -3
	ChangeBadFlags    ChangeResult = -4
	ChangeBadParam    ChangeResult = -5
	ChangeBadDualView ChangeResult = -6
)

func (r ChangeResult) String() string {
	switch r {
	case ChangeSuccessful:
		return "successful"
	case ChangeRestart:
		return "restart required"
	case ChangeFailed:
		return "failed"
	case ChangeBadMode:
		return "bad mode"
	case ChangeNotUpdated:
		return "registry not updated"
	case ChangeBadFlags:
		return "bad flags"
	case ChangeBadParam:
		return "bad parameter"
	case ChangeBadDualView:
		return "bad dual view"
	default:
		return fmt.Sprintf("result %d", int32(r))
	}
}

// DisplaySettings abstracts the machine-wide display mode store of the
// primary monitor.
type DisplaySettings interface {
	// CurrentMode returns the active mode.
	CurrentMode() (DisplayMode, error)
	// SavedMode returns the mode the OS remembers across sessions (the
	// registry on Windows). Backends without such a store return the
	// current mode.
	SavedMode() (DisplayMode, error)
	// Modes lists every mode the monitor supports.
	Modes() ([]DisplayMode, error)
	// ApplyMode switches to mode. When persist is set the change is written
	// to the remembered configuration; otherwise it is volatile.
	ApplyMode(mode DisplayMode, persist bool) ChangeResult
}

// Status is a vendor HDR API status code.
type Status int32

const (
	StatusOK               Status = 0
	StatusError            Status = -1
	StatusLibraryNotFound  Status = -2
	StatusNotInitialized   Status = -4
	StatusNvidiaDeviceNone Status = -6
	StatusInvalidArgument  Status = -5
	StatusNotSupported     Status = -104
)

// OK reports whether the status is a success.
func (s Status) OK() bool { return s == StatusOK }

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "generic error"
	case StatusLibraryNotFound:
		return "library not found"
	case StatusNotInitialized:
		return "api not initialized"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusNvidiaDeviceNone:
		return "no nvidia device found"
	case StatusNotSupported:
		return "not supported"
	default:
		return fmt.Sprintf("status %d", int32(s))
	}
}

// GPUHandle identifies a physical GPU within one vendor session.
type GPUHandle uintptr

// DisplayID identifies a display output connected to a GPU.
type DisplayID uint32

// HDRCapabilities is the subset of the vendor capability report the launcher
// needs.
type HDRCapabilities struct {
	SupportsST2084 bool
}

// HDRMode is the vendor HDR output mode.
type HDRMode uint32

const (
	HDRModeOff  HDRMode = 0
	HDRModeUHDA HDRMode = 2
)

// ColorFormat is the pixel encoding requested together with HDR.
type ColorFormat uint32

const ColorFormatRGB ColorFormat = 0

// DynamicRange is the signal range requested together with HDR.
type DynamicRange uint32

const (
	DynamicRangeVESA DynamicRange = 0
	DynamicRangeCEA  DynamicRange = 1
	DynamicRangeAuto DynamicRange = 2
)

// BPC is the vendor encoding of bits per color channel.
type BPC uint32

const (
	BPCDefault BPC = 0
	BPC6       BPC = 1
	BPC8       BPC = 2
	BPC10      BPC = 3
	BPC12      BPC = 4
	BPC16      BPC = 5
)

// MasteringData holds mastering display metadata in vendor fixed point.
type MasteringData struct {
	DisplayPrimaryX0             uint16
	DisplayPrimaryY0             uint16
	DisplayPrimaryX1             uint16
	DisplayPrimaryY1             uint16
	DisplayPrimaryX2             uint16
	DisplayPrimaryY2             uint16
	DisplayWhitePointX           uint16
	DisplayWhitePointY           uint16
	MaxDisplayMasteringLuminance uint16
	MinDisplayMasteringLuminance uint16
	MaxContentLightLevel         uint16
	MaxFrameAverageLightLevel    uint16
}

// ColorData is one HDR set request for a display.
type ColorData struct {
	Mode         HDRMode
	ColorFormat  ColorFormat
	DynamicRange DynamicRange
	BPC          BPC
	Mastering    MasteringData
}

// HDRVendor opens sessions against the vendor display-control API.
type HDRVendor interface {
	Open() (HDRSession, Status)
}

// HDRSession is an initialized vendor API handle. It is not safe for
// concurrent use.
type HDRSession interface {
	Close() Status
	PhysicalGPUs() ([]GPUHandle, Status)
	// ConnectedDisplayIDs fills buf with connected display IDs and returns
	// how many there are. A nil buf only reports the count.
	ConnectedDisplayIDs(gpu GPUHandle, buf []DisplayID) (int, Status)
	HDRCapabilities(id DisplayID) (HDRCapabilities, Status)
	SetHDRColor(id DisplayID, data ColorData) Status
}

// Backend bundles the collaborators available on the running platform.
// HDR is nil when no vendor API exists for the platform.
type Backend struct {
	Name     string
	Display  DisplaySettings
	HDR      HDRVendor
	closeFns []func()
}

// NewBackend assembles a backend; closers run in reverse order on Close.
func NewBackend(name string, display DisplaySettings, hdr HDRVendor, closers ...func()) *Backend {
	return &Backend{Name: name, Display: display, HDR: hdr, closeFns: closers}
}

// Close releases backend resources.
func (b *Backend) Close() {
	if b == nil {
		return
	}
	for i := len(b.closeFns) - 1; i >= 0; i-- {
		b.closeFns[i]()
	}
	b.closeFns = nil
}
