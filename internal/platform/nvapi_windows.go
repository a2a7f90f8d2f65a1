//go:build windows

package platform

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// NVAPI exports a single resolver; every entry point is looked up by id.
const (
	nvidInitialize               = 0x0150E828
	nvidUnload                   = 0xD22BDD7E
	nvidEnumPhysicalGPUs         = 0xE5AC921F
	nvidGPUGetConnectedDisplayID = 0x0078DBA2
	nvidDispGetHdrCapabilities   = 0x84F2A8DF
	nvidDispHdrColorControl      = 0x351DA224

	nvMaxPhysicalGPUs = 64

	nvHDRCmdSet            = 0
	nvStaticMetadataType1  = 0
	nvCapST2084EotfSupport = 1 << 0
)

type nvDisplayIDs struct {
	Version       uint32
	ConnectorType int32
	DisplayID     uint32
	Flags         uint32
}

type nvHDRCapabilities struct {
	Version                    uint32
	Flags                      uint32
	StaticMetadataDescriptorID uint32
	DisplayData                [11]uint16
}

type nvHDRColorData struct {
	Version                    uint32
	Cmd                        uint32
	HDRMode                    uint32
	StaticMetadataDescriptorID uint32
	Mastering                  MasteringData
	HDRColorFormat             uint32
	HDRDynamicRange            uint32
	HDRBpc                     uint32
}

func nvVersion(size uintptr, ver uint32) uint32 {
	return uint32(size) | ver<<16
}

// NvAPI is the NVIDIA vendor HDR API loaded from nvapi64.dll.
type NvAPI struct {
	dll   *windows.LazyDLL
	query *windows.LazyProc
}

var _ HDRVendor = (*NvAPI)(nil)

// NewNvAPI prepares the loader; the DLL is only touched by Open.
func NewNvAPI() *NvAPI {
	dll := windows.NewLazySystemDLL(nvapiDLLName())
	return &NvAPI{dll: dll, query: dll.NewProc("nvapi_QueryInterface")}
}

func nvapiDLLName() string {
	if unsafe.Sizeof(uintptr(0)) == 8 {
		return "nvapi64.dll"
	}
	return "nvapi.dll"
}

func (n *NvAPI) fn(id uint32) uintptr {
	r1, _, _ := n.query.Call(uintptr(id))
	return r1
}

func (n *NvAPI) call(id uint32, args ...uintptr) Status {
	ptr := n.fn(id)
	if ptr == 0 {
		return StatusNotSupported
	}
	r1, _, _ := syscall.SyscallN(ptr, args...)
	return Status(int32(r1))
}

// Open loads the library and initializes a session.
func (n *NvAPI) Open() (HDRSession, Status) {
	if err := n.query.Find(); err != nil {
		return nil, StatusLibraryNotFound
	}
	if st := n.call(nvidInitialize); !st.OK() {
		return nil, st
	}
	return &nvSession{api: n}, StatusOK
}

type nvSession struct {
	api *NvAPI
}

func (s *nvSession) Close() Status {
	return s.api.call(nvidUnload)
}

func (s *nvSession) PhysicalGPUs() ([]GPUHandle, Status) {
	var handles [nvMaxPhysicalGPUs]uintptr
	var count uint32
	st := s.api.call(nvidEnumPhysicalGPUs,
		uintptr(unsafe.Pointer(&handles[0])),
		uintptr(unsafe.Pointer(&count)))
	if !st.OK() {
		return nil, st
	}
	out := make([]GPUHandle, 0, count)
	for i := uint32(0); i < count && i < nvMaxPhysicalGPUs; i++ {
		out = append(out, GPUHandle(handles[i]))
	}
	return out, StatusOK
}

func (s *nvSession) ConnectedDisplayIDs(gpu GPUHandle, buf []DisplayID) (int, Status) {
	count := uint32(len(buf))
	if len(buf) == 0 {
		st := s.api.call(nvidGPUGetConnectedDisplayID, uintptr(gpu), 0, uintptr(unsafe.Pointer(&count)), 0)
		return int(count), st
	}

	raw := make([]nvDisplayIDs, len(buf))
	for i := range raw {
		raw[i].Version = nvVersion(unsafe.Sizeof(raw[i]), 3)
	}
	st := s.api.call(nvidGPUGetConnectedDisplayID, uintptr(gpu),
		uintptr(unsafe.Pointer(&raw[0])), uintptr(unsafe.Pointer(&count)), 0)
	if !st.OK() {
		return 0, st
	}
	n := min(int(count), len(buf))
	for i := 0; i < n; i++ {
		buf[i] = DisplayID(raw[i].DisplayID)
	}
	return int(count), StatusOK
}

func (s *nvSession) HDRCapabilities(id DisplayID) (HDRCapabilities, Status) {
	var caps nvHDRCapabilities
	caps.Version = nvVersion(unsafe.Sizeof(caps), 1)
	st := s.api.call(nvidDispGetHdrCapabilities, uintptr(id), uintptr(unsafe.Pointer(&caps)))
	if !st.OK() {
		return HDRCapabilities{}, st
	}
	return HDRCapabilities{SupportsST2084: caps.Flags&nvCapST2084EotfSupport != 0}, StatusOK
}

func (s *nvSession) SetHDRColor(id DisplayID, data ColorData) Status {
	color := nvHDRColorData{
		Cmd:                        nvHDRCmdSet,
		HDRMode:                    uint32(data.Mode),
		StaticMetadataDescriptorID: nvStaticMetadataType1,
		Mastering:                  data.Mastering,
		HDRColorFormat:             uint32(data.ColorFormat),
		HDRDynamicRange:            uint32(data.DynamicRange),
		HDRBpc:                     uint32(data.BPC),
	}
	color.Version = nvVersion(unsafe.Sizeof(color), 2)
	return s.api.call(nvidDispHdrColorControl, uintptr(id), uintptr(unsafe.Pointer(&color)))
}
