package hdr

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/hdrlaunch/internal/platform"
	"github.com/1broseidon/hdrlaunch/internal/platform/simulated"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newController(t *testing.T, vendor *simulated.HDR) *Controller {
	t.Helper()
	c, err := NewController(vendor, discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSetHDRModeAggregatesWithOr(t *testing.T) {
	outcomes := [][]bool{
		{},
		{true},
		{false},
		{true, false},
		{false, true},
		{false, false},
		{true, true, true},
		{false, false, false, true},
	}
	for _, set := range outcomes {
		t.Run(fmt.Sprint(set), func(t *testing.T) {
			displays := make([]simulated.HDRDisplay, 0, len(set))
			want := false
			for i, ok := range set {
				d := simulated.HDRDisplay{ID: platform.DisplayID(100 + i), SupportsHDR: true}
				if !ok {
					d.SetStatus = platform.StatusError
				}
				want = want || ok
				displays = append(displays, d)
			}
			vendor := simulated.NewHDR(displays...)
			c := newController(t, vendor)

			got, err := c.SetHDRMode(true, BPC10)
			assert.Equal(t, want, got)
			assert.Len(t, vendor.Calls(), len(set), "every display is attempted")

			failures := 0
			for _, ok := range set {
				if !ok {
					failures++
				}
			}
			if failures == 0 {
				assert.NoError(t, err)
				return
			}
			var hdrErr *Error
			require.True(t, errors.As(err, &hdrErr))
			assert.Equal(t, KindApply, hdrErr.Kind)
			assert.Equal(t, platform.StatusError, hdrErr.Status)
		})
	}
}

func TestSetHDRModeSkipsDisplaysWithoutST2084(t *testing.T) {
	vendor := simulated.NewHDR(
		simulated.HDRDisplay{ID: 1, SupportsHDR: false},
		simulated.HDRDisplay{ID: 2, SupportsHDR: true},
	)
	c := newController(t, vendor)

	ok, err := c.SetHDRMode(true, BPCDefault)
	require.NoError(t, err)
	assert.True(t, ok)

	calls := vendor.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, platform.DisplayID(2), calls[0].ID)
	assert.Equal(t, platform.HDRModeUHDA, vendor.Mode(2))
}

func TestSetHDRModeDisable(t *testing.T) {
	vendor := simulated.NewHDR(simulated.HDRDisplay{ID: 7, SupportsHDR: true})
	c := newController(t, vendor)

	_, err := c.SetHDRMode(true, BPC12)
	require.NoError(t, err)
	ok, err := c.SetHDRMode(false, BPC12)
	require.NoError(t, err)
	assert.True(t, ok)

	calls := vendor.Calls()
	require.Len(t, calls, 2)
	off := calls[1].Data
	assert.Equal(t, platform.HDRModeOff, off.Mode)
	assert.Equal(t, platform.BPCDefault, off.BPC)
	assert.Equal(t, platform.DynamicRangeAuto, off.DynamicRange)
	assert.Equal(t, ComputeMastering(), off.Mastering)
	assert.Equal(t, platform.HDRModeOff, vendor.Mode(7))
}

func TestScanFailsClosed(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*simulated.HDR)
	}{
		{"gpu enumeration", func(h *simulated.HDR) { h.EnumStatus = platform.StatusNvidiaDeviceNone }},
		{"no gpu", func(h *simulated.HDR) { h.NoGPU = true }},
		{"display count", func(h *simulated.HDR) { h.CountStatus = platform.StatusError }},
		{"display fetch", func(h *simulated.HDR) { h.FetchStatus = platform.StatusInvalidArgument }},
		{"capability query", func(h *simulated.HDR) { h.Displays[1].CapStatus = platform.StatusNotSupported }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendor := simulated.NewHDR(
				simulated.HDRDisplay{ID: 1, SupportsHDR: true},
				simulated.HDRDisplay{ID: 2, SupportsHDR: true},
			)
			tt.setup(vendor)
			c := newController(t, vendor)

			assert.Empty(t, c.Displays())
			ok, err := c.SetHDRMode(true, BPC8)
			assert.False(t, ok)
			assert.NoError(t, err)
			assert.Empty(t, vendor.Calls())
		})
	}
}

func TestNewControllerUnavailable(t *testing.T) {
	vendor := simulated.NewHDR()
	vendor.OpenStatus = platform.StatusLibraryNotFound

	_, err := NewController(vendor, discard())
	var hdrErr *Error
	require.True(t, errors.As(err, &hdrErr))
	assert.Equal(t, KindUnavailable, hdrErr.Kind)
	assert.Equal(t, platform.StatusLibraryNotFound, hdrErr.Status)

	_, err = NewController(nil, discard())
	require.True(t, errors.As(err, &hdrErr))
	assert.Equal(t, KindUnavailable, hdrErr.Kind)
}

func TestCloseReleasesSessionOnce(t *testing.T) {
	vendor := simulated.NewHDR()
	c, err := NewController(vendor, discard())
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	opened, closed := vendor.Sessions()
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, closed)
}

func TestComputeMastering(t *testing.T) {
	m := ComputeMastering()

	assert.Equal(t, uint16(32001), m.DisplayPrimaryX0)
	assert.Equal(t, uint16(16501), m.DisplayPrimaryY0)
	assert.Equal(t, uint16(15001), m.DisplayPrimaryX1)
	assert.Equal(t, uint16(30001), m.DisplayPrimaryY1)
	assert.Equal(t, uint16(7501), m.DisplayPrimaryX2)
	assert.Equal(t, uint16(3001), m.DisplayPrimaryY2)
	assert.Equal(t, uint16(15636), m.DisplayWhitePointX)
	assert.Equal(t, uint16(16451), m.DisplayWhitePointY)
	assert.Equal(t, uint16(1001), m.MaxDisplayMasteringLuminance)
	assert.Equal(t, uint16(10001), m.MinDisplayMasteringLuminance)
	assert.Equal(t, uint16(1001), m.MaxContentLightLevel)
	assert.Equal(t, uint16(101), m.MaxFrameAverageLightLevel)
}

func TestColorDataEnabled(t *testing.T) {
	data := MasteringDescriptor{Enabled: true, BPC: BPC10}.ColorData()

	assert.Equal(t, platform.HDRModeUHDA, data.Mode)
	assert.Equal(t, platform.ColorFormatRGB, data.ColorFormat)
	assert.Equal(t, platform.DynamicRangeAuto, data.DynamicRange)
	assert.Equal(t, platform.BPC10, data.BPC)
}

func TestParseBitsPerChannel(t *testing.T) {
	for _, v := range []uint8{0, 6, 8, 10, 12, 16} {
		got, ok := ParseBitsPerChannel(v)
		assert.True(t, ok, "bpc %d", v)
		assert.Equal(t, BitsPerChannel(v), got)
	}
	for _, v := range []uint8{1, 7, 9, 11, 24, 255} {
		got, ok := ParseBitsPerChannel(v)
		assert.False(t, ok, "bpc %d", v)
		assert.Equal(t, BPCDefault, got)
	}
}

func TestVendorBPCMapping(t *testing.T) {
	assert.Equal(t, platform.BPCDefault, BPCDefault.Vendor())
	assert.Equal(t, platform.BPC6, BPC6.Vendor())
	assert.Equal(t, platform.BPC8, BPC8.Vendor())
	assert.Equal(t, platform.BPC10, BPC10.Vendor())
	assert.Equal(t, platform.BPC12, BPC12.Vendor())
	assert.Equal(t, platform.BPC16, BPC16.Vendor())
	assert.Equal(t, platform.BPCDefault, BitsPerChannel(7).Vendor())
}
