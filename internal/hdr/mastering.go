package hdr

import (
	"math"

	"github.com/1broseidon/hdrlaunch/internal/platform"
)

// BitsPerChannel is a requested output precision. The zero value lets the
// driver choose.
type BitsPerChannel uint8

const (
	BPCDefault BitsPerChannel = 0
	BPC6       BitsPerChannel = 6
	BPC8       BitsPerChannel = 8
	BPC10      BitsPerChannel = 10
	BPC12      BitsPerChannel = 12
	BPC16      BitsPerChannel = 16
)

// ParseBitsPerChannel validates a configured bit depth.
func ParseBitsPerChannel(v uint8) (BitsPerChannel, bool) {
	switch b := BitsPerChannel(v); b {
	case BPCDefault, BPC6, BPC8, BPC10, BPC12, BPC16:
		return b, true
	default:
		return BPCDefault, false
	}
}

// Vendor maps the bit depth onto the vendor enum. Unknown values map to the
// driver default.
func (b BitsPerChannel) Vendor() platform.BPC {
	switch b {
	case BPC6:
		return platform.BPC6
	case BPC8:
		return platform.BPC8
	case BPC10:
		return platform.BPC10
	case BPC12:
		return platform.BPC12
	case BPC16:
		return platform.BPC16
	default:
		return platform.BPCDefault
	}
}

// Colorimetry of the mastering display advertised with HDR output: BT.2020
// class primaries, a D65 white point and HDR10 light levels.
const (
	redX, redY     = 0.64, 0.33
	greenX, greenY = 0.30, 0.60
	blueX, blueY   = 0.15, 0.06
	whiteX, whiteY = 0.3127, 0.3290

	minMasteringLuminance = 1.0
	maxMasteringLuminance = 1000
	maxContentLightLevel  = 1000
	maxFrameAverageLevel  = 100

	chromaticityScale = 0xC350
	minLuminanceScale = 10000
)

func chromaticity(v float64) uint16 { return uint16(math.Ceil(v*chromaticityScale + 0.5)) }
func luminance(v float64) uint16    { return uint16(math.Ceil(v + 0.5)) }

// ComputeMastering returns the fixed mastering metadata in vendor fixed point.
func ComputeMastering() platform.MasteringData {
	return platform.MasteringData{
		DisplayPrimaryX0:             chromaticity(redX),
		DisplayPrimaryY0:             chromaticity(redY),
		DisplayPrimaryX1:             chromaticity(greenX),
		DisplayPrimaryY1:             chromaticity(greenY),
		DisplayPrimaryX2:             chromaticity(blueX),
		DisplayPrimaryY2:             chromaticity(blueY),
		DisplayWhitePointX:           chromaticity(whiteX),
		DisplayWhitePointY:           chromaticity(whiteY),
		MaxDisplayMasteringLuminance: luminance(maxMasteringLuminance),
		MinDisplayMasteringLuminance: uint16(math.Ceil(minMasteringLuminance*minLuminanceScale + 0.5)),
		MaxContentLightLevel:         luminance(maxContentLightLevel),
		MaxFrameAverageLightLevel:    luminance(maxFrameAverageLevel),
	}
}

// MasteringDescriptor is one HDR set or clear request.
type MasteringDescriptor struct {
	Enabled bool
	BPC     BitsPerChannel
}

// ColorData builds the vendor request. Disabling only clears the HDR mode;
// format and precision stay zero.
func (d MasteringDescriptor) ColorData() platform.ColorData {
	data := platform.ColorData{
		Mode:         platform.HDRModeOff,
		DynamicRange: platform.DynamicRangeAuto,
		Mastering:    ComputeMastering(),
	}
	if d.Enabled {
		data.Mode = platform.HDRModeUHDA
		data.ColorFormat = platform.ColorFormatRGB
		data.BPC = d.BPC.Vendor()
	}
	return data
}
