package rimage

import (
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"go.viam.com/depthtruth/utils"
)

// ConversionMethod selects how a distance becomes a pixel color.
type ConversionMethod int

const (
	// FloatBits stores the IEEE-754 bits of the distance big-endian in R, G, B, A. Lossless.
	FloatBits ConversionMethod = iota + 1
	// Grayscale maps [0, max] onto gray levels 0 to 255.
	Grayscale
	// Plasma maps [0, max] onto the plasma colormap.
	Plasma
)

// ParseConversionMethod accepts the method name or its number.
func ParseConversionMethod(s string) (ConversionMethod, error) {
	switch strings.ToLower(s) {
	case "1", "floatbits", "float":
		return FloatBits, nil
	case "2", "grayscale", "gray":
		return Grayscale, nil
	case "3", "plasma", "":
		return Plasma, nil
	default:
		return 0, utils.NewConfigurationError("unknown conversion method %q", s)
	}
}

func (m ConversionMethod) String() string {
	switch m {
	case FloatBits:
		return "floatbits"
	case Grayscale:
		return "grayscale"
	case Plasma:
		return "plasma"
	default:
		return "unknown"
	}
}

// plasma control points, evenly spaced.
var plasmaStops = mustParseHexes(
	"#0d0887", "#4c02a1", "#7e03a8", "#a92395", "#cc4778",
	"#e56b5d", "#f89441", "#fdc328", "#f0f921",
)

func mustParseHexes(hexes ...string) []colorful.Color {
	out := make([]colorful.Color, 0, len(hexes))
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

// PlasmaColor returns the plasma colormap value at t in [0, 1].
func PlasmaColor(t float64) color.NRGBA {
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(plasmaStops)-1)
	i := int(pos)
	if i >= len(plasmaStops)-1 {
		i = len(plasmaStops) - 2
	}
	c := plasmaStops[i].BlendRgb(plasmaStops[i+1], pos-float64(i)).Clamped()
	r, g, b := c.RGB255()
	return color.NRGBA{r, g, b, 255}
}

// normalize clips d to [0, max] and scales it to a level in [0, 255].
func normalize(d, max float32) uint8 {
	if max <= 0 || math.IsNaN(float64(d)) {
		return 0
	}
	if d > max {
		d = max
	}
	if d < 0 {
		d = 0
	}
	return uint8(math.Round(float64(d / max * 255)))
}

// DistanceColor converts a distance to a color using the given method.
func DistanceColor(d, max float32, method ConversionMethod) color.NRGBA {
	switch method {
	case FloatBits:
		bits := math.Float32bits(d)
		return color.NRGBA{uint8(bits >> 24), uint8(bits >> 16), uint8(bits >> 8), uint8(bits)}
	case Grayscale:
		v := normalize(d, max)
		return color.NRGBA{v, v, v, 255}
	default:
		return PlasmaColor(float64(normalize(d, max)) / 255)
	}
}

// ColorDistance inverts FloatBits encoding.
func ColorDistance(c color.NRGBA) float32 {
	return math.Float32frombits(uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A))
}
