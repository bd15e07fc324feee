package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

var (
	ErrUnknownColormap = errors.New("unknown colormap")
	ErrBadColor        = errors.New("bad color")
)

// Perceptually ordered control points; moreland interpolates between them
// with monotonic luminance.
var (
	viridisControls = []string{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"}
	plasmaControls  = []string{"#0d0887", "#7e03a8", "#cc4778", "#f89540", "#f0f921"}
)

func luminance(hexes []string) func() (palette.ColorMap, error) {
	return func() (palette.ColorMap, error) {
		controls := make([]color.Color, len(hexes))
		for i, h := range hexes {
			c, err := ParseHexColor(h)
			if err != nil {
				return nil, err
			}
			controls[i] = c
		}
		return moreland.NewLuminance(controls)
	}
}

func fixed(fn func() palette.ColorMap) func() (palette.ColorMap, error) {
	return func() (palette.ColorMap, error) { return fn(), nil }
}

var colormaps = map[string]func() (palette.ColorMap, error){
	"viridis":            luminance(viridisControls),
	"plasma":             luminance(plasmaControls),
	"kindlmann":          fixed(moreland.Kindlmann),
	"extended-kindlmann": fixed(moreland.ExtendedKindlmann),
	"blackbody":          fixed(moreland.BlackBody),
	"extended-blackbody": fixed(moreland.ExtendedBlackBody),
	"bluered":            func() (palette.ColorMap, error) { return moreland.SmoothBlueRed(), nil },
}

// Colormaps lists the accepted colormap names.
func Colormaps() []string {
	names := make([]string, 0, len(colormaps))
	for name := range colormaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ColorScale maps identity values onto a colormap, linearly over [Min, Max].
// Values outside the range take the color of the nearest end.
type ColorScale struct {
	Name string
	Min  float64
	Max  float64
	cmap palette.ColorMap
}

func NewColorScale(name string, min, max float64) (*ColorScale, error) {
	build, ok := colormaps[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownColormap, name, strings.Join(Colormaps(), ", "))
	}
	if !(min < max) {
		return nil, fmt.Errorf("colormap range [%g, %g] is empty", min, max)
	}
	cmap, err := build()
	if err != nil {
		return nil, fmt.Errorf("colormap %s: %w", name, err)
	}
	cmap.SetMax(max)
	cmap.SetMin(min)
	return &ColorScale{Name: name, Min: min, Max: max, cmap: cmap}, nil
}

func (s *ColorScale) clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < s.Min:
		return s.Min
	case v > s.Max:
		return s.Max
	}
	return v
}

// At returns the color for v.
func (s *ColorScale) At(v float64) color.Color {
	c, err := s.cmap.At(s.clamp(v))
	if err != nil {
		c, _ = s.cmap.At(s.Min)
	}
	return c
}

// ParseHexColor reads #RRGGBB or #RRGGBBAA.
func ParseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 && len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// withAlpha returns c with its opacity replaced by alpha in [0, 1].
func withAlpha(c color.Color, alpha float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(alpha*255 + 0.5)
	return n
}

// hexOf formats c as #RRGGBB, ignoring alpha.
func hexOf(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B)
}
