package watermark

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// White is the fallback watermark color.
var White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

type namedColor struct {
	name string
	rgb  color.NRGBA
}

// Values follow the classic AWT constants so existing presets look the same.
var namedColors = []namedColor{
	{"white", White},
	{"black", color.NRGBA{0, 0, 0, 255}},
	{"red", color.NRGBA{255, 0, 0, 255}},
	{"green", color.NRGBA{0, 255, 0, 255}},
	{"blue", color.NRGBA{0, 0, 255, 255}},
	{"yellow", color.NRGBA{255, 255, 0, 255}},
	{"orange", color.NRGBA{255, 200, 0, 255}},
	{"pink", color.NRGBA{255, 175, 175, 255}},
}

var colorAliases = map[string]string{
	"白色": "white",
	"黑色": "black",
	"红色": "red",
	"绿色": "green",
	"蓝色": "blue",
	"黄色": "yellow",
	"橙色": "orange",
	"粉色": "pink",
}

// ColorFallback reports an input that could not be parsed as a color.
type ColorFallback struct {
	Input  string
	Reason string
}

func (e *ColorFallback) Error() string {
	return fmt.Sprintf("color %q: %s, using white", e.Input, e.Reason)
}

// ResolveColor parses a color name, #RRGGBB or r,g,b triple.
// The returned color is always usable; a non-nil error explains why white
// was substituted.
func ResolveColor(input string) (color.NRGBA, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return White, nil
	}
	if alias, ok := colorAliases[s]; ok {
		s = alias
	}
	for _, nc := range namedColors {
		if nc.name == s {
			return nc.rgb, nil
		}
	}

	if strings.HasPrefix(s, "#") && len(s) == 7 {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return White, &ColorFallback{Input: input, Reason: "invalid hex digits"}
		}
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
	}

	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) == 3 {
			return parseTriple(input, parts)
		}
	}

	return White, &ColorFallback{Input: input, Reason: "unrecognized format"}
}

func parseTriple(input string, parts []string) (color.NRGBA, error) {
	var vals [3]uint8
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return White, &ColorFallback{Input: input, Reason: fmt.Sprintf("invalid channel %q", strings.TrimSpace(p))}
		}
		if v < 0 || v > 255 {
			return White, &ColorFallback{Input: input, Reason: fmt.Sprintf("channel %d out of range 0-255", v)}
		}
		vals[i] = uint8(v)
	}
	return color.NRGBA{R: vals[0], G: vals[1], B: vals[2], A: 255}, nil
}

// DescribeColor returns the preset name for c, or RGB(r,g,b).
func DescribeColor(c color.NRGBA) string {
	for _, nc := range namedColors {
		if nc.rgb == c {
			return nc.name
		}
	}
	return fmt.Sprintf("RGB(%d,%d,%d)", c.R, c.G, c.B)
}
