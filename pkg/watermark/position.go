package watermark

import (
	"fmt"
	"strings"
)

// Anchor is one of the nine places a watermark can be pinned to.
type Anchor int

const (
	TopLeft Anchor = iota
	TopCenter
	TopRight
	CenterLeft
	Center
	CenterRight
	BottomLeft
	BottomCenter
	BottomRight
)

// DefaultAnchor is used for unknown position tokens.
const DefaultAnchor = BottomRight

var anchorCodes = [...]string{
	TopLeft:      "tl",
	TopCenter:    "tc",
	TopRight:     "tr",
	CenterLeft:   "cl",
	Center:       "c",
	CenterRight:  "cr",
	BottomLeft:   "bl",
	BottomCenter: "bc",
	BottomRight:  "br",
}

var anchorDescriptions = [...]string{
	TopLeft:      "top left",
	TopCenter:    "top center",
	TopRight:     "top right",
	CenterLeft:   "center left",
	Center:       "center",
	CenterRight:  "center right",
	BottomLeft:   "bottom left",
	BottomCenter: "bottom center",
	BottomRight:  "bottom right",
}

var anchorTokens = map[string]Anchor{
	"tl": TopLeft, "topleft": TopLeft, "左上": TopLeft, "左上角": TopLeft,
	"tc": TopCenter, "topcenter": TopCenter, "顶部居中": TopCenter, "上中": TopCenter,
	"tr": TopRight, "topright": TopRight, "右上": TopRight, "右上角": TopRight,
	"cl": CenterLeft, "centerleft": CenterLeft, "左侧居中": CenterLeft, "左中": CenterLeft,
	"c": Center, "center": Center, "居中": Center, "中心": Center,
	"cr": CenterRight, "centerright": CenterRight, "右侧居中": CenterRight, "右中": CenterRight,
	"bl": BottomLeft, "bottomleft": BottomLeft, "左下": BottomLeft, "左下角": BottomLeft,
	"bc": BottomCenter, "bottomcenter": BottomCenter, "底部居中": BottomCenter, "下中": BottomCenter,
	"br": BottomRight, "bottomright": BottomRight, "右下": BottomRight, "右下角": BottomRight,
}

func (a Anchor) valid() bool {
	return a >= TopLeft && a <= BottomRight
}

// String returns the short code (tl, c, br, ...).
func (a Anchor) String() string {
	if !a.valid() {
		return fmt.Sprintf("Anchor(%d)", int(a))
	}
	return anchorCodes[a]
}

// Description returns a human readable name for reports.
func (a Anchor) Description() string {
	if !a.valid() {
		return anchorDescriptions[DefaultAnchor]
	}
	return anchorDescriptions[a]
}

// column is 0 (left), 1 (center) or 2 (right); row is 0 (top), 1 (middle) or 2 (bottom).
func (a Anchor) column() int { return int(a) % 3 }
func (a Anchor) row() int    { return int(a) / 3 }

// UnknownAnchor reports a position token that fell back to DefaultAnchor.
type UnknownAnchor struct {
	Token string
}

func (e *UnknownAnchor) Error() string {
	return fmt.Sprintf("unknown position %q, using %s", e.Token, DefaultAnchor)
}

// ResolveAnchor maps a position token to an Anchor. Matching ignores case,
// dashes, underscores and spaces, so "bottom-right" and "BottomRight" are
// equivalent. Unknown tokens resolve to DefaultAnchor together with an
// *UnknownAnchor diagnostic.
func ResolveAnchor(token string) (Anchor, error) {
	key := strings.ToLower(strings.TrimSpace(token))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	if a, ok := anchorTokens[key]; ok {
		return a, nil
	}
	return DefaultAnchor, &UnknownAnchor{Token: token}
}
