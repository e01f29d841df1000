package watermark

import "image"

// Margin is the distance in pixels between the text and the nearest edges.
const Margin = 20

// Place returns the draw origin for text of size textW x textH on an
// imageW x imageH canvas. X is the left edge of the run and Y the baseline.
//
// The result is not clamped: text larger than the image yields negative or
// out-of-bounds coordinates and the rasterizer clips it. Top anchors push the
// baseline down by textH while bottom anchors put the baseline Margin above
// the edge, so the two rows are not mirror images.
func Place(imageW, imageH, textW, textH int, a Anchor) image.Point {
	if !a.valid() {
		a = DefaultAnchor
	}

	var p image.Point
	switch a.column() {
	case 0:
		p.X = Margin
	case 1:
		p.X = (imageW - textW) / 2
	default:
		p.X = imageW - textW - Margin
	}

	switch a.row() {
	case 0:
		p.Y = Margin + textH
	case 1:
		p.Y = (imageH + textH) / 2
	default:
		p.Y = imageH - Margin
	}
	return p
}
