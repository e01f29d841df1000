package watermark

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ShadowOffset is the x and y displacement of the drop shadow in pixels.
const ShadowOffset = 2

var (
	// ShadowColor is drawn under the text at ShadowOffset.
	ShadowColor = color.NRGBA{0, 0, 0, 100}
	// Backdrop is the opaque surface transparent sources are flattened onto.
	Backdrop = color.NRGBA{0, 0, 0, 255}
)

// Request describes one watermarking job.
type Request struct {
	Source      string
	Destination string
	Text        string
	FontSize    int
	Color       color.NRGBA
	Anchor      Anchor
}

// TextMetrics is the measured extent of a text run.
type TextMetrics struct {
	Width  int
	Height int
}

// RendererConfig configures a Renderer.
type RendererConfig struct {
	// FontPath is a .ttf/.otf file; empty selects the embedded Go Bold.
	FontPath string
	// AutoOrient applies the EXIF orientation tag when decoding.
	AutoOrient bool
	Logger     logrus.FieldLogger
}

// Renderer draws date stamps onto images. It caches one face per font size
// and is not safe for concurrent use.
type Renderer struct {
	font       *opentype.Font
	faces      map[int]font.Face
	autoOrient bool
	log        logrus.FieldLogger
}

// NewRenderer parses the configured font and prepares a Renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	fnt, err := loadFontWithFallback(cfg.FontPath, log)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		font:       fnt,
		faces:      make(map[int]font.Face),
		autoOrient: cfg.AutoOrient,
		log:        log,
	}, nil
}

func (r *Renderer) face(size int) (font.Face, error) {
	if f, ok := r.faces[size]; ok {
		return f, nil
	}
	f, err := newFace(r.font, size)
	if err != nil {
		return nil, err
	}
	r.faces[size] = f
	return f, nil
}

// Measure returns the advance width and line height of text at size.
func (r *Renderer) Measure(text string, size int) (TextMetrics, error) {
	if err := validateText(text, size); err != nil {
		return TextMetrics{}, err
	}
	face, err := r.face(size)
	if err != nil {
		return TextMetrics{}, err
	}
	return TextMetrics{
		Width:  font.MeasureString(face, text).Ceil(),
		Height: face.Metrics().Height.Ceil(),
	}, nil
}

// Composite flattens img onto an opaque canvas and draws text with a drop
// shadow at the anchor. It returns the canvas and the text origin.
func (r *Renderer) Composite(img image.Image, text string, size int, col color.NRGBA, a Anchor) (*image.RGBA, image.Point, error) {
	m, err := r.Measure(text, size)
	if err != nil {
		return nil, image.Point{}, err
	}
	face, err := r.face(size)
	if err != nil {
		return nil, image.Point{}, err
	}

	canvas := flattenToRGB(img, Backdrop)
	b := canvas.Bounds()
	origin := Place(b.Dx(), b.Dy(), m.Width, m.Height, a)

	col.A = 255
	drawTextAt(canvas, face, origin.X+ShadowOffset, origin.Y+ShadowOffset, text, ShadowColor)
	drawTextAt(canvas, face, origin.X, origin.Y, text, col)

	r.log.WithFields(logrus.Fields{
		"text":   text,
		"size":   size,
		"anchor": a.String(),
		"x":      origin.X,
		"y":      origin.Y,
	}).Debug("watermark placed")
	return canvas, origin, nil
}

// Render decodes req.Source, stamps it and writes req.Destination.
func (r *Renderer) Render(req Request) (image.Point, error) {
	if err := validateText(req.Text, req.FontSize); err != nil {
		return image.Point{}, err
	}
	img, err := openImage(req.Source, r.autoOrient)
	if err != nil {
		return image.Point{}, err
	}
	canvas, origin, err := r.Composite(img, req.Text, req.FontSize, req.Color, req.Anchor)
	if err != nil {
		return image.Point{}, err
	}
	if err := SaveImage(canvas, req.Destination); err != nil {
		return image.Point{}, err
	}
	return origin, nil
}

// flattenToRGB copies img onto a zero-origin canvas filled with bg.
func flattenToRGB(img image.Image, bg color.NRGBA) *image.RGBA {
	src := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	draw.Draw(rgba, rgba.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	draw.Draw(rgba, rgba.Bounds(), img, src.Min, draw.Over)
	return rgba
}

// drawTextAt draws text with its baseline at y.
func drawTextAt(dst draw.Image, face font.Face, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
