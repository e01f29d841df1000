package watermark

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

func loadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return opentype.Parse(data)
}

// loadFontWithFallback returns the font at path, or Go Bold when path is empty
// or unusable.
func loadFontWithFallback(path string, log logrus.FieldLogger) (*opentype.Font, error) {
	if strings.TrimSpace(path) != "" {
		fnt, err := loadFont(path)
		if err == nil {
			return fnt, nil
		}
		log.WithError(err).WithField("font", path).Warn("failed to load font, falling back to Go Bold")
	}
	return opentype.Parse(gobold.TTF)
}

func newFace(fnt *opentype.Font, size int) (font.Face, error) {
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
