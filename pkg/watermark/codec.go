package watermark

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// FormatFor picks the output codec from the destination extension.
// Unknown extensions are written as JPEG.
func FormatFor(path string) imaging.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return imaging.PNG
	case ".jpg", ".jpeg":
		return imaging.JPEG
	case ".bmp":
		return imaging.BMP
	case ".tif", ".tiff":
		return imaging.TIFF
	default:
		return imaging.JPEG
	}
}

// SaveImage encodes img to path. A partially written file is removed on failure.
func SaveImage(img image.Image, path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	out, err := os.Create(path)
	if err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = &EncodeError{Path: path, Err: cerr}
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := imaging.Encode(out, img, FormatFor(path)); err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	return nil
}

func openImage(path string, autoOrient bool) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(autoOrient))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}
