// Package exiftest builds small JPEG files carrying EXIF date tags for tests.
package exiftest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
)

const (
	tagDateTime         = 0x0132
	tagExifIFDPointer   = 0x8769
	tagDateTimeOriginal = 0x9003

	typeASCII = 2
	typeLong  = 4
)

// Tag is an ASCII EXIF field.
type Tag struct {
	ID    uint16
	Value string
	// sub places the tag in the Exif sub-IFD instead of IFD0.
	sub bool
}

// DateTimeOriginal returns a DateTimeOriginal tag, stored in the Exif sub-IFD.
func DateTimeOriginal(v string) Tag { return Tag{ID: tagDateTimeOriginal, Value: v, sub: true} }

// DateTime returns a DateTime tag, stored in IFD0.
func DateTime(v string) Tag { return Tag{ID: tagDateTime, Value: v} }

// JPEG encodes a w x h image filled with bg. When tags are given an APP1
// EXIF segment holding them is inserted right after SOI.
func JPEG(w, h int, bg color.Color, tags ...Tag) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, bg)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	raw := buf.Bytes()
	if len(tags) == 0 {
		return raw, nil
	}

	payload := append([]byte("Exif\x00\x00"), buildTIFF(tags)...)
	var out bytes.Buffer
	out.Write(raw[:2])
	out.Write([]byte{0xFF, 0xE1})
	binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(raw[2:])
	return out.Bytes(), nil
}

// WriteJPEG writes the result of JPEG to path, creating parent directories.
func WriteJPEG(path string, w, h int, bg color.Color, tags ...Tag) error {
	data, err := JPEG(w, h, bg, tags...)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// buildTIFF lays out a little-endian TIFF block: header, IFD0, optional Exif
// IFD, then the out-of-line values.
func buildTIFF(tags []Tag) []byte {
	var ifd0, sub []Tag
	for _, t := range tags {
		if t.sub {
			sub = append(sub, t)
		} else {
			ifd0 = append(ifd0, t)
		}
	}

	n0 := len(ifd0)
	if len(sub) > 0 {
		n0++
	}
	subOff := 8 + 2 + 12*n0 + 4
	dataOff := subOff
	if len(sub) > 0 {
		dataOff += 2 + 12*len(sub) + 4
	}

	le := binary.LittleEndian
	var out, data bytes.Buffer

	writeASCII := func(t Tag) {
		val := append([]byte(t.Value), 0)
		binary.Write(&out, le, t.ID)
		binary.Write(&out, le, uint16(typeASCII))
		binary.Write(&out, le, uint32(len(val)))
		if len(val) <= 4 {
			inline := make([]byte, 4)
			copy(inline, val)
			out.Write(inline)
			return
		}
		binary.Write(&out, le, uint32(dataOff+data.Len()))
		data.Write(val)
		if data.Len()%2 == 1 {
			data.WriteByte(0)
		}
	}

	out.WriteString("II")
	binary.Write(&out, le, uint16(42))
	binary.Write(&out, le, uint32(8))

	binary.Write(&out, le, uint16(n0))
	for _, t := range ifd0 {
		writeASCII(t)
	}
	if len(sub) > 0 {
		binary.Write(&out, le, uint16(tagExifIFDPointer))
		binary.Write(&out, le, uint16(typeLong))
		binary.Write(&out, le, uint32(1))
		binary.Write(&out, le, uint32(subOff))
	}
	binary.Write(&out, le, uint32(0))

	if len(sub) > 0 {
		binary.Write(&out, le, uint16(len(sub)))
		for _, t := range sub {
			writeASCII(t)
		}
		binary.Write(&out, le, uint32(0))
	}

	out.Write(data.Bytes())
	return out.Bytes()
}
