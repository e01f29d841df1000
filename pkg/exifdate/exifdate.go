// Package exifdate extracts the capture date of a photo from its EXIF block.
package exifdate

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"
)

// Layout is the normalized date format.
const Layout = "2006-01-02"

// Tags are tried in order; the first present one wins.
var dateTags = []exif.FieldName{exif.DateTimeOriginal, exif.DateTime}

var supportedExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".bmp":  {},
}

// IsSupported reports whether path has an extension the tool processes.
func IsSupported(path string) bool {
	_, ok := supportedExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Reader reads capture dates from image files.
type Reader struct {
	log logrus.FieldLogger
}

// NewReader returns a Reader that logs parse problems to log.
func NewReader(log logrus.FieldLogger) *Reader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reader{log: log}
}

// CaptureDate returns the YYYY-MM-DD capture date of the file at path.
// It returns false when the file has no usable timestamp or cannot be parsed.
func (r *Reader) CaptureDate(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		r.log.WithError(err).WithField("file", filepath.Base(path)).Debug("open for exif failed")
		return "", false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		r.log.WithError(err).WithField("file", filepath.Base(path)).Debug("no exif data")
		return "", false
	}

	for _, name := range dateTags {
		tag, err := x.Get(name)
		if err != nil || tag == nil {
			continue
		}
		raw, err := tag.StringVal()
		if err != nil {
			continue
		}
		date, err := Normalize(raw)
		if err != nil {
			r.log.WithError(err).WithFields(logrus.Fields{
				"file": filepath.Base(path),
				"tag":  string(name),
			}).Warn("unparseable exif date")
			return "", false
		}
		return date, true
	}
	return "", false
}

// Normalize turns an EXIF timestamp such as "2023:05:17 10:20:30" into
// "2023-05-17". Only the part before the first space is used. Dates that do
// not exist on the calendar, such as 2023:02:30, are rejected.
func Normalize(raw string) (string, error) {
	raw = strings.Trim(raw, "\x00 \t")
	datePart, _, _ := strings.Cut(raw, " ")
	date := strings.ReplaceAll(datePart, ":", "-")
	if _, err := time.Parse(Layout, date); err != nil {
		return "", err
	}
	return date, nil
}
