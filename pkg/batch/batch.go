// Package batch walks an input path and stamps every eligible photo, one
// file at a time, reporting each outcome in order.
package batch

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"photowatermark/pkg/config"
	"photowatermark/pkg/exifdate"
	"photowatermark/pkg/watermark"
)

// OutputSuffix is appended to the directory name to form the output directory.
const OutputSuffix = "_watermark"

// Outcome classifies how a file was handled.
type Outcome int

const (
	Succeeded Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Record is the result for one file.
type Record struct {
	Source      string
	Destination string
	Date        string
	Outcome     Outcome
	Err         error
}

// Summary aggregates a run.
type Summary struct {
	OutputDir string
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Records   []Record
}

func (s *Summary) add(r Record) {
	s.Records = append(s.Records, r)
	switch r.Outcome {
	case Succeeded:
		s.Succeeded++
	case Skipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

// DateSource yields a capture date for a file, or false when there is none.
type DateSource interface {
	CaptureDate(path string) (string, bool)
}

// Renderer stamps a single file.
type Renderer interface {
	Render(req watermark.Request) (image.Point, error)
}

// Driver runs a batch with fixed options.
type Driver struct {
	opts     config.Options
	dates    DateSource
	renderer Renderer
	out      io.Writer
	log      logrus.FieldLogger
}

// NewDriver wires a Driver. Report lines go to out.
func NewDriver(opts config.Options, dates DateSource, renderer Renderer, out io.Writer, log logrus.FieldLogger) *Driver {
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Driver{opts: opts, dates: dates, renderer: renderer, out: out, log: log}
}

// OutputDir returns the directory results are written to for input.
// A directory gets a child named after itself; a file gets one next to it,
// named after its parent.
func OutputDir(input string, isDir bool) (string, error) {
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", err
	}
	base := abs
	if !isDir {
		base = filepath.Dir(abs)
	}
	return filepath.Join(base, filepath.Base(base)+OutputSuffix), nil
}

// Collect lists eligible images under root in lexical order. skipDir, when
// non-empty, is not descended into. Unreadable subdirectories are logged and
// skipped.
func Collect(root, skipDir string, log logrus.FieldLogger) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if exifdate.IsSupported(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.WithError(err).WithField("path", path).Warn("skipping unreadable path")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if skipDir != "" && sameDir(path, skipDir) {
				return fs.SkipDir
			}
			return nil
		}
		if exifdate.IsSupported(d.Name()) && isFile(path, d) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// isFile reports whether d is a regular file, following symlinks.
func isFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func sameDir(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}

// ErrInputNotFound is returned when the input path does not exist.
var ErrInputNotFound = errors.New("input path does not exist")

// Run processes every eligible file. The returned error is non-nil only for
// fatal conditions: a missing input or an output directory that cannot be
// created. Per-file problems are recorded in the Summary.
func (d *Driver) Run() (Summary, error) {
	info, err := os.Stat(d.opts.Input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Summary{}, fmt.Errorf("%w: %s", ErrInputNotFound, d.opts.Input)
		}
		return Summary{}, err
	}

	outDir, err := OutputDir(d.opts.Input, info.IsDir())
	if err != nil {
		return Summary{}, fmt.Errorf("resolve output directory: %w", err)
	}

	files, err := Collect(d.opts.Input, outDir, d.log)
	if err != nil {
		return Summary{}, fmt.Errorf("scan %s: %w", d.opts.Input, err)
	}
	summary := Summary{OutputDir: outDir, Total: len(files)}
	if len(files) == 0 {
		fmt.Fprintln(d.out, "No supported images found.")
		fmt.Fprintln(d.out, "Supported formats: JPG, JPEG, PNG, TIFF, BMP")
		return summary, nil
	}
	fmt.Fprintf(d.out, "Found %d image file(s)\n", len(files))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return summary, fmt.Errorf("create output directory: %w", err)
	}
	fmt.Fprintf(d.out, "Output directory: %s\n", outDir)
	fmt.Fprintf(d.out, "Settings: size=%d, color=%s, position=%s\n\n",
		d.opts.FontSize, watermark.DescribeColor(d.opts.Color), d.opts.Anchor.Description())

	written := make(map[string]string, len(files))
	for _, src := range files {
		rec := d.processOne(src, outDir, written)
		summary.add(rec)
		d.report(rec)
	}
	d.printSummary(summary)
	return summary, nil
}

func (d *Driver) processOne(src, outDir string, written map[string]string) (rec Record) {
	rec = Record{Source: src}
	defer func() {
		if p := recover(); p != nil {
			rec.Outcome = Failed
			rec.Err = fmt.Errorf("panic: %v", p)
		}
	}()

	date, ok := d.dates.CaptureDate(src)
	if !ok {
		rec.Outcome = Skipped
		return rec
	}
	rec.Date = date

	name := filepath.Base(src)
	rec.Destination = filepath.Join(outDir, name)
	if prev, dup := written[name]; dup {
		d.log.WithFields(logrus.Fields{
			"file":     name,
			"previous": prev,
			"current":  src,
		}).Warn("output name collision, overwriting")
	}

	_, err := d.renderer.Render(watermark.Request{
		Source:      src,
		Destination: rec.Destination,
		Text:        date,
		FontSize:    d.opts.FontSize,
		Color:       d.opts.Color,
		Anchor:      d.opts.Anchor,
	})
	if err != nil {
		rec.Outcome = Failed
		rec.Err = err
		return rec
	}
	written[name] = src
	rec.Outcome = Succeeded
	return rec
}

func (d *Driver) report(r Record) {
	name := filepath.Base(r.Source)
	switch r.Outcome {
	case Succeeded:
		fmt.Fprintf(d.out, "✓ %s - watermarked (%s)\n", name, r.Date)
	case Skipped:
		fmt.Fprintf(d.out, "⚠ %s - skipped (no capture date)\n", name)
	default:
		fmt.Fprintf(d.out, "✗ %s - failed: %v\n", name, r.Err)
		d.log.WithError(r.Err).WithField("file", name).Error("processing failed")
	}
}

func (d *Driver) printSummary(s Summary) {
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, "=== Done ===")
	fmt.Fprintf(d.out, "Total:     %d\n", s.Total)
	fmt.Fprintf(d.out, "Succeeded: %d\n", s.Succeeded)
	fmt.Fprintf(d.out, "Skipped:   %d\n", s.Skipped)
	fmt.Fprintf(d.out, "Failed:    %d\n", s.Failed)
	if s.Succeeded > 0 {
		fmt.Fprintf(d.out, "\nWatermarked images saved in: %s\n", s.OutputDir)
	}
}
