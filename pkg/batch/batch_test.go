package batch

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photowatermark/pkg/config"
	"photowatermark/pkg/exifdate"
	"photowatermark/pkg/exifdate/exiftest"
	"photowatermark/pkg/watermark"
)

var sky = color.RGBA{90, 140, 200, 255}

func defaultOptions(input string) config.Options {
	return config.Options{
		Input:    input,
		FontSize: 24,
		Color:    watermark.White,
		Anchor:   watermark.BottomRight,
	}
}

type fakeDates map[string]string

func (f fakeDates) CaptureDate(path string) (string, bool) {
	d, ok := f[filepath.Base(path)]
	return d, ok
}

type fakeRenderer struct {
	fail  map[string]error
	panic map[string]bool
	calls []watermark.Request
}

func (f *fakeRenderer) Render(req watermark.Request) (image.Point, error) {
	f.calls = append(f.calls, req)
	name := filepath.Base(req.Source)
	if f.panic[name] {
		panic("renderer exploded")
	}
	if err := f.fail[name]; err != nil {
		return image.Point{}, err
	}
	return image.Pt(1, 1), os.WriteFile(req.Destination, []byte(req.Text), 0o644)
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func writeImage(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := imaging.New(64, 48, sky)
	require.NoError(t, imaging.Save(img, path))
}

func TestOutputDir(t *testing.T) {
	root := t.TempDir()
	photos := filepath.Join(root, "photos")

	got, err := OutputDir(photos, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(photos, "photos_watermark"), got)

	got, err = OutputDir(filepath.Join(photos, "trip", "a.jpg"), false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(photos, "trip", "trip_watermark"), got)
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.jpg", "a.PNG", "notes.txt", "sub/c.tiff", "sub/d.gif", "out/e.jpg"} {
		touch(t, filepath.Join(root, name))
	}
	log, _ := test.NewNullLogger()

	files, err := Collect(root, filepath.Join(root, "out"), log)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.PNG"),
		filepath.Join(root, "b.jpg"),
		filepath.Join(root, "sub", "c.tiff"),
	}, files)

	single, err := Collect(filepath.Join(root, "b.jpg"), "", log)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "b.jpg")}, single)

	none, err := Collect(filepath.Join(root, "notes.txt"), "", log)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCollectFollowsFileSymlinks(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(t.TempDir(), "real.jpg")
	touch(t, target)
	touch(t, filepath.Join(root, "sub", "x.txt"))
	require.NoError(t, os.Symlink(target, filepath.Join(root, "linked.jpg")))
	require.NoError(t, os.Symlink(filepath.Join(root, "sub"), filepath.Join(root, "dir.jpg")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing.jpg"), filepath.Join(root, "dangling.jpg")))

	log, _ := test.NewNullLogger()
	files, err := Collect(root, "", log)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "linked.jpg")}, files)
}

func TestRunEndToEnd(t *testing.T) {
	root := filepath.Join(t.TempDir(), "photos")
	dated := map[string]string{
		"a.jpg":           "2023:05:17 10:20:30",
		"b.jpg":           "2022:12:31 23:59:59",
		"c.jpeg":          "2021:01:01 00:00:00",
		"trip/d.jpg":      "2020:02:29 12:00:00",
		"trip/e.jpg":      "2019:07:04 08:00:00",
		"trip/deep/f.jpg": "2018:03:15 06:30:00",
	}
	for rel, stamp := range dated {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, exiftest.WriteJPEG(path, 160, 120, sky, exiftest.DateTimeOriginal(stamp)))
	}
	writeImage(t, filepath.Join(root, "g.png"))
	writeImage(t, filepath.Join(root, "h.bmp"))
	require.NoError(t, exiftest.WriteJPEG(filepath.Join(root, "i.jpg"), 160, 120, sky))
	touch(t, filepath.Join(root, "readme.txt"))

	log, _ := test.NewNullLogger()
	renderer, err := watermark.NewRenderer(watermark.RendererConfig{Logger: log})
	require.NoError(t, err)

	run := func() (Summary, string) {
		var out bytes.Buffer
		d := NewDriver(defaultOptions(root), exifdate.NewReader(log), renderer, &out, log)
		s, err := d.Run()
		require.NoError(t, err)
		return s, out.String()
	}

	summary, report := run()
	assert.Equal(t, 9, summary.Total)
	assert.Equal(t, 6, summary.Succeeded)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, summary.Records, 9)

	outDir := filepath.Join(root, "photos_watermark")
	assert.Equal(t, outDir, summary.OutputDir)
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 6)

	assert.Contains(t, report, "Found 9 image file(s)")
	assert.Contains(t, report, "✓ a.jpg - watermarked (2023-05-17)")
	assert.Contains(t, report, "✓ f.jpg - watermarked (2018-03-15)")
	assert.Contains(t, report, "⚠ g.png - skipped (no capture date)")
	assert.Contains(t, report, "⚠ i.jpg - skipped (no capture date)")
	assert.Contains(t, report, "Succeeded: 6")
	assert.Contains(t, report, "Watermarked images saved in: "+outDir)

	out, err := imaging.Open(filepath.Join(outDir, "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 160, 120), out.Bounds())

	first, err := os.ReadFile(filepath.Join(outDir, "d.jpg"))
	require.NoError(t, err)

	again, _ := run()
	assert.Equal(t, 9, again.Total, "output directory must not be rescanned")
	assert.Equal(t, 6, again.Succeeded)
	second, err := os.ReadFile(filepath.Join(outDir, "d.jpg"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunIsolatesFailures(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"} {
		touch(t, filepath.Join(root, name))
	}
	dates := fakeDates{"a.jpg": "2023-01-01", "b.jpg": "2023-01-02", "c.jpg": "2023-01-03"}
	r := &fakeRenderer{
		fail:  map[string]error{"a.jpg": errors.New("disk on fire")},
		panic: map[string]bool{"b.jpg": true},
	}
	log, hook := test.NewNullLogger()
	var out bytes.Buffer

	s, err := NewDriver(defaultOptions(root), dates, r, &out, log).Run()
	require.NoError(t, err)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Succeeded)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 2, s.Failed)

	require.Len(t, s.Records, 4)
	assert.Equal(t, Failed, s.Records[0].Outcome)
	assert.EqualError(t, s.Records[0].Err, "disk on fire")
	assert.Equal(t, Failed, s.Records[1].Outcome)
	assert.Contains(t, s.Records[1].Err.Error(), "renderer exploded")
	assert.Equal(t, Succeeded, s.Records[2].Outcome)
	assert.Equal(t, Skipped, s.Records[3].Outcome)

	assert.Contains(t, out.String(), "✗ a.jpg - failed: disk on fire")
	assert.Contains(t, out.String(), "✓ c.jpg - watermarked (2023-01-03)")

	var errs int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			errs++
		}
	}
	assert.Equal(t, 2, errs)
	assert.Len(t, r.calls, 3)
}

func TestRunPassesOptionsToRenderer(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	opts := defaultOptions(root)
	opts.FontSize = 48
	opts.Color = color.NRGBA{255, 0, 0, 255}
	opts.Anchor = watermark.TopLeft

	r := &fakeRenderer{}
	log, _ := test.NewNullLogger()
	_, err := NewDriver(opts, fakeDates{"a.jpg": "2023-05-17"}, r, nil, log).Run()
	require.NoError(t, err)

	require.Len(t, r.calls, 1)
	req := r.calls[0]
	assert.Equal(t, "2023-05-17", req.Text)
	assert.Equal(t, 48, req.FontSize)
	assert.Equal(t, opts.Color, req.Color)
	assert.Equal(t, watermark.TopLeft, req.Anchor)
	assert.Equal(t, filepath.Join(root, filepath.Base(root)+OutputSuffix, "a.jpg"), req.Destination)
}

func TestRunWarnsOnNameCollision(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "sub", "a.jpg"))

	r := &fakeRenderer{}
	log, hook := test.NewNullLogger()
	s, err := NewDriver(defaultOptions(root), fakeDates{"a.jpg": "2023-05-17"}, r, nil, log).Run()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, s.Records[0].Destination, s.Records[1].Destination)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "output name collision, overwriting", hook.LastEntry().Message)
}

func TestRunSingleFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "trip")
	file := filepath.Join(root, "a.jpg")
	touch(t, file)
	touch(t, filepath.Join(root, "b.jpg"))

	r := &fakeRenderer{}
	log, _ := test.NewNullLogger()
	s, err := NewDriver(defaultOptions(file), fakeDates{"a.jpg": "2023-05-17", "b.jpg": "2023-05-18"}, r, nil, log).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, s.Total)
	assert.Equal(t, filepath.Join(root, "trip_watermark"), s.OutputDir)
	assert.FileExists(t, filepath.Join(root, "trip_watermark", "a.jpg"))
}

func TestRunNoImages(t *testing.T) {
	root := filepath.Join(t.TempDir(), "docs")
	touch(t, filepath.Join(root, "notes.txt"))

	var out bytes.Buffer
	log, _ := test.NewNullLogger()
	s, err := NewDriver(defaultOptions(root), fakeDates{}, &fakeRenderer{}, &out, log).Run()
	require.NoError(t, err)
	assert.Zero(t, s.Total)
	assert.True(t, strings.HasPrefix(out.String(), "No supported images found."))
	assert.NoDirExists(t, filepath.Join(root, "docs_watermark"))
}

func TestRunMissingInput(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := NewDriver(defaultOptions(filepath.Join(t.TempDir(), "nope")), fakeDates{}, &fakeRenderer{}, nil, log).Run()
	assert.ErrorIs(t, err, ErrInputNotFound)
}

func TestRunOutputDirUnavailable(t *testing.T) {
	root := filepath.Join(t.TempDir(), "pics")
	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "pics_watermark"))

	r := &fakeRenderer{}
	log, _ := test.NewNullLogger()
	_, err := NewDriver(defaultOptions(root), fakeDates{"a.jpg": "2023-05-17"}, r, nil, log).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output directory")
	assert.Empty(t, r.calls)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "failed", Failed.String())
}
