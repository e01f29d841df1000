// Package config builds the immutable run options from flags, environment
// and an optional config file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"photowatermark/pkg/watermark"
)

// EnvPrefix is prepended to environment overrides, e.g. PHOTOWATERMARK_SIZE.
const EnvPrefix = "PHOTOWATERMARK"

// Keys shared by flags, environment and config files.
const (
	KeyInput      = "input"
	KeySize       = "size"
	KeyColor      = "color"
	KeyPosition   = "position"
	KeyFont       = "font"
	KeyAutoOrient = "auto-orient"
	KeyLogLevel   = "log-level"
)

const (
	DefaultSize     = 24
	DefaultColor    = "white"
	DefaultPosition = "br"
	DefaultLogLevel = "info"
)

// ErrMissingInput is returned when no input path was given.
var ErrMissingInput = errors.New("input path is required (-i or --input)")

// Options is the validated configuration for one run. It is built once by
// Load and passed by value.
type Options struct {
	Input      string
	FontSize   int
	Color      color.NRGBA
	Anchor     watermark.Anchor
	FontPath   string
	AutoOrient bool
	LogLevel   string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySize, DefaultSize)
	v.SetDefault(KeyColor, DefaultColor)
	v.SetDefault(KeyPosition, DefaultPosition)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyAutoOrient, false)
}

// BindEnv enables PHOTOWATERMARK_* environment overrides on v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load validates the values held by v. Bad colors and positions are not
// errors: they fall back to their defaults and are logged as warnings.
func Load(v *viper.Viper, log logrus.FieldLogger) (Options, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	opts := Options{
		Input:      strings.TrimSpace(v.GetString(KeyInput)),
		FontPath:   strings.TrimSpace(v.GetString(KeyFont)),
		AutoOrient: v.GetBool(KeyAutoOrient),
		LogLevel:   v.GetString(KeyLogLevel),
	}
	if opts.Input == "" {
		return Options{}, ErrMissingInput
	}

	size, err := parseSize(v.GetString(KeySize))
	if err != nil {
		return Options{}, err
	}
	opts.FontSize = size

	opts.Color, err = watermark.ResolveColor(v.GetString(KeyColor))
	if err != nil {
		log.WithError(err).Warn("invalid color")
	}
	opts.Anchor, err = watermark.ResolveAnchor(v.GetString(KeyPosition))
	if err != nil {
		log.WithError(err).Warn("invalid position")
	}
	return opts, nil
}

func parseSize(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSize, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid font size %q: %w", raw, err)
	}
	if n < watermark.MinFontSize || n > watermark.MaxFontSize {
		return 0, fmt.Errorf("%w: got %d", watermark.ErrFontSize, n)
	}
	return n, nil
}

// Fields returns the options as log fields.
func (o Options) Fields() logrus.Fields {
	return logrus.Fields{
		"input":       o.Input,
		"size":        o.FontSize,
		"color":       watermark.DescribeColor(o.Color),
		"position":    o.Anchor.String(),
		"font":        o.FontPath,
		"auto_orient": o.AutoOrient,
	}
}
