package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"photowatermark/pkg/batch"
	"photowatermark/pkg/config"
	"photowatermark/pkg/exifdate"
	"photowatermark/pkg/watermark"
)

const examples = `  photowatermark -i /path/to/photos
  photowatermark -i /path/to/photos -s 30 -c red -p tl
  photowatermark -i photo.jpg -s 24 -c "255,255,255" -p br

Supported formats: JPG, JPEG, PNG, TIFF, BMP
Output directory: [input dir]/[input dir name]_watermark`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		var uerr usageError
		if !errors.As(err, &uerr) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}

// usageError marks errors that should be followed by the usage text.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)
	config.BindEnv(v)

	var cfgFile string

	cmd := &cobra.Command{
		Use:   "photowatermark",
		Short: "Stamp photos with their EXIF capture date",
		Long: `photowatermark reads the capture date from each photo's EXIF data and draws it
onto a copy of the image. Originals are never modified.`,
		Example:       examples,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config %s: %w", cfgFile, err)
				}
			}

			log := newLogger(v.GetString(config.KeyLogLevel), stderr)
			opts, err := config.Load(v, log)
			if err != nil {
				cmd.PrintErrln("error:", err)
				cmd.PrintErr(cmd.UsageString())
				return usageError{err}
			}
			log.WithFields(opts.Fields()).Debug("options loaded")
			return runBatch(opts, stdout, log)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		c.PrintErrln("error:", err)
		c.PrintErr(c.UsageString())
		return usageError{err}
	})

	flags := cmd.Flags()
	flags.StringP(config.KeyInput, "i", "", "input image file or directory (required)")
	// Parsed by config.Load so every source is read as decimal.
	flags.StringP(config.KeySize, "s", strconv.Itoa(config.DefaultSize), "font size, 1-200")
	flags.StringP(config.KeyColor, "c", config.DefaultColor, "font color: red, blue, white, #FF0000, 255,0,0")
	flags.StringP(config.KeyPosition, "p", config.DefaultPosition, "position: tl, tc, tr, cl, c, cr, bl, bc, br")
	flags.StringP(config.KeyFont, "f", "", "font file (.ttf/.otf), defaults to Go Bold")
	flags.Bool(config.KeyAutoOrient, false, "apply EXIF orientation before stamping")
	flags.String(config.KeyLogLevel, config.DefaultLogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&cfgFile, "config", "", "optional config file (yaml, json, toml)")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	return cmd
}

func runBatch(opts config.Options, stdout io.Writer, log *logrus.Logger) error {
	fmt.Fprintln(stdout, "=== Photo Watermark Tool ===")
	fmt.Fprintln(stdout, "Stamps photos with their EXIF capture date")
	fmt.Fprintln(stdout)

	renderer, err := watermark.NewRenderer(watermark.RendererConfig{
		FontPath:   opts.FontPath,
		AutoOrient: opts.AutoOrient,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	driver := batch.NewDriver(opts, exifdate.NewReader(log), renderer, stdout, log)
	summary, err := driver.Run()
	if err != nil {
		if errors.Is(err, batch.ErrInputNotFound) {
			log.WithField("input", opts.Input).Error("input path does not exist")
		}
		return err
	}
	log.WithFields(logrus.Fields{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
	}).Debug("batch finished")
	return nil
}

func newLogger(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
