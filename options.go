package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"hist/internal/render"
)

type options struct {
	render      render.Config
	stats       bool
	percentiles bool
	fit         bool
	store       bool
	runID       int64
	service     bool
	queue       string
	redisURL    string
	logLevel    string
}

var (
	isTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

	terminalWidth = func() (int, error) {
		w, _, err := term.GetSize(int(os.Stdout.Fd()))
		return w, err
	}
)

func addFlags(fs *pflag.FlagSet) {
	def := render.DefaultConfig()

	fs.BoolP("cumulative", "c", false, "Show running totals instead of per-value counts")
	fs.BoolP("fill-gaps", "g", false, "Add zero rows for missing values between min and max")
	fs.IntP("max-width", "w", 0, "Scale bars to at most this many glyphs (0 draws one glyph per observation)")
	fs.Bool("fit", false, "Scale bars to the terminal width")
	fs.BoolP("summary", "s", false, "Append a bar for the grand total")
	fs.Bool("pad", false, "Pad bars to the max width with an empty glyph")
	fs.BoolP("ascii", "a", false, "Draw plain '#' bars without color")
	fs.String("color", "auto", "Color output: auto, always or never")
	fs.String("fg", "", "Fixed bar color (#rrggbb or r,g,b) instead of the computed palette")
	fs.String("bg", "", "Bar background color (#rrggbb or r,g,b)")
	fs.Float64("lum-min", def.LumMin, "Lowest luminance of generated bar colors")
	fs.Float64("lum-max", def.LumMax, "Highest luminance of generated bar colors")
	fs.Bool("stats", false, "Print descriptive statistics before the histogram")
	fs.Bool("percentiles", false, "Include the 5/25/50/75/95th percentiles in the statistics")
	fs.Bool("store", false, "Store the statistics in Postgres (POSTGRES_* or DATABASE_URL)")
	fs.Int64("run-id", 0, "Run id stored with --store")
	fs.Bool("service", false, "Run as a worker consuming histogram jobs from a Redis queue")
	fs.String("queue", "histogram", "Redis queue name used by --service")
	fs.String("redis-url", "redis://localhost:6379/0", "Redis server used by --service")
	fs.String("log-level", "", "Log level: debug, info, warning, error (default warning, info with --service)")
}

// setupConfig binds the flags to viper, which also reads HIST_* environment
// variables and an optional hist.{yaml,toml,json} in the working directory.
func setupConfig(v *viper.Viper, fs *pflag.FlagSet) error {
	v.SetConfigName("hist")
	v.AddConfigPath(".")
	v.SetEnvPrefix("hist")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return errors.Wrap(err, "bind flags")
	}
	if err := v.ReadInConfig(); err != nil {
		// Ignore error if config file not found.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "read config file")
		}
	}
	return nil
}

func loadOptions(v *viper.Viper) (options, error) {
	cfg := render.Config{
		Cumulative: v.GetBool("cumulative"),
		FillGaps:   v.GetBool("fill-gaps"),
		MaxWidth:   v.GetInt("max-width"),
		Summary:    v.GetBool("summary"),
		Pad:        v.GetBool("pad"),
		ASCII:      v.GetBool("ascii"),
		Foreground: v.GetString("fg"),
		Background: v.GetString("bg"),
		LumMin:     v.GetFloat64("lum-min"),
		LumMax:     v.GetFloat64("lum-max"),
	}

	switch mode := v.GetString("color"); mode {
	case "", "auto":
		cfg.Color = isTerminal()
	case "always":
		cfg.Color = true
	case "never":
		cfg.Color = false
	default:
		return options{}, errors.Errorf("unknown color mode %q", mode)
	}

	opts := options{
		render:      cfg,
		stats:       v.GetBool("stats"),
		percentiles: v.GetBool("percentiles"),
		fit:         v.GetBool("fit"),
		store:       v.GetBool("store"),
		runID:       v.GetInt64("run-id"),
		service:     v.GetBool("service"),
		queue:       v.GetString("queue"),
		redisURL:    v.GetString("redis-url"),
		logLevel:    v.GetString("log-level"),
	}
	if opts.fit && cfg.MaxWidth != 0 {
		return options{}, errors.New("--fit and --max-width are exclusive")
	}
	check := cfg
	if opts.fit {
		// the cap is only known once the terminal is measured
		check.MaxWidth = 1
	}
	if err := check.Validate(); err != nil {
		return options{}, err
	}
	if opts.queue == "" {
		return options{}, errors.New("queue name must not be empty")
	}
	return opts, nil
}
