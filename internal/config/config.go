// Package config holds the settings shared by the lisper commands. Values come
// from command line flags and, optionally, a JSON5 file.
package config

import (
	"io"
	"os"
	"path/filepath"
	"reflect"

	"github.com/flynn/json5"
	"github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"
)

const (
	DefaultPrompt   = ">>> "
	DefaultBanner   = "Lisper Version 69.0\nGet Coding!\n"
	DefaultMaxDepth = 10000
)

// Config provides the command line flags and file settings of lisper.
type Config struct {
	// Path of a JSON5 file whose values apply to every flag not given
	// explicitly.
	ConfigFilename string `json:"-"`

	Prompt      string `json:"prompt" flag:"prompt"`
	Banner      string `json:"banner" flag:"banner"`
	HistoryFile string `json:"history_file" flag:"history"`
	MaxDepth    int    `json:"max_depth" flag:"max-depth"`
	NoColor     bool   `json:"no_color" flag:"no-color"`
	Debug       bool   `json:"debug" flag:"debug"`
}

// DefaultHistoryFile returns ~/.lisper_history, or "" when there is no home
// directory.
func DefaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lisper_history")
}

// AsCliFlags returns a slice of cli.Flag bound to the fields of config.
func (config *Config) AsCliFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Destination: &config.ConfigFilename,
			Name:        "config",
			Usage:       "JSON5 file with default settings.",
		},
		&cli.StringFlag{
			Destination: &config.Prompt,
			Name:        "prompt",
			Value:       DefaultPrompt,
			Usage:       "The REPL prompt.",
		},
		&cli.StringFlag{
			Destination: &config.Banner,
			Name:        "banner",
			Value:       DefaultBanner,
			Usage:       "Text printed when the REPL starts.",
		},
		&cli.StringFlag{
			Destination: &config.HistoryFile,
			Name:        "history",
			Value:       DefaultHistoryFile(),
			Usage:       "File the REPL keeps its history in. Empty disables history.",
		},
		&cli.IntFlag{
			Destination: &config.MaxDepth,
			Name:        "max-depth",
			Value:       DefaultMaxDepth,
			Usage:       "Maximum nesting of calls, 0 for no limit.",
		},
		&cli.BoolFlag{
			Destination: &config.NoColor,
			Name:        "no-color",
			Usage:       "Disable colored output.",
		},
		&cli.BoolFlag{
			Destination: &config.Debug,
			Name:        "debug",
			Usage:       "Log debug messages.",
		},
	}
}

// LoadFromJSON5 decodes the JSON5 read from r into dst, which must be a
// pointer to a struct.
func LoadFromJSON5(dst interface{}, r io.Reader) error {
	rType := reflect.TypeOf(dst)
	if rType == nil || rType.Kind() != reflect.Ptr || rType.Elem().Kind() != reflect.Struct {
		return errors.Errorf("Input must be a pointer to a struct, got %T", dst)
	}
	if err := json5.NewDecoder(r).Decode(dst); err != nil {
		return errors.Wrap(err, "decoding JSON5")
	}
	return nil
}

// ApplyFile reads the file named by ConfigFilename, if any, and copies each of
// its settings whose flag was not set on the command line. isSet reports
// whether a flag was given explicitly, e.g. (*cli.Context).IsSet.
func (config *Config) ApplyFile(isSet func(name string) bool) error {
	if config.ConfigFilename == "" {
		return nil
	}
	f, err := os.Open(config.ConfigFilename)
	if err != nil {
		return errors.Wrapf(err, "opening config %s", config.ConfigFilename)
	}
	defer f.Close()

	fromFile := *config
	if err := LoadFromJSON5(&fromFile, f); err != nil {
		return errors.Wrapf(err, "reading config %s", config.ConfigFilename)
	}
	dst := reflect.ValueOf(config).Elem()
	src := reflect.ValueOf(&fromFile).Elem()
	for i := 0; i < dst.NumField(); i++ {
		name := dst.Type().Field(i).Tag.Get("flag")
		if name == "" || isSet(name) {
			continue
		}
		dst.Field(i).Set(src.Field(i))
	}
	return nil
}
