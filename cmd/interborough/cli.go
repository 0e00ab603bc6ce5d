package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/interborough/transit/internal/config"
)

// options are the command line settings. Window and render flags override
// the config file through viper.
type options struct {
	ConfigDir string
	Headless  bool
	Ticks     int
	Planview  string
	Keys      string

	flags *pflag.FlagSet
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&o.ConfigDir, "config", "c", "", "directory containing "+config.FileName)
	fs.BoolVar(&o.Headless, "headless", false, "run without a window against the capture rasterizer")
	fs.IntVar(&o.Ticks, "ticks", 300, "frames to produce in headless mode")
	fs.StringVar(&o.Planview, "planview", "", "write a top-down PNG of the last headless frame to this path")
	fs.StringVar(&o.Keys, "keys", "", "keys to press in headless mode, one per frame")
	fs.String("host", "", "window host: glfw or sdl")
	fs.String("view", "", "scene view: station or car")
	fs.Bool("record", false, "record the session to the configured storage backend")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.Ticks < 0 {
		return o, fmt.Errorf("ticks must not be negative: %d", o.Ticks)
	}
	if o.Planview != "" && !o.Headless {
		return o, fmt.Errorf("--planview requires --headless")
	}
	o.flags = fs
	return o, nil
}

// bind makes the flags that mirror config keys take precedence over the
// file when they are set.
func (o options) bind() error {
	if o.flags == nil {
		return nil
	}
	for flag, key := range map[string]string{
		"host":   "window.host",
		"view":   "render.view",
		"record": "recorder.enabled",
	} {
		if err := viper.BindPFlag(key, o.flags.Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}
