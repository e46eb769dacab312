// Package config holds the process-level configuration for the engine
// server and shell.
package config

import (
	"time"

	"github.com/namsral/flag"

	"github.com/damzee/damzee/eval"
	"github.com/damzee/damzee/search"
)

type Config struct {
	ListenAddr string
	Shell      bool
	Debug      bool

	MaxDepth                  int
	TimeLimitMs               int
	TTSizeMB                  int
	DisablePVS                bool
	DisableLMR                bool
	DisableAspirationWindows  bool
	AspirationWindowHalfWidth int
	LMRMinDepth               int
	LMRMinMoveIndex           int
	NoiseAmplitude            int
	WeightsPath               string
}

func (c *Config) Load(args []string) error {
	fs := flag.NewFlagSet("damzee", flag.ContinueOnError)
	fs.StringVar(&c.ListenAddr, "listen-addr", ":8088", "address for the HTTP API")
	fs.BoolVar(&c.Shell, "shell", false, "run the interactive analysis shell instead of the server")
	fs.BoolVar(&c.Debug, "debug", false, "debug logging")
	fs.IntVar(&c.MaxDepth, "max-depth", 20, "maximum search depth in plies")
	fs.IntVar(&c.TimeLimitMs, "time-limit-ms", 5000, "default search time budget in milliseconds")
	fs.IntVar(&c.TTSizeMB, "tt-size-mb", 64, "transposition table memory budget in megabytes")
	fs.BoolVar(&c.DisablePVS, "disable-pvs", false, "turn off principal-variation search")
	fs.BoolVar(&c.DisableLMR, "disable-lmr", false, "turn off late-move reductions")
	fs.BoolVar(&c.DisableAspirationWindows, "disable-aspiration", false, "turn off aspiration windows")
	fs.IntVar(&c.AspirationWindowHalfWidth, "aspiration-half-width", 60, "aspiration window half-width")
	fs.IntVar(&c.LMRMinDepth, "lmr-min-depth", 3, "minimum depth for late-move reductions")
	fs.IntVar(&c.LMRMinMoveIndex, "lmr-min-move-index", 3, "minimum move index for late-move reductions")
	fs.IntVar(&c.NoiseAmplitude, "noise-amplitude", 0, "difficulty degradation; 0 is expert strength")
	fs.StringVar(&c.WeightsPath, "weights-path", "", "optional YAML evaluator weight table")
	return fs.Parse(args)
}

// SearchSettings converts the process config into validated engine
// settings, loading the weight table if one was configured.
func (c *Config) SearchSettings() (search.Settings, error) {
	settings := search.DefaultSettings()
	settings.MaxDepth = c.MaxDepth
	settings.TimeLimit = time.Duration(c.TimeLimitMs) * time.Millisecond
	settings.TTSizeMB = c.TTSizeMB
	settings.EnablePVS = !c.DisablePVS
	settings.EnableLMR = !c.DisableLMR
	settings.EnableAspirationWindows = !c.DisableAspirationWindows
	settings.AspirationWindowHalfWidth = c.AspirationWindowHalfWidth
	settings.LMRMinDepth = c.LMRMinDepth
	settings.LMRMinMoveIndex = c.LMRMinMoveIndex
	settings.NoiseAmplitude = c.NoiseAmplitude
	if c.WeightsPath != "" {
		w, err := eval.LoadWeights(c.WeightsPath)
		if err != nil {
			return search.Settings{}, err
		}
		settings.Weights = w
	}
	if err := settings.Validate(); err != nil {
		return search.Settings{}, err
	}
	return settings, nil
}
