package bundle

import (
	"fmt"

	"rsbundle/internal/minify"
	"rsbundle/internal/transform"
)

// Config is the immutable compression configuration of one run.
type Config struct {
	StripTests    bool
	StripDocs     bool
	ExpandModules bool
	Minify        minify.Level
}

// DefaultConfig mirrors the CLI defaults.
func DefaultConfig() Config {
	return Config{
		StripTests:    true,
		StripDocs:     true,
		ExpandModules: true,
		Minify:        minify.SingleLine,
	}
}

// Fingerprint identifies the configuration in cache keys.
func (c Config) Fingerprint() string {
	return fmt.Sprintf("tests=%t docs=%t expand=%t minify=%s", c.StripTests, c.StripDocs, c.ExpandModules, c.Minify)
}

func (c Config) transform() transform.Config {
	return transform.Config{StripTests: c.StripTests, StripDocs: c.StripDocs}
}
