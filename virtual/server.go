package virtual

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ServerConfig holds the preview server settings read from quire.cfg.
type ServerConfig struct {
	Expires       Duration          `toml:"expires"`       // Expiry of rendered pages
	StaticExpires Duration          `toml:"staticexpires"` // Expiry of passthrough files
	Headers       map[string]string `toml:"headers"`       // Extra response headers
}

// Duration is a time.Duration written as text, such as "1h30m".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("negative duration %q", text)
	}
	*d = Duration(v)
	return nil
}

// ServerConfig reads quire.cfg from the root of the input directory.
// A missing file yields an empty ServerConfig.
func (vfs *FS) ServerConfig() (*ServerConfig, error) {
	var cfg ServerConfig
	b, err := fs.ReadFile(vfs.fs, configFile)
	if errors.Is(err, fs.ErrNotExist) {
		return &cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("read %s: %w", configFile, err)
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configFile, err)
	}
	if len(cfg.Headers) > 0 {
		headers := make(map[string]string, len(cfg.Headers))
		for k, v := range cfg.Headers {
			headers[http.CanonicalHeaderKey(k)] = v
		}
		cfg.Headers = headers
	}
	return &cfg, nil
}
