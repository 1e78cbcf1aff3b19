package opts

import (
	"context"
	"os"

	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/console"
	"gitlab.com/tozd/go/errors"
)

// DefaultConfigFile is the conventional config name probed in the working
// directory when --config is not given.
const DefaultConfigFile = ".patchrc"

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile *string // bound to the root --config flag
	Console    *console.Console
}

// LoadConfig loads the configured file. The conventional .patchrc is
// allowed to be absent (flag-only runs fall back to defaults); a file
// named explicitly with --config is not.
func (o *RootOpts) LoadConfig(ctx context.Context) (*config.Config, error) {
	path := *o.ConfigFile

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && path == DefaultConfigFile {
			cfg := &config.Config{}
			if verr := cfg.Validate(); verr != nil {
				return nil, errors.Errorf("validating default config: %w", verr)
			}
			return cfg, nil
		}
		return nil, errors.Errorf("checking config file: %w", err)
	}

	return config.Load(ctx, path)
}
