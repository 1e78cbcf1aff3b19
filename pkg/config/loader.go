package config

import (
	"context"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&PatchrcParser{})
}

// 🔧 PatchrcParser handles the extensionless `.patchrc` convention: the file
// is tried as YAML first, then as HCL.
type PatchrcParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *PatchrcParser) CanParse(filename string) bool {
	base := filepath.Base(filename)
	return base == ".patchrc" || strings.HasSuffix(base, ".patchrc")
}

// 📝 Parse parses the config, trying YAML before HCL
func (p *PatchrcParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	cfg, yamlErr := (&YAMLParser{}).Parse(ctx, data)
	if yamlErr == nil {
		return cfg, nil
	}

	cfg, hclErr := (&HCLParser{}).Parse(ctx, data)
	if hclErr == nil {
		return cfg, nil
	}

	return nil, errors.Errorf("parsing .patchrc as YAML (%s) or HCL: %w", yamlErr, hclErr)
}
