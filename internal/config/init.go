package config

import (
	"fmt"
	"os"
	"path/filepath"

	ferrors "github.com/hydessg/hyde/internal/foundation/errors"
)

const starterHeader = "# hyde site configuration. Every key is optional.\n"

// Init writes a starter hyde.yaml into root and creates the reserved data and
// layouts directories. An existing config file is only replaced with force.
func Init(root string, force bool) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve site root %s: %w", root, err)
	}
	path := filepath.Join(absRoot, DefaultFilename)
	if _, err := os.Stat(path); err == nil && !force {
		return "", ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).Build()
	}

	cfg := Defaults(absRoot)
	data, err := cfg.Marshal()
	if err != nil {
		return "", err
	}

	for _, dir := range []string{absRoot, cfg.DataDir(), cfg.LayoutsDir()} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", ferrors.FileSystemError("create directory").WithCause(err).
				WithContext("path", dir).Build()
		}
	}
	if err := os.WriteFile(path, append([]byte(starterHeader), data...), 0o600); err != nil {
		return "", ferrors.FileSystemError("write configuration").WithCause(err).
			WithContext("path", path).Build()
	}
	return path, nil
}
