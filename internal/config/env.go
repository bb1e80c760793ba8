package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFiles are tried in order inside the site root.
var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads the first env file found in root. Variables already set
// in the process environment are not overwritten.
func loadEnvFile(root string) error {
	for _, name := range envFiles {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return nil
	}
	return fmt.Errorf("no env file in %s", root)
}
