package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DataDir returns the directory holding settings, the database and the
// snapshot slot. An explicit override wins over the OS config directory.
func DataDir(appName, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return filepath.Join(configDir, appName), nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get data dir: %w", err)
		}
		return "", fmt.Errorf("get data dir: %w", homeErr)
	}
	return filepath.Join(homeDir, "."+strings.ToLower(appName)), nil
}
