package config

import (
	"os"
	"path/filepath"
)

// FindEnvFile resolves an env file name. Absolute names are used as given;
// relative ones are looked up in the working directory and then in each
// parent, nearest first. An empty name means ".env".
func FindEnvFile(name string) (string, error) {
	if name == "" {
		name = ".env"
	}
	if filepath.IsAbs(name) {
		_, err := os.Stat(name)
		return name, err
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, name)
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path, nil
		}
		up := filepath.Dir(dir)
		if up == dir {
			return "", os.ErrNotExist
		}
		dir = up
	}
}
