package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// localName turns "config.json5" into "config.local.json5".
func localName(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf("%s.local%s", prefix, ext))
}

// decodeJson5 decodes path into out, fields the file leaves out keep their
// current values.
func decodeJson5(path string, out any) (bool, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("configutil: parse %s: %w", path, err)
	}
	return true, nil
}

func readJson5[T any](path string) (T, bool, error) {
	var out T
	found, err := decodeJson5(path, &out)
	return out, found, err
}

// ReadConfig reads a json5 configuration file and merges the sibling
// "<name>.local.<ext>" file over it when present. It returns
// os.ErrNotExist if neither file exists.
func ReadConfig[T any](name string) (T, error) {
	out, foundDefault, err := readJson5[T](name)
	if err != nil {
		return out, err
	}

	localPath := localName(name)
	override, foundLocal, err := readJson5[T](localPath)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localPath)
	}

	if !foundDefault && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadConfigOver decodes name and then its ".local" sibling on top of base,
// so a file can set a field back to its zero value. Unlike ReadConfig it
// returns base unchanged, not os.ErrNotExist, when neither file exists.
func ReadConfigOver[T any](name string, base T) (T, error) {
	out := base
	_, err := decodeJson5(name, &out)
	if err != nil {
		return base, err
	}
	localPath := localName(name)
	foundLocal, err := decodeJson5(localPath, &out)
	if err != nil {
		return base, err
	}
	if foundLocal {
		slog.Info("applied local config overrides", "local", localPath)
	}
	return out, nil
}

// ReadRecursively is ReadConfig but walks up from the working directory
// until it finds a directory containing the named file.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	root, err := filepath.Abs("/")
	if err != nil {
		return defaultOut, err
	}
	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for current != root {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if os.IsNotExist(err) {
			current = filepath.Dir(current)
			continue
		}
		if err != nil {
			return defaultOut, err
		}
		return config, nil
	}

	return defaultOut, os.ErrNotExist
}

// EnvOverrides maps environment variable names onto the config fields they
// replace. Secrets are usually supplied this way instead of in files.
type EnvOverrides map[string]*string

// Apply copies every non-empty environment variable into its field and
// returns the names that were applied.
func (o EnvOverrides) Apply() []string {
	applied := []string{}
	for key, field := range o {
		value, ok := os.LookupEnv(key)
		if !ok || value == "" || field == nil {
			continue
		}
		*field = value
		applied = append(applied, key)
	}
	return applied
}
