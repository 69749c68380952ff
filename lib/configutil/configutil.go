package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/titanous/json5"
)

// localName turns `dir/loadtest.json5` into `dir/loadtest.local.json5`.
func localName(name string) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s.local%s", strings.TrimSuffix(name, ext), ext)
}

// decodeFile decodes a single json5 file over `out`, fields the file leaves out keep their
// current value. found is false if the file does not exist or is empty.
func decodeFile(name string, out any) (found bool, err error) {
	contents, err := os.ReadFile(name)
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
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	return true, nil
}

func decodeLayers(name string, out any) error {
	foundDefault, err := decodeFile(name, out)
	if err != nil {
		return err
	}
	localFilepath := localName(name)
	foundLocal, err := decodeFile(localFilepath, out)
	if err != nil {
		return err
	}
	if foundLocal {
		slog.Info("merging config with local overrides", "local", localFilepath)
	}
	if !foundDefault && !foundLocal {
		return os.ErrNotExist
	}
	return nil
}

// ReadConfig reads a configuration file, `name` should come with a file extension.
// It layers the following files, where a higher number takes priority.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// A field set in a file wins even when it is set to its zero value. If neither file exists the
// error is os.ErrNotExist.
func ReadConfig[T any](name string) (T, error) {
	var out T
	err := decodeLayers(name, &out)
	return out, err
}

// ReadConfigWithDefaults is ReadConfig, but the files are decoded over the value `defaults`
// returns, so every field they leave out keeps its default. Maps are merged key by key. A
// missing file is not an error, the defaults are returned as is.
func ReadConfigWithDefaults[T any](name string, defaults func() T) (T, error) {
	out := defaults()
	err := decodeLayers(name, &out)
	if errors.Is(err, os.ErrNotExist) {
		return defaults(), nil
	}
	if err != nil {
		return out, err
	}
	return out, nil
}

func exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// FindRecursively goes up the filesystem from the working directory until the root, it returns
// the path of the first `name` (or its .local variant) it finds. An absolute name is returned as
// is if it exists. The error is os.ErrNotExist if nothing matches.
func FindRecursively(name string) (string, error) {
	if filepath.IsAbs(name) {
		if exists(name) || exists(localName(name)) {
			return name, nil
		}
		return "", os.ErrNotExist
	}

	current, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(current, name)
		if exists(candidate) || exists(localName(candidate)) {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", os.ErrNotExist
		}
		current = parent
	}
}
