package autoapply

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// LoadOverrides reads the live-override TOML document. An absent file is a
// valid empty document; a present-but-unparsable file is a loud error, so a
// corrupt live config can never be silently replaced by an empty one.
func LoadOverrides(path string) (map[string]any, error) {
	// #nosec G304 -- path is operator-provided overrides path.
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read live overrides: %w", err)
	}

	doc := map[string]any{}
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("live overrides %s is corrupt: %w", path, err)
	}
	return doc, nil
}

func storeOverrides(path string, doc map[string]any) error {
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode live overrides: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create overrides dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o640); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// acquireLock takes an exclusive-create lockfile next to the overrides
// file. A held lock means another promotion run is mid-write; that is an
// error, not a wait, because concurrent runs are out of contract.
func acquireLock(path string) (release func(), err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create overrides dir: %w", err)
	}

	lockPath := path + ".lock"
	// #nosec G304 -- derived from operator-provided overrides path.
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("live overrides locked by another run (%s exists)", lockPath)
		}
		return nil, fmt.Errorf("acquire overrides lock: %w", err)
	}
	f.Close()
	return func() { os.Remove(lockPath) }, nil
}
