package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/capture-cli/internal/model"
)

// FileStore persists the snapshot as a single JSON object on disk, in the
// same keyed layout the snapshot marshals to. The default driver.
type FileStore struct {
	path string
}

// NewFile creates a FileStore at the given path. A missing file reads as an
// empty snapshot.
func NewFile(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(_ context.Context) (*model.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewSnapshot(), nil
		}
		return nil, eris.Wrapf(err, "file: read %s", f.path)
	}

	snap := model.NewSnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, eris.Wrapf(err, "file: parse %s", f.path)
	}
	return snap, nil
}

// Save writes the snapshot atomically: temp file in the same directory, then
// rename over the target.
func (f *FileStore) Save(_ context.Context, snap *model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return eris.Wrap(err, "file: marshal snapshot")
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".capture-*.json")
	if err != nil {
		return eris.Wrapf(err, "file: temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "file: write snapshot")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "file: close temp file")
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "file: rename to %s", f.path)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
