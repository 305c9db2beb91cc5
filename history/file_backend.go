package history

import (
	"os"
	"path/filepath"
)

// FileBackend stores the serialized list in a single file, the closest local
// analogue to a browser storage slot.
type FileBackend struct {
	Path string
}

func NewFileBackend(path string) (*FileBackend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return &FileBackend{Path: path}, nil
}

func (f *FileBackend) Load() ([]byte, error) {
	raw, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return raw, err
}

func (f *FileBackend) Save(data []byte) error {
	return os.WriteFile(f.Path, data, 0644)
}
