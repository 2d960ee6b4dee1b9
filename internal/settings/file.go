package settings

import (
	"context"
	"encoding/json"
	"os"
	"sync"
)

type fileContents struct {
	GeminiAPIKey string `json:"gemini_api_key"`
}

// FileStore is the single-process fallback when Redis is not configured:
// one JSON file, written atomically via a temp file rename.
type FileStore struct {
	mu       sync.RWMutex
	filename string
	contents fileContents
}

func NewFileStore(filename string) (*FileStore, error) {
	fs := &FileStore{filename: filename}
	if err := fs.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) APIKey(_ context.Context) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.contents.GeminiAPIKey, nil
}

func (fs *FileStore) SetAPIKey(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.contents.GeminiAPIKey = key
	return fs.save()
}

func (fs *FileStore) save() error {
	data, err := json.MarshalIndent(fs.contents, "", "  ")
	if err != nil {
		return err
	}

	tmpFile := fs.filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpFile, fs.filename)
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.filename)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &fs.contents)
}
