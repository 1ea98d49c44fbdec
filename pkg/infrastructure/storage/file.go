package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"storefront/pkg/domain/model"
)

var _ model.Storage = &File{}

type entriesJSON struct {
	Entries map[string]string `json:"entries"`
}

// File keeps all entries in one JSON document and rewrites it on every change.
type File struct {
	mu      sync.Mutex
	path    string
	entries map[string]string
}

// OpenFile loads the document at path. A missing file starts an empty store.
func OpenFile(path string) (*File, error) {
	entries, err := loadEntries(path)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			return nil, err
		}
		entries = make(map[string]string)
	}
	return &File{path: path, entries: entries}, nil
}

func loadEntries(path string) (map[string]string, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var data entriesJSON
	if err = json.Unmarshal(file, &data); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	if data.Entries == nil {
		return make(map[string]string), nil
	}
	return data.Entries, nil
}

func (f *File) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.entries[key]
	if !ok {
		return nil, model.ErrKeyNotFound
	}
	return []byte(value), nil
}

func (f *File) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := cloneEntries(f.entries)
	next[key] = string(value)
	if err := f.save(next); err != nil {
		return err
	}
	f.entries = next
	return nil
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.entries[key]; !ok {
		return model.ErrKeyNotFound
	}
	next := cloneEntries(f.entries)
	delete(next, key)
	if err := f.save(next); err != nil {
		return err
	}
	f.entries = next
	return nil
}

// save writes to a temp file first so a crash never leaves half a document.
func (f *File) save(entries map[string]string) error {
	jsonData, err := json.MarshalIndent(entriesJSON{Entries: entries}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode entries")
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(jsonData); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write entries")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), f.path), "replace storage file")
}

func cloneEntries(entries map[string]string) map[string]string {
	next := make(map[string]string, len(entries)+1)
	for k, v := range entries {
		next[k] = v
	}
	return next
}
