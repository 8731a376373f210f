package db

import (
	"context"
	"os"
	"sync"

	"github.com/jsphweid/saychord/model"
	"github.com/jsphweid/saychord/util"
	"github.com/pkg/errors"
)

// FileStore keeps every saved sequence in one JSON document.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) read() (map[string]model.SavedSequence, error) {
	data, err := util.ReadJSONFile[map[string]model.SavedSequence](f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]model.SavedSequence{}, nil
	}
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]model.SavedSequence{}
	}
	return data, nil
}

func (f *FileStore) Save(ctx context.Context, s model.SavedSequence) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return err
	}
	data[s.Name] = s
	return util.WriteJSONFile(f.path, data)
}

func (f *FileStore) Load(ctx context.Context, name string) (model.SavedSequence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return model.SavedSequence{}, err
	}
	s, ok := data[name]
	if !ok {
		return model.SavedSequence{}, errors.Wrapf(ErrNotFound, "%q", name)
	}
	return s, nil
}

func (f *FileStore) List(ctx context.Context) ([]model.SavedSequence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return nil, err
	}
	res := make([]model.SavedSequence, 0, len(data))
	for _, name := range util.GetSortedKeys(data) {
		res = append(res, data[name])
	}
	return res, nil
}

func (f *FileStore) Delete(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := data[name]; !ok {
		return errors.Wrapf(ErrNotFound, "%q", name)
	}
	delete(data, name)
	return util.WriteJSONFile(f.path, data)
}
