package util

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

func GetKeys[A comparable, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func GetSortedKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := GetKeys(m)
	slices.Sort(keys)
	return keys
}

func Clamp[A constraints.Ordered](v A, lo A, hi A) A {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Contains[A comparable](list []A, v A) bool {
	return slices.Contains(list, v)
}

// WriteJSONFile writes data to path through a temp file so readers never see a
// partial document.
func WriteJSONFile(path string, data any) error {
	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return errors.Wrap(err, "could not encode json")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return errors.Wrapf(err, "could not create dir %v", dir)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0666); err != nil {
		return errors.Wrapf(err, "write failed for file %v", tmp)
	}
	return errors.Wrap(os.Rename(tmp, path), "could not move file into place")
}

// ReadJSONFile decodes the JSON document at path into a value of type A.
func ReadJSONFile[A any](path string) (A, error) {
	var data A
	dat, err := os.ReadFile(path)
	if err != nil {
		return data, err
	}
	err = json.Unmarshal(dat, &data)
	return data, errors.Wrapf(err, "could not decode %v", path)
}
