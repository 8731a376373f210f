// Package db persists saved sequences by name.
package db

import (
	"context"
	"sort"

	"github.com/jsphweid/saychord/constants"
	"github.com/jsphweid/saychord/model"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("saved sequence not found")

// Store is a key-value store of saved sequences keyed by name. Saving an
// existing name replaces it.
type Store interface {
	Save(ctx context.Context, s model.SavedSequence) error
	Load(ctx context.Context, name string) (model.SavedSequence, error)
	List(ctx context.Context) ([]model.SavedSequence, error)
	Delete(ctx context.Context, name string) error
}

// FromEnv returns a DynamoStore when a table is configured, otherwise a
// FileStore.
func FromEnv() (Store, error) {
	if table := constants.GetDynamoTable(); table != "" {
		return NewDynamoStore(table, constants.GetAWSRegion(), constants.GetDynamoEndpoint())
	}
	return NewFileStore(constants.GetStorePath()), nil
}

func sortByName(list []model.SavedSequence) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
}
