package db

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/saychord/model"
	"github.com/stretchr/testify/assert"
)

type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
	mu    sync.Mutex
	items map[string]map[string]*dynamodb.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]*dynamodb.AttributeValue{}}
}

func (f *fakeDynamo) PutItemWithContext(ctx aws.Context, in *dynamodb.PutItemInput, opts ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[*in.Item["PK"].S] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItemWithContext(ctx aws.Context, in *dynamodb.GetItemInput, opts ...request.Option) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[*in.Key["PK"].S]}, nil
}

func (f *fakeDynamo) ScanPagesWithContext(ctx aws.Context, in *dynamodb.ScanInput, fn func(*dynamodb.ScanOutput, bool) bool, opts ...request.Option) error {
	f.mu.Lock()
	var items []map[string]*dynamodb.AttributeValue
	for _, item := range f.items {
		items = append(items, item)
	}
	f.mu.Unlock()
	// one item per page to exercise paging
	for i, item := range items {
		if !fn(&dynamodb.ScanOutput{Items: []map[string]*dynamodb.AttributeValue{item}}, i == len(items)-1) {
			break
		}
	}
	return nil
}

func (f *fakeDynamo) DeleteItemWithContext(ctx aws.Context, in *dynamodb.DeleteItemInput, opts ...request.Option) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := *in.Key["PK"].S
	if _, ok := f.items[name]; !ok {
		return nil, awserr.New(dynamodb.ErrCodeConditionalCheckFailedException, "The conditional request failed", nil)
	}
	delete(f.items, name)
	return &dynamodb.DeleteItemOutput{}, nil
}

func saved(name string, chords ...string) model.SavedSequence {
	return model.SavedSequence{
		ID:            "id-" + name,
		Name:          name,
		Chords:        chords,
		Tempo:         96,
		TimeSignature: 3,
		LoopLength:    8,
		SavedAt:       time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	}
}

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()
	assert := assert.New(t)

	list, err := store.List(ctx)
	assert.NoError(err)
	assert.Empty(list)

	_, err = store.Load(ctx, "verse")
	assert.ErrorIs(err, ErrNotFound)

	assert.NoError(store.Save(ctx, saved("verse", "C", "Am", "G7")))
	assert.NoError(store.Save(ctx, saved("bridge", "Em")))

	got, err := store.Load(ctx, "verse")
	assert.NoError(err)
	assert.Equal(saved("verse", "C", "Am", "G7"), got)

	assert.NoError(store.Save(ctx, saved("verse", "Cmaj7")))
	got, err = store.Load(ctx, "verse")
	assert.NoError(err)
	assert.Equal([]string{"Cmaj7"}, got.Chords)

	list, err = store.List(ctx)
	assert.NoError(err)
	assert.Len(list, 2)
	assert.Equal("bridge", list[0].Name)
	assert.Equal("verse", list[1].Name)

	assert.NoError(store.Delete(ctx, "bridge"))
	assert.ErrorIs(store.Delete(ctx, "bridge"), ErrNotFound)
	_, err = store.Load(ctx, "bridge")
	assert.ErrorIs(err, ErrNotFound)
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, NewFileStore(filepath.Join(t.TempDir(), "nested", "sequences.json")))
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequences.json")
	ctx := context.Background()
	assert.NoError(t, NewFileStore(path).Save(ctx, saved("verse", "C")))

	got, err := NewFileStore(path).Load(ctx, "verse")
	assert.NoError(t, err)
	assert.Equal(t, saved("verse", "C"), got)
}

func TestFileStoreCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequences.json")
	assert.NoError(t, os.WriteFile(path, []byte("{"), 0666))
	_, err := NewFileStore(path).List(context.Background())
	assert.Error(t, err)
}

func TestDynamoStore(t *testing.T) {
	exerciseStore(t, NewDynamoStoreWithClient(newFakeDynamo(), "saychord-sequences"))
}

func TestItemEncoding(t *testing.T) {
	item := toItem(saved("verse", "C", "G7"))
	assert := assert.New(t)
	assert.Equal("verse", *item["PK"].S)
	assert.Equal("96", *item["Tempo"].N)
	assert.Len(item["Sequence"].L, 2)
	assert.Equal("2024-03-01T10:30:00Z", *item["SavedAt"].S)
	assert.Equal(saved("verse", "C", "G7"), fromItem(item))
}
