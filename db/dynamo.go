package db

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/saychord/model"
	"github.com/pkg/errors"
)

// DynamoStore keeps saved sequences in a DynamoDB table with the sequence
// name as partition key "PK".
type DynamoStore struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

// NewDynamoStore connects to table. A non-empty endpoint points the client
// at a local DynamoDB.
func NewDynamoStore(table string, region string, endpoint string) (*DynamoStore, error) {
	config := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		config.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(config)
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new DynamoDB session")
	}
	return NewDynamoStoreWithClient(dynamodb.New(sess), table), nil
}

func NewDynamoStoreWithClient(client dynamodbiface.DynamoDBAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func (d *DynamoStore) Save(ctx context.Context, s model.SavedSequence) error {
	_, err := d.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      toItem(s),
	})
	return errors.Wrapf(err, "could not save sequence %q", s.Name)
}

func (d *DynamoStore) Load(ctx context.Context, name string) (model.SavedSequence, error) {
	out, err := d.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key:       key(name),
	})
	if err != nil {
		return model.SavedSequence{}, errors.Wrapf(err, "could not load sequence %q", name)
	}
	if len(out.Item) == 0 {
		return model.SavedSequence{}, errors.Wrapf(ErrNotFound, "%q", name)
	}
	return fromItem(out.Item), nil
}

func (d *DynamoStore) List(ctx context.Context) ([]model.SavedSequence, error) {
	var res []model.SavedSequence
	input := &dynamodb.ScanInput{TableName: aws.String(d.table)}
	err := d.client.ScanPagesWithContext(ctx, input, func(page *dynamodb.ScanOutput, last bool) bool {
		for _, item := range page.Items {
			res = append(res, fromItem(item))
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not list sequences")
	}
	sortByName(res)
	return res, nil
}

func (d *DynamoStore) Delete(ctx context.Context, name string) error {
	_, err := d.client.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(d.table),
		Key:                 key(name),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
		return errors.Wrapf(ErrNotFound, "%q", name)
	}
	return errors.Wrapf(err, "could not delete sequence %q", name)
}

func key(name string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"PK": {S: aws.String(name)},
	}
}

func toItem(s model.SavedSequence) map[string]*dynamodb.AttributeValue {
	chords := make([]*dynamodb.AttributeValue, len(s.Chords))
	for i, c := range s.Chords {
		chords[i] = &dynamodb.AttributeValue{S: aws.String(c)}
	}
	item := key(s.Name)
	item["ID"] = &dynamodb.AttributeValue{S: aws.String(s.ID)}
	item["Sequence"] = &dynamodb.AttributeValue{L: chords}
	item["Tempo"] = &dynamodb.AttributeValue{N: aws.String(strconv.Itoa(s.Tempo))}
	item["TimeSignature"] = &dynamodb.AttributeValue{N: aws.String(strconv.Itoa(s.TimeSignature))}
	item["LoopLength"] = &dynamodb.AttributeValue{N: aws.String(strconv.Itoa(s.LoopLength))}
	item["SavedAt"] = &dynamodb.AttributeValue{S: aws.String(s.SavedAt.UTC().Format(time.RFC3339Nano))}
	return item
}

func fromItem(item map[string]*dynamodb.AttributeValue) model.SavedSequence {
	var s model.SavedSequence
	s.Name = str(item["PK"])
	s.ID = str(item["ID"])
	if v := item["Sequence"]; v != nil {
		for _, c := range v.L {
			s.Chords = append(s.Chords, str(c))
		}
	}
	s.Tempo = num(item["Tempo"])
	s.TimeSignature = num(item["TimeSignature"])
	s.LoopLength = num(item["LoopLength"])
	if t, err := time.Parse(time.RFC3339Nano, str(item["SavedAt"])); err == nil {
		s.SavedAt = t
	}
	return s
}

func str(v *dynamodb.AttributeValue) string {
	if v == nil || v.S == nil {
		return ""
	}
	return *v.S
}

func num(v *dynamodb.AttributeValue) int {
	if v == nil || v.N == nil {
		return 0
	}
	n, _ := strconv.Atoi(*v.N)
	return n
}
