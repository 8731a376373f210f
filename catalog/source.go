package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/jsphweid/saychord/constants"
	"github.com/pkg/errors"
)

// Source is where catalog JSON comes from.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

type FileSource struct {
	Path string
}

func (s FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(s.Path)
}

func (s FileSource) String() string {
	return s.Path
}

type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, errors.Errorf("unexpected status %v", res.Status)
	}
	return res.Body, nil
}

func (s HTTPSource) String() string {
	return s.URL
}

type S3Source struct {
	Bucket string
	Key    string
	Client s3iface.S3API
}

func (s S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (s S3Source) String() string {
	return fmt.Sprintf("s3://%v/%v", s.Bucket, s.Key)
}

// BytesSource serves catalog JSON held in memory.
type BytesSource []byte

func (s BytesSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s)), nil
}

func (s BytesSource) String() string {
	return "memory"
}

// SourceFromEnv picks a source from the environment: an S3 object, then a URL,
// then a local file.
func SourceFromEnv() (Source, error) {
	if bucket, key := constants.GetCatalogS3Location(); bucket != "" && key != "" {
		sess, err := session.NewSession(&aws.Config{Region: aws.String(constants.GetAWSRegion())})
		if err != nil {
			return nil, errors.Wrap(err, "could not create aws session")
		}
		return S3Source{Bucket: bucket, Key: key, Client: s3.New(sess)}, nil
	}
	if url := constants.GetCatalogURL(); url != "" {
		return HTTPSource{URL: url}, nil
	}
	return FileSource{Path: constants.GetCatalogPath()}, nil
}
