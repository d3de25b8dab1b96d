package s3infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hisworks-api/internal/config"
	"github.com/hisworks-api/internal/domain"
)

// maxPhraseObjectSize bounds how much of the phrase object is read.
const maxPhraseObjectSize = 1 << 20

// ObjectGetter is the subset of the S3 client the phrase store uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewClient creates an S3 client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint and enables path-style addressing.
func NewClient(awsCfg aws.Config, cfg *config.Config) *s3.Client {
	clientOpts := []func(*s3.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, clientOpts...)
}

// PhraseStore reads the reminder copy pool from a JSON object:
//
//	{"titles": ["..."], "bodies": ["..."]}
type PhraseStore struct {
	client ObjectGetter
	bucket string
	key    string
}

func NewPhraseStore(client ObjectGetter, bucket, key string) *PhraseStore {
	return &PhraseStore{client: client, bucket: bucket, key: key}
}

// Load fetches and decodes the phrase object. Blank entries are dropped.
func (s *PhraseStore) Load(ctx context.Context) (domain.Phrases, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return domain.Phrases{}, fmt.Errorf("s3 get object: %w", err)
	}
	defer out.Body.Close()

	var p domain.Phrases
	if err := json.NewDecoder(io.LimitReader(out.Body, maxPhraseObjectSize)).Decode(&p); err != nil {
		return domain.Phrases{}, fmt.Errorf("decode phrases s3://%s/%s: %w", s.bucket, s.key, err)
	}
	p.Titles = nonBlank(p.Titles)
	p.Bodies = nonBlank(p.Bodies)
	return p, nil
}

func nonBlank(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
