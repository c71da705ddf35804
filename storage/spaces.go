package storage

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/models"
)

type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string
	ObjectKey string
}

// objectAPI is the part of the S3 client the settings store needs.
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// SettingsStore keeps the settings document as one JSON object in an
// S3-compatible bucket, so every instance pointing at the same bucket sees
// the same provider choice and keys.
type SettingsStore struct {
	client objectAPI
	bucket string
	key    string
}

func NewSettingsStore(ctx context.Context, cfg SpacesConfig) (*SettingsStore, error) {
	const op = "storage.NewSettingsStore"

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Configuration(op, err, "Unable to load object storage config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newSettingsStore(client, cfg.Bucket, cfg.ObjectKey), nil
}

func newSettingsStore(client objectAPI, bucket, key string) *SettingsStore {
	return &SettingsStore{client: client, bucket: bucket, key: key}
}

func (s *SettingsStore) Load(ctx context.Context) (*models.Settings, error) {
	const op = "SpacesSettingsStore.Load"

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if stderrors.As(err, &noSuchKey) {
			return &models.Settings{}, nil
		}
		return nil, errors.ServiceUnavailable(op, err, "Failed to read settings from object storage")
	}
	defer out.Body.Close()

	var settings models.Settings
	if err := json.NewDecoder(out.Body).Decode(&settings); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode settings")
	}
	return &settings, nil
}

func (s *SettingsStore) Save(ctx context.Context, settings *models.Settings) error {
	const op = "SpacesSettingsStore.Save"

	data, err := json.Marshal(settings)
	if err != nil {
		return errors.Internal(op, err, "Failed to encode settings")
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.ServiceUnavailable(op, err, "Failed to save settings to object storage")
	}
	return nil
}
