package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// MinioConfig points at any S3-compatible store (MinIO, Cloudflare R2, S3).
type MinioConfig struct {
	Endpoint string `env:"MINIO_ENDPOINT, required"`
	Username string `env:"MINIO_USERNAME, required"`
	Password string `env:"MINIO_PASSWORD, required"`
	Bucket   string `env:"MINIO_BUCKET, default=stego"`
	Region   string `env:"MINIO_REGION, default=us-east-1"`
	Secure   bool   `env:"MINIO_SECURE, default=false"`
}

func NewMinioConfigFromEnv() (*MinioConfig, error) {
	return newMinioConfig(envconfig.OsLookuper())
}

func newMinioConfig(lookuper envconfig.Lookuper) (*MinioConfig, error) {
	var cfg MinioConfig
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}

	return &cfg, nil
}
