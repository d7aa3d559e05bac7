/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the runtime configuration of a shapestore deployment.
type Config struct {
	AWS        AWSConfig
	DynamoDB   DynamoDBConfig
	SchemaFile string
}

// AWSConfig holds the credentials used to build the DynamoDB client. Empty
// keys fall back to the default AWS credential chain.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// DynamoDBConfig configures the table and the transport.
type DynamoDBConfig struct {
	// Endpoint overrides the service endpoint, e.g. DynamoDB Local.
	Endpoint           string
	TableName          string
	ConsistentReads    bool
	StreamPageSize     int32
	StreamMaxRetries   int
	StreamRetryBackoff time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("DDB_CONSISTENT_READS", false)
	v.SetDefault("DDB_STREAM_PAGE_SIZE", 100)
	v.SetDefault("DDB_STREAM_MAX_RETRIES", 3)
	v.SetDefault("DDB_STREAM_RETRY_BACKOFF", time.Second)
}

// EnvFile returns the dotenv file name for env: .env, or .env.<env>.
func EnvFile(env string) string {
	if env == "" {
		return ".env"
	}
	return ".env." + env
}

// Load reads the dotenv file for env from the working directory, when it
// exists, and the process environment. Environment variables take precedence.
func Load(env string) (*Config, error) {
	return LoadFiles(EnvFile(env))
}

// LoadFiles is Load with explicit dotenv files. Missing files are skipped.
func LoadFiles(files ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", f, err)
		}
	}
	if len(existing) > 0 {
		values, err := godotenv.Read(existing...)
		if err != nil {
			return nil, fmt.Errorf("failed to read env files: %w", err)
		}
		fileValues := make(map[string]any, len(values))
		for k, val := range values {
			fileValues[k] = val
		}
		if err := v.MergeConfigMap(fileValues); err != nil {
			return nil, fmt.Errorf("failed to merge env files: %w", err)
		}
	}
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	table := v.GetString("DDB_TABLE_NAME")
	if table == "" {
		return nil, fmt.Errorf("DDB_TABLE_NAME is required (set via environment variable or .env file)")
	}
	return &Config{
		AWS: AWSConfig{
			Region:          v.GetString("AWS_REGION"),
			AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
		},
		DynamoDB: DynamoDBConfig{
			Endpoint:           v.GetString("DDB_ENDPOINT"),
			TableName:          table,
			ConsistentReads:    v.GetBool("DDB_CONSISTENT_READS"),
			StreamPageSize:     v.GetInt32("DDB_STREAM_PAGE_SIZE"),
			StreamMaxRetries:   v.GetInt("DDB_STREAM_MAX_RETRIES"),
			StreamRetryBackoff: v.GetDuration("DDB_STREAM_RETRY_BACKOFF"),
		},
		SchemaFile: v.GetString("SHAPESTORE_SCHEMA_FILE"),
	}, nil
}

// HasStaticCredentials reports whether explicit access keys are configured.
func (c *AWSConfig) HasStaticCredentials() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}
