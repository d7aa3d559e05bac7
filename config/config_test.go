/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
	"DDB_ENDPOINT", "DDB_TABLE_NAME", "DDB_CONSISTENT_READS",
	"DDB_STREAM_PAGE_SIZE", "DDB_STREAM_MAX_RETRIES", "DDB_STREAM_RETRY_BACKOFF",
	"SHAPESTORE_SCHEMA_FILE",
}

// clearEnv unsets every recognized key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DDB_TABLE_NAME", "shapes")

	cfg, err := LoadFiles(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Equal(t, "shapes", cfg.DynamoDB.TableName)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Equal(t, int32(100), cfg.DynamoDB.StreamPageSize)
	assert.Equal(t, 3, cfg.DynamoDB.StreamMaxRetries)
	assert.Equal(t, time.Second, cfg.DynamoDB.StreamRetryBackoff)
	assert.False(t, cfg.DynamoDB.ConsistentReads)
	assert.False(t, cfg.AWS.HasStaticCredentials())
}

func TestLoadRequiresTable(t *testing.T) {
	clearEnv(t)

	_, err := LoadFiles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DDB_TABLE_NAME")
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	file := filepath.Join(t.TempDir(), ".env.test")
	require.NoError(t, os.WriteFile(file, []byte(
		"DDB_TABLE_NAME=from-file\n"+
			"DDB_ENDPOINT=http://localhost:8000\n"+
			"DDB_CONSISTENT_READS=true\n"+
			"DDB_STREAM_PAGE_SIZE=25\n"+
			"AWS_ACCESS_KEY_ID=key\n"+
			"AWS_SECRET_ACCESS_KEY=secret\n"), 0o600))

	cfg, err := LoadFiles(file)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.DynamoDB.TableName)
	assert.Equal(t, "http://localhost:8000", cfg.DynamoDB.Endpoint)
	assert.True(t, cfg.DynamoDB.ConsistentReads)
	assert.Equal(t, int32(25), cfg.DynamoDB.StreamPageSize)
	assert.True(t, cfg.AWS.HasStaticCredentials())

	// the environment wins over the file
	t.Setenv("DDB_TABLE_NAME", "from-env")
	cfg, err = LoadFiles(file)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.DynamoDB.TableName)
}

func TestEnvFile(t *testing.T) {
	assert.Equal(t, ".env", EnvFile(""))
	assert.Equal(t, ".env.dev", EnvFile("dev"))
}
