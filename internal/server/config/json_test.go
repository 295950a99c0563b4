package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJson(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	path := writeTempConfig(t, `{
		"endpoint_addr_http": ":7070",
		"database_dsn": "postgres://json",
		"access_token_secret": "ja",
		"refresh_token_secret": "jr",
		"access_token_validity_duration": "5m",
		"refresh_token_validity_duration": "240h",
		"s3_root_user": "juser",
		"s3_root_password": "jpass",
		"s3_bucket": "jbucket",
		"s3_region": "eu-west-1",
		"s3_base_endpoint": "http://json-endpoint",
		"secure_cookies": true
	}`)

	os.Args = []string{"cmd", "-c", path}

	config := &Config{}
	parseJson(config)

	assert.Equal(t, ":7070", config.EndpointAddrHTTP)
	assert.Equal(t, "postgres://json", config.DatabaseDSN)
	assert.Equal(t, "ja", config.AccessTokenSecret)
	assert.Equal(t, "jr", config.RefreshTokenSecret)
	assert.Equal(t, 5*time.Minute, config.AccessTokenValidityDuration)
	assert.Equal(t, 240*time.Hour, config.RefreshTokenValidityDuration)
	assert.Equal(t, "juser", config.S3RootUser)
	assert.Equal(t, "jpass", config.S3RootPassword)
	assert.Equal(t, "jbucket", config.S3Bucket)
	assert.Equal(t, "eu-west-1", config.S3Region)
	assert.Equal(t, "http://json-endpoint", config.S3BaseEndpoint)
	assert.True(t, config.SecureCookies)
}

func TestParseJson_NoFileFlag(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"cmd"}

	config := &Config{}
	config.LoadDefaults()
	parseJson(config)

	// untouched
	assert.Equal(t, ":8080", config.EndpointAddrHTTP)
}

func TestParseJson_InvalidFilePanics(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	path := writeTempConfig(t, `{not json`)
	os.Args = []string{"cmd", "-c", path}

	config := &Config{}
	require.Panics(t, func() { parseJson(config) })
}
