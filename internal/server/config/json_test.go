package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{old[0]}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestParseJson_Overlay(t *testing.T) {
	file := filepath.Join(t.TempDir(), "conf.json")
	body := `{
		"endpoint_addr_http": ":9999",
		"secret_key": "fromjson",
		"access_token_validity_duration": "5m",
		"s3_bucket": "avatars"
	}`
	require.NoError(t, os.WriteFile(file, []byte(body), 0o600))

	withArgs(t, "-c", file)

	c := &Config{}
	c.LoadDefaults()
	parseJson(c)

	assert.Equal(t, ":9999", c.EndpointAddrHTTP)
	assert.Equal(t, "fromjson", c.SecretKey)
	assert.Equal(t, 5*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, "avatars", c.S3Bucket)
	// untouched fields keep their defaults
	assert.Equal(t, "admin", c.S3RootUser)
}

func TestParseJson_NoFileFlag(t *testing.T) {
	withArgs(t)

	c := &Config{}
	c.LoadDefaults()
	parseJson(c)

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
}

func TestParseJson_BadFilePanics(t *testing.T) {
	withArgs(t, "-c", filepath.Join(t.TempDir(), "missing.json"))

	c := &Config{}
	c.LoadDefaults()
	assert.Panics(t, func() { parseJson(c) })
}
