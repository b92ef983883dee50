package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFlags_Overrides(t *testing.T) {
	withArgs(t, "-a", ":7070", "-d", "postgres://db/x", "-t", "30", "-b", "uploads")

	c := &Config{}
	c.LoadDefaults()
	parseFlags(c)

	assert.Equal(t, ":7070", c.EndpointAddrHTTP)
	assert.Equal(t, "postgres://db/x", c.DatabaseDSN)
	assert.Equal(t, 30*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, "uploads", c.S3Bucket)
	// defaults survive for flags not given
	assert.Equal(t, "secretKey", c.SecretKey)
}

func TestParseFlags_IgnoresForeignFlags(t *testing.T) {
	withArgs(t, "-c", "conf.json", "-a", ":7071")

	c := &Config{}
	c.LoadDefaults()
	parseFlags(c)

	assert.Equal(t, ":7071", c.EndpointAddrHTTP)
}
