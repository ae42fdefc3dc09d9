package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Endpoint:  "localhost:9000",
		AccessKey: "a",
		SecretKey: "b",
		Bucket:    "datalake",
	}
	require.NoError(t, valid.Validate())
	assert.False(t, valid.IsZero())

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing endpoint", func(c *Config) { c.Endpoint = "" }, "endpoint is required"},
		{"scheme in endpoint", func(c *Config) { c.Endpoint = "http://localhost:9000" }, "must not include scheme"},
		{"missing access key", func(c *Config) { c.AccessKey = " " }, "access key"},
		{"missing secret key", func(c *Config) { c.SecretKey = "" }, "secret key"},
		{"missing bucket", func(c *Config) { c.Bucket = "" }, "bucket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseURL(t *testing.T) {
	loc, err := ParseURL("s3://datalake/my-project/data/customers.csv")
	require.NoError(t, err)
	assert.Equal(t, Location{Bucket: "datalake", Key: "my-project/data/customers.csv"}, loc)
	assert.Equal(t, "s3://datalake/my-project/data/customers.csv", loc.String())

	for _, bad := range []string{"", "sql://db/public/t", "s3://", "s3://bucket", "s3:///key"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseURL(bad)
			assert.Error(t, err)
		})
	}
}

func TestJoinKey(t *testing.T) {
	assert.Equal(t, "p/nefertem/r1/report.json", JoinKey("p", "/nefertem/", "", "r1", "report.json"))
	assert.Equal(t, "", JoinKey())
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	c, err := New(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "datalake"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "datalake", c.Bucket())
}
