package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinPublicURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		key  string
		want string
	}{
		{"host only", "https://cdn.example.com", "tournaments/1/standings.json", "https://cdn.example.com/tournaments/1/standings.json"},
		{"base with path", "https://cdn.example.com/results", "tournaments/1/standings.json", "https://cdn.example.com/results/tournaments/1/standings.json"},
		{"base with trailing slash and key with leading slash", "https://cdn.example.com/results/", "/tournaments/2/standings.json", "https://cdn.example.com/results/tournaments/2/standings.json"},
		{"empty key", "https://cdn.example.com", "", ""},
		{"empty base", "", "tournaments/1/standings.json", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinPublicURL(tt.base, tt.key))
		})
	}
}

func TestStandingsKey(t *testing.T) {
	assert.Equal(t, "tournaments/42/standings.json", StandingsKey(42))
}

func TestCloudflareR2ConfigValidate(t *testing.T) {
	cfg := CloudflareR2Config{
		AccountID:       "acc",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "results",
		PublicBaseURL:   "https://cdn.example.com",
	}
	assert.NoError(t, cfg.Validate())

	cfg.BucketName = ""
	assert.Error(t, cfg.Validate())
}
