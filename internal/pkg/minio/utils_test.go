package minio

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr bool
	}{
		{"valid", "media", false},
		{"valid with dash", "media-library", false},
		{"too short", "ab", true},
		{"uppercase", "Media", true},
		{"double dot", "me..dia", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			assert.Equal(t, tt.wantErr, err != nil)
			if err != nil {
				assert.ErrorIs(t, err, ErrInvalidBucketName)
			}
		})
	}
}

func TestSanitizeObjectName(t *testing.T) {
	assert.Equal(t, "photo.jpg", SanitizeObjectName("photo.jpg"))
	assert.Equal(t, "passwd", SanitizeObjectName("../../etc/passwd"))
	assert.Equal(t, "evil.png", SanitizeObjectName(`C:\tmp\evil.png`))
	assert.Equal(t, "file", SanitizeObjectName(".."))
	assert.Equal(t, "file", SanitizeObjectName(""))
	assert.Equal(t, "ab.txt", SanitizeObjectName("a\x00b.txt"))
}

func TestGenerateObjectKey(t *testing.T) {
	now := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	key := GenerateObjectKey("/uploads/", "../cat.gif", now)
	assert.True(t, strings.HasPrefix(key, "uploads/2026/03/"), key)
	assert.True(t, strings.HasSuffix(key, "-cat.gif"), key)

	other := GenerateObjectKey("uploads", "cat.gif", now)
	assert.NotEqual(t, key, other)

	assert.True(t, strings.HasPrefix(GenerateObjectKey("", "a.txt", now), "2026/03/"))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/png", DetectContentType("a.png"))
	assert.Equal(t, "application/octet-stream", DetectContentType("noext"))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate(), "credentials missing")

	cfg.AccessKeyID, cfg.SecretAccessKey = "ak", "sk"
	assert.NoError(t, cfg.Validate())

	cfg.PresignExpiry = 8 * 24 * time.Hour
	assert.Error(t, cfg.Validate())
}
