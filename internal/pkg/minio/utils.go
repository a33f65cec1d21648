package minio

import (
	"fmt"
	"mime"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var bucketNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

// ValidateBucketName validates a bucket name according to S3 naming rules
func ValidateBucketName(bucketName string) error {
	if !bucketNamePattern.MatchString(bucketName) || strings.Contains(bucketName, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidBucketName, bucketName)
	}
	return nil
}

// ValidateObjectName validates an object name
func ValidateObjectName(objectName string) error {
	if objectName == "" || len(objectName) > 1024 || strings.ContainsRune(objectName, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidObjectName, objectName)
	}
	return nil
}

// SanitizeObjectName strips NUL bytes, path separators and surrounding
// dots from a client supplied file name.
func SanitizeObjectName(name string) string {
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base("/" + name)
	name = strings.Trim(name, ". ")
	if name == "" || name == "/" {
		return "file"
	}
	return name
}

// GenerateObjectKey builds a collision free key "<prefix>/<yyyy>/<mm>/<uuid>-<name>"
func GenerateObjectKey(prefix, filename string, now time.Time) string {
	key := fmt.Sprintf("%04d/%02d/%s-%s", now.Year(), int(now.Month()), uuid.New().String(), SanitizeObjectName(filename))
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

// DetectContentType detects the content type of a file based on its extension
func DetectContentType(filename string) string {
	if contentType := mime.TypeByExtension(path.Ext(filename)); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}
