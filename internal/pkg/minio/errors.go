package minio

import (
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("minio: invalid bucket name")

	// ErrInvalidObjectName indicates that the object name is invalid
	ErrInvalidObjectName = errors.New("minio: invalid object name")
)

// Error represents a MinIO error with additional context
type Error struct {
	Op     string
	Err    error
	Bucket string
	Object string
}

func (e *Error) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("minio: %s failed for bucket=%s, object=%s: %v", e.Op, e.Bucket, e.Object, e.Err)
	}
	return fmt.Sprintf("minio: %s failed for bucket=%s: %v", e.Op, e.Bucket, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a missing bucket or object
func IsNotFound(err error) bool {
	switch minio.ToErrorResponse(errors.Unwrap(err)).Code {
	case "NoSuchKey", "NoSuchBucket":
		return true
	}
	return false
}

func wrapError(op string, err error, bucket, object string) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err, Bucket: bucket, Object: object}
}
