package data

import (
	"github.com/lk2023060901/media-attached-filter/internal/media/biz"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/minio"
)

// NewBlobStore 返回基于 MinIO 的附件存储；未启用对象存储时返回 nil
func NewBlobStore(client *minio.Client) biz.BlobStore {
	if client == nil {
		return nil
	}
	return client
}
