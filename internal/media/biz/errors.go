package biz

import "errors"

var (
	// ErrMissingKeyword 关键词缺失或清洗后为空
	ErrMissingKeyword = errors.New("keyword is required")

	// ErrContentNotFound 内容不存在
	ErrContentNotFound = errors.New("content item not found")

	// ErrParentNotFound 附件的父文章/页面不存在
	ErrParentNotFound = errors.New("parent post or page not found")

	// ErrInvalidFile 上传文件无效
	ErrInvalidFile = errors.New("invalid upload")

	// ErrFileTooLarge 上传文件超过大小限制
	ErrFileTooLarge = errors.New("file exceeds the upload size limit")

	// ErrStorageDisabled 未配置对象存储
	ErrStorageDisabled = errors.New("blob storage is not configured")
)
