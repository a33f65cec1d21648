package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/media-attached-filter/internal/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`              // 业务错误码（0表示成功）
	Message string      `json:"message,omitempty"` // 提示信息
	Data    interface{} `json:"data"`
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, Response{Code: apperrors.Success, Data: data})
}

// Created 创建资源成功（201）
func Created(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusCreated, Response{Code: apperrors.Success, Data: data})
}

// ErrorWithCode 使用错误码的错误响应
func ErrorWithCode(c *gin.Context, code int, details ...string) {
	c.JSON(apperrors.GetHTTPStatus(code), Response{
		Code:    code,
		Message: apperrors.FormatError(code, details...),
		Data:    struct{}{},
	})
}

// AbortWithCode 同 ErrorWithCode，并中断后续 handler
func AbortWithCode(c *gin.Context, code int, details ...string) {
	ErrorWithCode(c, code, details...)
	c.Abort()
}

// BadRequest 400 错误
func BadRequest(c *gin.Context, message string) {
	ErrorWithCode(c, apperrors.ErrInvalidParams, message)
}

// HandleError 统一错误处理（使用AppError）
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	code := apperrors.ExtractCode(err)
	ErrorWithCode(c, code, apperrors.GetDetails(err))
}
