package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 通用错误响应结构
type ErrorResponse struct {
	Error    string `json:"error"`
	Solution string `json:"solution,omitempty"` // 冲突类错误附带的处理建议
}

// FieldError 字段级校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResponse 字段校验失败响应结构
type ValidationResponse struct {
	Errors []FieldError `json:"errors"`
}

// Pagination 分页元信息
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{Error: message})
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound 404 错误响应
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict 409 错误响应
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// ConflictWithSolution 409 错误响应，附带处理建议
func ConflictWithSolution(c *gin.Context, message, solution string) {
	c.JSON(http.StatusConflict, ErrorResponse{Error: message, Solution: solution})
}

// InternalError 500 错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// ValidationFailed 400 字段校验失败响应
func ValidationFailed(c *gin.Context, errs []FieldError) {
	c.JSON(http.StatusBadRequest, ValidationResponse{Errors: errs})
}
