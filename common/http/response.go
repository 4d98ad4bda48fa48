package http

import "net/http"

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const (
	CodeSuccess      = 0
	CodeInvalidParam = 10001
	CodeUnauthorized = 10002
	CodeNotFound     = 10004
	CodeServerError  = 10005
)

const (
	MsgSuccess      = "success"
	MsgInvalidParam = "invalid parameters"
	MsgUnauthorized = "unauthorized"
	MsgNotFound     = "not found"
	MsgServerError  = "internal server error"
)

func NewResponse(code int, message string, data any) *Response {
	return &Response{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func (c *Context) Success(data any) {
	c.JSON(http.StatusOK, NewResponse(CodeSuccess, MsgSuccess, data))
}

func (c *Context) BadRequest(message string) {
	if message == "" {
		message = MsgInvalidParam
	}
	c.JSON(http.StatusBadRequest, NewResponse(CodeInvalidParam, message, nil))
}

func (c *Context) Unauthorized(message string) {
	if message == "" {
		message = MsgUnauthorized
	}
	c.JSON(http.StatusUnauthorized, NewResponse(CodeUnauthorized, message, nil))
}

func (c *Context) NotFound(message string) {
	if message == "" {
		message = MsgNotFound
	}
	c.JSON(http.StatusNotFound, NewResponse(CodeNotFound, message, nil))
}

func (c *Context) InternalServerError(message string) {
	if message == "" {
		message = MsgServerError
	}
	c.JSON(http.StatusInternalServerError, NewResponse(CodeServerError, message, nil))
}
