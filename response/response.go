package response

import (
	"net/http"

	"simorder/logutils"

	"github.com/gin-gonic/gin"
)

// TraceIDKey is the gin context key the trace middleware stores the
// request trace id under.
const TraceIDKey = "trace_id"

// Used by swagger to generate documentation
type Response[T any] struct {
	Code    ErrorCode `json:"code"`
	Msg     string    `json:"msg"`
	Data    T         `json:"data"`
	TraceID string    `json:"trace_id"`
}

// wrapResponse wraps the response data and sends it back to the client.
// Every response, success or failure, carries the same envelope with the
// request trace id.
func wrapResponse(c *gin.Context, httpCode int, code ErrorCode, msg string, data any) {
	c.JSON(httpCode, gin.H{
		"code":     code,
		"msg":      msg,
		"data":     data,
		"trace_id": c.GetString(TraceIDKey),
	})
}

// Success sends a successful response to the client with the provided data.
func Success(c *gin.Context, data any) {
	wrapResponse(c, http.StatusOK, OK, "ok", data)
}

// HandleError maps a service error onto the envelope and HTTP status.
func HandleError(c *gin.Context, err error) {
	e := From(err)
	if e.Code == InternalError {
		logutils.Log.WithField(TraceIDKey, c.GetString(TraceIDKey)).Error(err)
	}
	wrapResponse(c, e.Status, e.Code, e.Msg, nil)
}

// 用于 Gin ShouldBindJSON、ShouldBindQuery 等绑定参数失败时返回错误
func BadRequestError(c *gin.Context, msg string) {
	wrapResponse(c, http.StatusBadRequest, InvalidRequest, msg, nil)
}
