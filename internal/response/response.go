package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookworm/bookworm-web/internal/apiclient"
	"github.com/bookworm/bookworm-web/internal/model"
)

// Response is the standardized page-model envelope. It mirrors the library API's
// {data, pagination?} shape and adds error and metadata blocks.
type Response struct {
	Data       interface{}       `json:"data"`
	Error      *ErrorBody        `json:"error,omitempty"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
	Metadata   Metadata          `json:"metadata"`
}

// ErrorBody represents a structured error response.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Metadata includes request tracing and timing.
type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// Success sends a successful JSON response with the given status code and data.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Data:     data,
		Metadata: buildMetadata(c),
	})
}

// SuccessWithPagination sends a successful response with pagination metadata.
func SuccessWithPagination(c *gin.Context, statusCode int, data interface{}, pagination *model.Pagination) {
	c.JSON(statusCode, Response{
		Data:       data,
		Pagination: pagination,
		Metadata:   buildMetadata(c),
	})
}

// Fail sends an error response with an error code and no field-level details.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, Response{
		Error:    &ErrorBody{Code: code, Message: GetMessage(code)},
		Metadata: buildMetadata(c),
	})
}

// FailWithFields sends an error response with field-level validation details.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, Response{
		Error:    &ErrorBody{Code: code, Message: GetMessage(code), Fields: fields},
		Metadata: buildMetadata(c),
	})
}

// FailWithData sends an error response that still carries a page model.
func FailWithData(c *gin.Context, statusCode int, code ErrCode, data interface{}) {
	c.JSON(statusCode, Response{
		Data:     data,
		Error:    &ErrorBody{Code: code, Message: GetMessage(code)},
		Metadata: buildMetadata(c),
	})
}

// AbortFail aborts the middleware chain and sends an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, Response{
		Error:    &ErrorBody{Code: code, Message: GetMessage(code)},
		Metadata: buildMetadata(c),
	})
}

// FailFromAPI translates a library API error into a response. The API's own
// message is kept for client errors so forms can show it.
func FailFromAPI(c *gin.Context, err error) {
	var se *apiclient.StatusError
	switch {
	case errors.Is(err, apiclient.ErrNotFound):
		Fail(c, http.StatusNotFound, ErrNotFound)
	case errors.Is(err, apiclient.ErrUnauthorized):
		Fail(c, http.StatusUnauthorized, ErrTokenInvalid)
	case errors.Is(err, apiclient.ErrForbidden):
		Fail(c, http.StatusForbidden, ErrForbidden)
	case errors.Is(err, apiclient.ErrBadRequest) && errors.As(err, &se) && se.Message != "":
		c.JSON(http.StatusBadRequest, Response{
			Error:    &ErrorBody{Code: ErrValidation, Message: se.Message},
			Metadata: buildMetadata(c),
		})
	case errors.Is(err, apiclient.ErrBadRequest):
		Fail(c, http.StatusBadRequest, ErrValidation)
	default:
		Fail(c, http.StatusBadGateway, ErrUpstream)
	}
}

func buildMetadata(c *gin.Context) Metadata {
	reqID, _ := c.Get(ContextKeyRequestID)
	id, ok := reqID.(string)
	if !ok || id == "" {
		id = uuid.New().String() // Fallback if middleware not applied
	}
	return Metadata{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
