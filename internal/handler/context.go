package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookworm/bookworm-web/internal/apiclient"
	"github.com/bookworm/bookworm-web/internal/middleware"
	"github.com/bookworm/bookworm-web/internal/response"
	"github.com/bookworm/bookworm-web/internal/validator"
)

// apiContext is the request context plus what the library API needs to see: the
// caller's credential and the request ID.
func apiContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if sess := middleware.GetSession(c); sess != nil {
		ctx = apiclient.WithToken(ctx, sess.Token)
	}
	if id := response.RequestID(c); id != "" {
		ctx = apiclient.WithRequestID(ctx, id)
	}
	return ctx
}

// idParam reads a document id path parameter, answering 400 when malformed.
func idParam(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if !validator.ObjectID(id) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", false
	}
	return id, true
}
