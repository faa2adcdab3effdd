// Package handler holds helpers shared by the HTTP handlers in its subpackages.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/care-portal/internal/middleware"
	"github.com/jwalitptl/care-portal/pkg/auth"
	"github.com/jwalitptl/care-portal/pkg/errors"
	"github.com/jwalitptl/care-portal/pkg/httputil"
	"github.com/jwalitptl/care-portal/pkg/validator"
)

// BindJSON decodes and validates the body, writing a 400 on failure.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		httputil.RespondWithError(c, errors.InvalidInput(validator.Describe(err), err))
		return false
	}
	return true
}

// Caller returns the authenticated identity, writing a 401 when there is none.
func Caller(c *gin.Context) (auth.Identity, bool) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		httputil.RespondWithError(c, errors.Unauthenticated(nil))
		return auth.Identity{}, false
	}
	return identity, true
}

// ParamID parses a uuid path parameter. Malformed ids are reported as not found.
func ParamID(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.RespondWithError(c, errors.NotFound(resource, err))
		return uuid.Nil, false
	}
	return id, true
}
