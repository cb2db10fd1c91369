// Package controllers handles HTTP request handling
package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appauth "github.com/attendly/attendly/internal/app/auth"
	"github.com/attendly/attendly/internal/middleware"
	"github.com/attendly/attendly/internal/pkg/apperrors"
	"github.com/attendly/attendly/internal/pkg/helpers"
)

// principal returns the authenticated caller, answering 401 when it is missing
func principal(ctx *gin.Context) (appauth.Principal, bool) {
	p, err := helpers.GetPrincipal(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return p, false
	}
	return p, true
}

// pathID parses a positive id path parameter, answering 400 when it is invalid
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := helpers.ParseIDParam(ctx, name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return id, true
}

// queryIDs parses optional positive id query parameters into dst, in order
func queryIDs(ctx *gin.Context, names []string, dst ...**int64) bool {
	for i, name := range names {
		id, err := helpers.ParseOptionalIDQuery(ctx, name)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return false
		}
		*dst[i] = id
	}
	return true
}

// queryInt parses an optional integer query parameter
func queryInt(ctx *gin.Context, name string) (*int, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid "+name))
		return nil, false
	}
	return &v, true
}
