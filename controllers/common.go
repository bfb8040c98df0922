package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cedarboard/cedar/middleware"
	"github.com/cedarboard/cedar/services"
	"github.com/cedarboard/cedar/utils"
)

// getUserID extracts the authenticated user id set by the auth middleware.
func getUserID(ctx *gin.Context) (uint, bool) {
	raw, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := raw.(uint)
	return id, ok
}

// parseID parses a numeric path parameter.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// failService translates a service error into the JSON envelope. The numeric
// code is the handler specific fallback for unexpected failures.
func failService(ctx *gin.Context, err error, code int, msg string) {
	switch {
	case errors.Is(err, services.ErrInvalid):
		utils.Error(ctx, http.StatusBadRequest, 40000, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40300, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40400, err.Error())
	default:
		utils.Sugar.Errorf("%s: %v", msg, err)
		utils.Error(ctx, http.StatusInternalServerError, code, msg)
	}
}
