package v1

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lestade/fanzone-api/internal/api/middleware"
)

var errMissingUser = errors.New("missing authenticated user")

func getUserID(ctx *gin.Context) (uint, error) {
	value, exists := ctx.Get(middleware.CtxKeyUserID)
	if !exists {
		return 0, errMissingUser
	}

	userID, ok := value.(uint)
	if !ok {
		return 0, errMissingUser
	}

	return userID, nil
}

func parseUintParam(ctx *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		return 0, errors.New(name + " must be a positive number")
	}

	return uint(value), nil
}
