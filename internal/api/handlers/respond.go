package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jafarshop/marketorders/internal/service"
)

// statusFor maps an envelope failure code to the HTTP status sent with it
func statusFor(code service.ErrorKind) int {
	switch code {
	case service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindValidationFailed:
		return http.StatusUnprocessableEntity
	case service.KindNotAuthenticated:
		return http.StatusUnauthorized
	case service.KindNotAuthorized:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindInvalidStatus, service.KindAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeRead[T any](c *gin.Context, res service.ReadResult[T]) {
	if res.OK {
		c.JSON(http.StatusOK, res)
		return
	}
	c.JSON(statusFor(res.Code), res)
}

func writeAction(c *gin.Context, res service.ActionResult) {
	if res.Success {
		c.JSON(http.StatusOK, res)
		return
	}
	c.JSON(statusFor(res.Code), res)
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, service.ActionResult{
		Error: "Invalid request body",
		Code:  service.KindInvalidInput,
	})
}
