package accounts

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// Response is the envelope every JSON endpoint returns. A new value is
// built per request, handlers never share one.
type Response struct {
	StatusCode int    `json:"status_code"`
	Result     any    `json:"result"`
	IsSuccess  bool   `json:"is_success"`
	Message    string `json:"message"`
}

func OKResponse(message string, result any) Response {
	return Response{
		StatusCode: router.StatusOK,
		Result:     result,
		IsSuccess:  true,
		Message:    message,
	}
}

func FailResponse(status int, message string) Response {
	return Response{
		StatusCode: status,
		IsSuccess:  false,
		Message:    message,
	}
}

func respondOK(ctx router.Context, message string, result any) error {
	return ctx.JSON(router.StatusOK, OKResponse(message, result))
}

func respondFail(ctx router.Context, status int, message string) error {
	return ctx.JSON(status, FailResponse(status, message))
}

// respondError maps a service error onto the envelope. Uncategorized and
// internal errors collapse to a generic message so internals never leak.
func respondError(ctx router.Context, err error) error {
	status, message := httpStatusFor(err)
	return respondFail(ctx, status, message)
}

func httpStatusFor(err error) (int, string) {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return router.StatusInternalServerError, "An unexpected error occurred"
	}

	switch rich.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return router.StatusBadRequest, rich.Message
	case goerrors.CategoryAuth:
		if rich.Code == goerrors.CodeForbidden {
			return router.StatusForbidden, rich.Message
		}
		return router.StatusUnauthorized, rich.Message
	case goerrors.CategoryNotFound:
		return http.StatusNotFound, rich.Message
	case goerrors.CategoryConflict:
		return http.StatusConflict, rich.Message
	default:
		return router.StatusInternalServerError, "An unexpected error occurred"
	}
}
