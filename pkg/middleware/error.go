// Package middleware holds the echo middleware shared by every route.
package middleware

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

type ErrorResponse struct {
	Message   string         `json:"message"`
	RequestID string         `json:"request_id"`
	TraceID   string         `json:"trace_id"`
	Meta      map[string]any `json:"meta"`
}

// ToHTTPError maps matching errors onto HTTP errors. Other errors are
// returned unchanged.
func ToHTTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case httperror.IsHTTPError(err):
		return err
	case errors.Is(err, matching.ErrInvalidInput):
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, matching.ErrWrongCategory):
		return httperror.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, matching.ErrNotFound):
		return httperror.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, matching.ErrUnavailable):
		return httperror.NewHTTPError(http.StatusBadGateway, err.Error())
	case errors.Is(err, matching.ErrVariantMismatch), errors.Is(err, matching.ErrUnknownSignal):
		return httperror.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return err
}

// Error renders every error as an ErrorResponse.
func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal Server Error"
		meta := map[string]any{}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
		}

		if mapped := ToHTTPError(err); httperror.IsHTTPError(mapped) {
			httperr := httperror.ToHTTPError(mapped)
			code = httperror.GetStatusCode(mapped)
			message = httperr.Error()
			if httperr.Meta != nil {
				meta = httperr.Meta
			}
		}

		log := logger.WithContext(ctx).WithError(err).WithField("status", code)
		if code >= http.StatusInternalServerError {
			log.Error("api is returning an error")
		} else {
			log.Warn("api is returning an error")
		}

		_ = c.JSON(code, ErrorResponse{
			Message:   message,
			RequestID: context.GetRequestID(ctx),
			TraceID:   tracing.GetTraceID(ctx),
			Meta:      meta,
		})
	}
}
