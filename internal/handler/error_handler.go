package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "studentrecords/internal/errors"
	"studentrecords/internal/logger"
)

// payloadKey is the echo context key under which handlers keep the decoded
// request body for error logging.
const payloadKey = "payload"

// HTTPErrorHandler logs err with its request context and writes the
// standard error body. Internal details never reach the client.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	httpErr := toHTTPError(err)
	req := c.Request()

	fields := []zap.Field{
		logger.Method(req.Method),
		logger.Path(req.URL.Path),
		logger.Status(httpErr.StatusCode),
		logger.RequestID(c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Any("params", pathParams(c)),
		zap.Any("query", c.QueryParams()),
		zap.Any("body", c.Get(payloadKey)),
		zap.Error(err),
	}
	log := logger.From(req.Context())
	if httpErr.StatusCode >= http.StatusInternalServerError {
		log.Error("request failed", fields...)
	} else {
		log.Warn("request rejected", fields...)
	}

	if req.Method == http.MethodHead {
		err = c.NoContent(httpErr.StatusCode)
	} else {
		err = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	if err != nil {
		log.Error("write error response", zap.Error(err))
	}
}

func toHTTPError(err error) *apperrors.HTTPError {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return apperrors.MapErrorToHTTP(appErr)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return apperrors.NewHTTPError(http.StatusNotFound, "Route not found")
		case http.StatusInternalServerError:
			return apperrors.NewHTTPError(http.StatusInternalServerError, "Internal server error")
		default:
			return apperrors.NewHTTPError(he.Code, fmt.Sprint(he.Message))
		}
	}
	return apperrors.MapErrorToHTTP(err)
}

func pathParams(c echo.Context) map[string]string {
	names := c.ParamNames()
	if len(names) == 0 {
		return nil
	}
	values := c.ParamValues()
	params := make(map[string]string, len(names))
	for i, name := range names {
		if i < len(values) {
			params[name] = values[i]
		}
	}
	return params
}
