package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "studentrecords/internal/errors"
	"studentrecords/internal/logger"
)

// ClaimsContextKey is the echo context key holding the caller's *Claims.
const ClaimsContextKey = "user"

const (
	msgTokenNotProvided  = "Token not provided"
	msgTokenFormatError  = "Token format error"
	msgTokenMalformatted = "Token malformatted"
	msgTokenExpired      = "Token expired"
	msgInvalidToken      = "Invalid token"
)

// Middleware returns the bearer authentication middleware. The raw
// Authorization header is handed to the parser so each failure gets its own
// message.
func Middleware(jwtService *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ClaimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization,
		ParseTokenFunc: func(c echo.Context, header string) (interface{}, error) {
			return parseBearer(c, jwtService, header)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var appErr *apperrors.Error
			if errors.As(err, &appErr) {
				return appErr
			}
			return apperrors.Unauthorized(msgTokenNotProvided)
		},
	})
}

func parseBearer(c echo.Context, jwtService *JWTService, header string) (*Claims, error) {
	if header == "" {
		return nil, apperrors.Unauthorized(msgTokenNotProvided)
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 {
		return nil, apperrors.Unauthorized(msgTokenFormatError)
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.Unauthorized(msgTokenMalformatted)
	}

	claims, err := jwtService.ValidateToken(parts[1])
	if err != nil {
		logger.From(c.Request().Context()).Warn("jwt verification failed", zap.Error(err))
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Unauthorized(msgTokenExpired)
		}
		return nil, apperrors.Unauthorized(msgInvalidToken)
	}
	return claims, nil
}

// ClaimsFrom returns the claims stored by Middleware, or nil.
func ClaimsFrom(c echo.Context) *Claims {
	claims, _ := c.Get(ClaimsContextKey).(*Claims)
	return claims
}
