package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"studentrecords/internal/auth"
	"studentrecords/internal/config"
	"studentrecords/internal/handler"
	"studentrecords/internal/metrics"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth    *handler.AuthHandler
	Student *handler.StudentHandler
	Health  *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	m *metrics.Metrics,
	h Handlers,
) {
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	if m != nil {
		e.Use(m.Middleware())
	}
	e.Use(contextLogger())
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", h.Health.Health)

	e.GET("/api-docs", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/api-docs/index.html")
	})
	e.GET("/api-docs/*", echoSwagger.WrapHandler)

	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	// Public routes
	e.POST("/auth/login", h.Auth.Login)

	// Secured routes (require JWT authentication). The middleware is attached
	// per route so unknown paths still answer 404.
	requireAuth := auth.Middleware(jwtService)

	e.POST("/auth/refresh-token", h.Auth.RefreshToken, requireAuth)

	students := e.Group("/students")
	students.GET("", h.Student.GetAll, requireAuth)
	students.GET("/check-ra/:ra", h.Student.CheckRAAvailability, requireAuth)
	students.GET("/:id", h.Student.GetByID, requireAuth)
	students.POST("", h.Student.Create, requireAuth)
	students.PUT("/:id", h.Student.Update, requireAuth)
	students.DELETE("/:id", h.Student.Delete, requireAuth)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
