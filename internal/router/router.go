package router

import (
	"net/http"

	"email-classifier/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(e *echo.Echo, emailHandler *handler.EmailHandler) {
	e.GET("/", emailHandler.Root)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/classify_text", emailHandler.ClassifyText)
	api.POST("/classify_file", emailHandler.ClassifyFile)
	api.GET("/list_emails", emailHandler.ListEmails)
}
