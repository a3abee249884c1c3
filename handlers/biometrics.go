package handlers

import (
	"typing-test-system/middleware"
	"typing-test-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBiometricsRoutes(app *fiber.App, biometricsService *services.BiometricsService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Derived statistics — computed on demand, nothing is persisted
	secured.Get("/users/:user_id/biometrics", biometricsService.GetUserBiometrics)
	secured.Get("/users/:user_id/sessions/:game_id/biometrics", biometricsService.GetSessionBiometrics)
}
