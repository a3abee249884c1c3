package handlers

import (
	"typing-test-system/middleware"
	"typing-test-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupKeystrokeRoutes(app *fiber.App, keystrokeService *services.KeystrokeService) {
	// 🔐 All keystroke telemetry requires user context from the Gateway
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Ingestion
	secured.Post("/keystrokes", keystrokeService.RecordEvent)
	secured.Post("/keystrokes/batch", keystrokeService.RecordEventsBatch)

	// Retrieval
	secured.Get("/users/:user_id/keystrokes", keystrokeService.GetUserEvents)
	secured.Get("/users/:user_id/keystrokes/range", keystrokeService.GetUserEventsInRange)
	secured.Get("/users/:user_id/keystrokes/count", keystrokeService.CountUserEvents)
	secured.Get("/users/:user_id/sessions/:game_id/keystrokes", keystrokeService.GetSessionEvents)

	// Privacy: export and full erasure
	secured.Post("/users/:user_id/keystrokes/export", keystrokeService.ExportUserEvents)
	secured.Delete("/users/:user_id/keystrokes", keystrokeService.DeleteUserEvents)
}
