package handlers

import (
	"typing-test-system/middleware"
	"typing-test-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupScoreRoutes(app *fiber.App, scoreService *services.ScoreService, passageService *services.PassageService) {
	// 🔓 Public routes
	app.Get("/leaderboard", scoreService.GetLeaderboard)
	app.Get("/passages/published", passageService.GetPublishedPassages)
	app.Get("/passages/:slug", passageService.GetPassageBySlug)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/scores", scoreService.SubmitScore)
	secured.Get("/users/:user_id/scores", scoreService.GetUserScores)

	// 🔒 Admin-only passage management
	admin := secured.Group("/admin", middleware.RequireAdmin())
	admin.Post("/passages", passageService.CreatePassage)
	admin.Post("/passages/:id/publish/now", passageService.PublishNow)
	admin.Post("/passages/:id/publish/schedule", passageService.SchedulePublish)
	admin.Post("/passages/:id/publish/cancel", passageService.CancelScheduledPublish)
	admin.Delete("/passages/:id", passageService.DeletePassage)
}
