package route

import (
	"github.com/evandrarf/drivequiz-be/internal/delivery/http/handler"
	"github.com/evandrarf/drivequiz-be/internal/delivery/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func SetupQuizRoute(api *fiber.App, handler handler.QuizHandler, m *middleware.Middleware) {
	router := api.Group("/quiz", m.Identity())
	{
		router.Get("/categories", handler.GetCategories)

		router.Post("/sessions", handler.StartSession)
		router.Get("/sessions/:session_id", handler.GetSession)
		router.Delete("/sessions/:session_id", handler.CloseSession)
		router.Post("/sessions/:session_id/select", handler.Select)
		router.Post("/sessions/:session_id/confirm", handler.Confirm)
		router.Post("/sessions/:session_id/next", handler.Next)
		router.Post("/sessions/:session_id/retry-load", handler.RetryLoad)
		router.Post("/sessions/:session_id/retry-save", handler.RetrySave)
		router.Get("/sessions/:session_id/report", handler.GetSessionReport)

		router.Get("/results", handler.GetResults)
		router.Get("/results/:result_id/answers", handler.GetResultAnswers)
	}
}
