package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/evandrarf/drivequiz-be/internal/delivery/http/domain"
	"github.com/evandrarf/drivequiz-be/internal/delivery/http/entity"
	"github.com/evandrarf/drivequiz-be/internal/delivery/http/middleware"
	"github.com/evandrarf/drivequiz-be/internal/delivery/http/usecase"
	"github.com/evandrarf/drivequiz-be/internal/engine"
	"github.com/evandrarf/drivequiz-be/internal/pkg/response"
	"github.com/evandrarf/drivequiz-be/internal/pkg/validate"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type (
	QuizHandler interface {
		StartSession(ctx *fiber.Ctx) error
		GetSession(ctx *fiber.Ctx) error
		Select(ctx *fiber.Ctx) error
		Confirm(ctx *fiber.Ctx) error
		Next(ctx *fiber.Ctx) error
		RetryLoad(ctx *fiber.Ctx) error
		RetrySave(ctx *fiber.Ctx) error
		CloseSession(ctx *fiber.Ctx) error
		GetSessionReport(ctx *fiber.Ctx) error
		GetResults(ctx *fiber.Ctx) error
		GetResultAnswers(ctx *fiber.Ctx) error
		GetCategories(ctx *fiber.Ctx) error
	}

	quizHandler struct {
		validator *validate.Validator
		logger    *logrus.Logger
		usecase   usecase.QuizUsecase
	}
)

func NewQuizHandler(validator *validate.Validator, logger *logrus.Logger, usecase usecase.QuizUsecase) QuizHandler {
	return &quizHandler{
		validator: validator,
		logger:    logger,
		usecase:   usecase,
	}
}

// POST /quiz/sessions
func (h *quizHandler) StartSession(ctx *fiber.Ctx) error {
	var req entity.StartSessionRequest
	if len(ctx.Body()) > 0 {
		if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
			return response.NewFailed(domain.QUIZ_SESSION_START_FAILED, err, h.logger).Send(ctx)
		}
	}

	view, err := h.usecase.StartSession(ctx.UserContext(), middleware.GetIdentity(ctx), req)
	if err != nil {
		if engine.IsQuestionFetchError(err) {
			// The session exists in the error state and can be reloaded.
			return response.NewFailed(domain.QUIZ_SESSION_LOAD_FAILED, fiber.NewError(fiber.StatusServiceUnavailable, err.Error()), h.logger).WithData(view).Send(ctx)
		}
		return response.NewFailed(domain.QUIZ_SESSION_START_FAILED, h.toFiberError(err), h.logger).Send(ctx)
	}

	return response.NewCreated(domain.QUIZ_SESSION_START_SUCCESS, view).Send(ctx)
}

// GET /quiz/sessions/:session_id
func (h *quizHandler) GetSession(ctx *fiber.Ctx) error {
	view, err := h.usecase.GetSession(ctx.UserContext(), middleware.GetIdentity(ctx), ctx.Params("session_id"))
	if err != nil {
		return response.NewFailed(domain.QUIZ_SESSION_GET_FAILED, h.toFiberError(err), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.QUIZ_SESSION_GET_SUCCESS, view, nil).Send(ctx)
}

// POST /quiz/sessions/:session_id/select
func (h *quizHandler) Select(ctx *fiber.Ctx) error {
	var req entity.SelectOptionRequest
	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.QUIZ_SESSION_SELECT_FAILED, err, h.logger).Send(ctx)
	}

	view, err := h.usecase.Select(ctx.UserContext(), middleware.GetIdentity(ctx), ctx.Params("session_id"), req.Option)
	return h.sendAction(ctx, view, err, domain.QUIZ_SESSION_SELECT_SUCCESS, domain.QUIZ_SESSION_SELECT_FAILED)
}

// POST /quiz/sessions/:session_id/confirm
func (h *quizHandler) Confirm(ctx *fiber.Ctx) error {
	view, err := h.usecase.Confirm(ctx.UserContext(), middleware.GetIdentity(ctx), ctx.Params("session_id"))
	return h.sendAction(ctx, view, err, domain.QUIZ_SESSION_CONFIRM_SUCCESS, domain.QUIZ_SESSION_CONFIRM_FAILED)
}

// POST /quiz/sessions/:session_id/next
func (h *quizHandler) Next(ctx *fiber.Ctx) error {
	view, err := h.usecase.Next(ctx.UserContext(), middleware.GetIdentity(ctx), ctx.Params("session_id"))
	return h.sendAction(ctx, view, err, domain.QUIZ_SESSION_NEXT_SUCCESS, domain.QUIZ_SESSION_NEXT_FAILED)
}

// POST /quiz/sessions/:session_id/retry-load
func (h *quizHandler) RetryLoad(ctx *fiber.Ctx) error {
	view, err := h.usecase.RetryLoad(ctx.UserContext(), middleware.GetIdentity(ctx), ctx.Params("session_id"))
	if err != nil && engine.IsQuestionFetchError(err) {
		return response.NewFailed(domain.QUIZ_SESSION_LOAD_FAILED, fiber.NewError(fiber.StatusServiceUnavailable, err.Error()), h.logger).WithData(view).Send(ctx)
	}
	return h.sendAction(ctx, view, err, domain.QUIZ_SESSION_RETRY_SUCCESS, domain.QUIZ_SESSION_RETRY_FAILED)
}

// POST /quiz/sessions/:session_id/retry-save
func (h *quizHandler) RetrySave(ctx *fiber.Ctx) error {
	view, err := h.usecase.RetrySave(ctx.UserContext(), middleware.GetIdentity(ctx), ctx.Params("session_id"))
	return h.sendAction(ctx, view, err, domain.QUIZ_SESSION_RETRY_SUCCESS, domain.QUIZ_SESSION_RETRY_FAILED)
}

// DELETE /quiz/sessions/:session_id
func (h *quizHandler) CloseSession(ctx *fiber.Ctx) error {
	if err := h.usecase.CloseSession(ctx.UserContext(), middleware.GetIdentity(ctx), ctx.Params("session_id")); err != nil {
		return response.NewFailed(domain.QUIZ_SESSION_CLOSE_FAILED, h.toFiberError(err), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.QUIZ_SESSION_CLOSE_SUCCESS, nil, nil).Send(ctx)
}

// GET /quiz/sessions/:session_id/report
func (h *quizHandler) GetSessionReport(ctx *fiber.Ctx) error {
	report, err := h.usecase.GenerateSessionReport(ctx.UserContext(), middleware.GetIdentity(ctx), ctx.Params("session_id"))
	if err != nil {
		return response.NewFailed(domain.QUIZ_SESSION_REPORT_FAILED, h.toFiberError(err), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.QUIZ_SESSION_REPORT_SUCCESS, report, nil).Send(ctx)
}

// GET /quiz/results?limit=20
func (h *quizHandler) GetResults(ctx *fiber.Ctx) error {
	limit := 20
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	results, err := h.usecase.GetResults(ctx.UserContext(), middleware.GetIdentity(ctx), limit)
	if err != nil {
		return response.NewFailed(domain.QUIZ_RESULTS_GET_FAILED, h.toFiberError(err), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.QUIZ_RESULTS_GET_SUCCESS, results, fiber.Map{"count": len(results)}).Send(ctx)
}

// GET /quiz/results/:result_id/answers
func (h *quizHandler) GetResultAnswers(ctx *fiber.Ctx) error {
	answers, err := h.usecase.GetResultAnswers(ctx.UserContext(), middleware.GetIdentity(ctx), ctx.Params("result_id"))
	if err != nil {
		return response.NewFailed(domain.QUIZ_RESULT_ANSWERS_GET_FAILED, h.toFiberError(err), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.QUIZ_RESULT_ANSWERS_GET_SUCCESS, answers, nil).Send(ctx)
}

// GET /quiz/categories
func (h *quizHandler) GetCategories(ctx *fiber.Ctx) error {
	categories, err := h.usecase.GetCategories(ctx.UserContext())
	if err != nil {
		return response.NewFailed(domain.QUIZ_CATEGORIES_GET_FAILED, h.toFiberError(err), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.QUIZ_CATEGORIES_GET_SUCCESS, categories, nil).Send(ctx)
}

// sendAction answers a session action. A deadline hit during the action is
// not a failure: the session finished and the client gets the final view.
func (h *quizHandler) sendAction(ctx *fiber.Ctx, view *entity.SessionView, err error, success string, failed string) error {
	switch {
	case err == nil:
		return response.NewSuccess(success, view, nil).Send(ctx)
	case errors.Is(err, engine.ErrTimeUp):
		return response.NewSuccess(domain.QUIZ_SESSION_TIME_UP, view, nil).Send(ctx)
	default:
		res := response.NewFailed(failed, h.toFiberError(err), h.logger)
		if view != nil {
			res = res.WithData(view)
		}
		return res.Send(ctx)
	}
}

func (h *quizHandler) toFiberError(err error) *fiber.Error {
	switch {
	case errors.Is(err, usecase.ErrSessionNotFound), errors.Is(err, usecase.ErrResultNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, usecase.ErrUnauthenticated):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, usecase.ErrTooManySessions):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, engine.ErrInvalidOption), errors.Is(err, engine.ErrInvalidMode):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrNotActive),
		errors.Is(err, engine.ErrNoSelection),
		errors.Is(err, engine.ErrAnswerLocked),
		errors.Is(err, engine.ErrNotConfirmed),
		errors.Is(err, engine.ErrSessionClosed),
		errors.Is(err, engine.ErrNotRetryable),
		errors.Is(err, engine.ErrNothingToRetry),
		errors.Is(err, usecase.ErrNotFinished):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
