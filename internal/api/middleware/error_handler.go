package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
)

// StatusClientClosedRequest is used when the caller went away mid-analysis
const StatusClientClosedRequest = 499

// requestID returns the id set by the requestid middleware, if any
func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

func errorBody(code, message string) fiber.Map {
	return fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	}
}

// appErrorBody adds the details of err, when it carries any, to the body
func appErrorBody(appErr *domain.AppError, err error) fiber.Map {
	body := errorBody(appErr.Code, appErr.Message)
	if details := domain.DetailsOf(err); details != nil {
		body["error"].(fiber.Map)["details"] = details
	}
	return body
}

// statusOf returns the status ErrorHandler will answer with
func statusOf(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return StatusClientClosedRequest
	}
	return fiber.StatusInternalServerError
}

func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// Check if it's a Fiber error
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(errorBody("HTTP_ERROR", fiberErr.Message))
		}

		// Check if it's our AppError
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			// Log internal errors
			if appErr.StatusCode >= 500 {
				logger.Error("internal error",
					slog.String("code", appErr.Code),
					slog.String("message", appErr.Message),
					slog.Any("error", err),
					slog.String("request_id", requestID(c)),
				)
			}

			return c.Status(appErr.StatusCode).JSON(appErrorBody(appErr, err))
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("request cancelled",
				slog.Any("error", err),
				slog.String("path", c.Path()),
				slog.String("request_id", requestID(c)),
			)
			return c.Status(StatusClientClosedRequest).JSON(errorBody("REQUEST_CANCELLED", "The request was cancelled"))
		}

		// Unknown error - log and return generic message
		logger.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Path()),
			slog.String("request_id", requestID(c)),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("INTERNAL_ERROR", "An unexpected error occurred"))
	}
}
