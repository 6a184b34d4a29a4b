package serverutils

import (
	"errors"

	"udla-mentor-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const internalMessage = "Internal server error"

// ErrorHandler renders any error returned by a handler with the API envelope.
// AppErrors keep their code and message; fiber errors keep their code;
// anything else becomes a 500 without internal detail.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		if appErr, ok := AsAppError(err); ok {
			if appErr.Code >= fiber.StatusInternalServerError {
				log.Error("HTTP", appErr.Message, map[string]interface{}{
					"path":  ctx.Path(),
					"error": err.Error(),
				})
			}
			return ctx.Status(appErr.Code).JSON(ErrorResponse(appErr.Code, appErr.Message, appErr.Details))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message, nil))
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, internalMessage, nil))
	}
}

// ErrorHandlerMiddleware renders handler errors in place so later middleware
// sees the final status code.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	handle := ErrorHandler(log)
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return handle(ctx, err)
		}
		return nil
	}
}
