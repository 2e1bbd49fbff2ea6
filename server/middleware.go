package server

import (
	"encoding/json"
	"errors"
	"time"

	"mir4tracker/service"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// errorResponse matches the error shape clients of the tracker already parse
type errorResponse struct {
	Detail string `json:"detail"`
}

// errorHandler maps service errors onto HTTP status codes
func errorHandler(c *fiber.Ctx, err error) error {
	var (
		validationErr *service.ValidationError
		syntaxErr     *json.SyntaxError
		typeErr       *json.UnmarshalTypeError
		fiberErr      *fiber.Error
	)

	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Detail: "Account not found"})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(errorResponse{Detail: validationErr.Error()})
	case errors.As(err, &typeErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(errorResponse{
			Detail: typeErr.Field + ": must be a " + typeErr.Type.String(),
		})
	case errors.As(err, &syntaxErr):
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Detail: "Malformed JSON body"})
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(errorResponse{Detail: fiberErr.Message})
	}

	log.WithFields(log.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"error":  err,
	}).Error("Unhandled request error")
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Detail: "Internal Server Error"})
}

// requestLogger logs every HTTP request with its outcome
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			// Run the error handler now so the logged status is the one sent
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		entry := log.WithFields(log.Fields{
			"method":   c.Method(),
			"path":     c.Path(),
			"status":   status,
			"duration": time.Since(start),
			"ip":       c.IP(),
		})
		if err != nil {
			entry = entry.WithField("error", err.Error())
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("HTTP request failed")
		case status >= fiber.StatusBadRequest:
			entry.Warn("HTTP request rejected")
		default:
			entry.Debug("HTTP request processed")
		}
		return nil
	}
}
