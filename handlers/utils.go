package handlers

import (
	"adboard/services"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func validationError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func serverErrorWithDetails(c *fiber.Ctx, message string, err error) error {
	requestID := ""
	if id, ok := c.Locals("requestID").(string); ok {
		requestID = id
	}

	slog.Error("server error",
		"request_id", requestID,
		"method", c.Method(),
		"path", c.Path(),
		"message", message,
		"error", err,
	)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}

// tokenError maps token accessor failures onto HTTP responses. Every
// token-custody failure surfaces to the client as a prompt to
// re-authenticate with that provider.
func tokenError(c *fiber.Ctx, provider string, err error) error {
	if errors.Is(err, services.ErrAccountNotLinked) ||
		errors.Is(err, services.ErrTokenIncomplete) ||
		errors.Is(err, services.ErrRefreshFailed) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":    "reconnect required",
			"provider": provider,
		})
	}
	return serverErrorWithDetails(c, "Failed to obtain access token", err)
}

// relay forwards a prepared request to a third-party API and passes
// the JSON response through unchanged, status included.
func relay(c *fiber.Ctx, req *http.Request) error {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return serverErrorWithDetails(c, "Upstream request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return serverErrorWithDetails(c, "Failed to read upstream response", err)
	}

	c.Set("Content-Type", "application/json")
	return c.Status(resp.StatusCode).Send(body)
}
