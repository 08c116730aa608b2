package handlers

import (
	"adboard/app"
	"adboard/config"
	"adboard/middleware"
	"adboard/models"
	"adboard/providers"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
)

// ProviderLogin redirects to the provider's OAuth consent screen.
// The same route serves both first sign-in and connecting an extra
// provider to an existing session.
func ProviderLogin(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provider, err := providers.Parse(c.Params("provider"))
		if err != nil {
			return badRequest(c, "Unknown provider")
		}

		state := generateStateToken()
		c.Cookie(&fiber.Cookie{
			Name:     "oauth_state",
			Value:    state,
			Expires:  time.Now().Add(10 * time.Minute),
			HTTPOnly: true,
			Secure:   config.AppConfig.Env == "production",
			SameSite: "Lax",
			Path:     "/",
		})

		authURL := a.AuthService.OAuthConfigFor(provider).AuthCodeURL(state,
			oauth2.AccessTypeOffline, // Request refresh token
			oauth2.ApprovalForce,
		)

		return c.Redirect(authURL, fiber.StatusTemporaryRedirect)
	}
}

// ProviderCallback handles the OAuth callback for any provider.
func ProviderCallback(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provider, err := providers.Parse(c.Params("provider"))
		if err != nil {
			return c.Redirect("/?error=unknown_provider", fiber.StatusTemporaryRedirect)
		}

		stateCookie := c.Cookies("oauth_state")
		c.ClearCookie("oauth_state")
		if stateCookie == "" || c.Query("state") != stateCookie {
			slog.Warn("oauth state mismatch", "provider", string(provider))
			return c.Redirect("/?error=invalid_state", fiber.StatusTemporaryRedirect)
		}

		if errParam := c.Query("error"); errParam != "" {
			slog.Warn("oauth error from provider", "provider", string(provider), "error", errParam)
			return c.Redirect("/?error="+url.QueryEscape(errParam), fiber.StatusTemporaryRedirect)
		}

		code := c.Query("code")
		if code == "" {
			return c.Redirect("/?error=missing_code", fiber.StatusTemporaryRedirect)
		}

		// An existing session means the user is connecting an extra
		// provider, not signing in from scratch.
		if sess, err := a.AuthService.GetSessionInfo(c.Cookies("session_id")); err == nil {
			if err := a.AuthService.ConnectProvider(c.Context(), sess.UserID, provider, code); err != nil {
				slog.Error("provider connect failed", "provider", string(provider), "error", err)
				return c.Redirect("/?error=connect_failed", fiber.StatusTemporaryRedirect)
			}
			return c.Redirect("/", fiber.StatusTemporaryRedirect)
		}

		loginResponse, err := a.AuthService.LoginWithCode(c.Context(), provider, code)
		if err != nil {
			slog.Error("login failed", "provider", string(provider), "error", err)
			return c.Redirect("/?error=login_failed", fiber.StatusTemporaryRedirect)
		}

		setSessionCookie(c, loginResponse.Session)
		return c.Redirect("/", fiber.StatusTemporaryRedirect)
	}
}

// Login handles One Tap sign-in with a Google ID token.
func Login(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(&req); err != nil {
			return validationError(c, err)
		}

		loginResponse, err := a.AuthService.LoginWithIDToken(c.Context(), req.IDToken)
		if err != nil {
			slog.Warn("id token login failed", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication failed",
			})
		}

		setSessionCookie(c, loginResponse.Session)

		return c.JSON(fiber.Map{
			"success": true,
			"user": fiber.Map{
				"id":      loginResponse.Session.UserID,
				"email":   loginResponse.Session.Email,
				"name":    loginResponse.Session.Name,
				"picture": loginResponse.Session.Picture,
			},
		})
	}
}

// Logout handles user logout
func Logout(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies("session_id")
		if sessionID != "" {
			a.AuthService.Logout(sessionID)
		}

		c.ClearCookie("session_id")

		return c.JSON(fiber.Map{
			"success": true,
		})
	}
}

// Me returns the current user's session information
func Me(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies("session_id")
		if sessionID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"authenticated": false,
			})
		}

		sess, err := a.AuthService.GetSessionInfo(sessionID)
		if err != nil {
			c.ClearCookie("session_id")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"authenticated": false,
			})
		}

		a.SessionStore.Update(sessionID, sess)

		return c.JSON(fiber.Map{
			"authenticated": true,
			"user": fiber.Map{
				"id":      sess.UserID,
				"email":   sess.Email,
				"name":    sess.Name,
				"picture": sess.Picture,
			},
		})
	}
}

// Connections lists which providers the current user has linked.
func Connections(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		linked, err := a.AuthService.Connections(userID)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to list connections", err)
		}

		return c.JSON(fiber.Map{
			"providers": linked,
		})
	}
}

func setSessionCookie(c *fiber.Ctx, sess *models.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     "session_id",
		Value:    sess.ID,
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		Secure:   config.AppConfig.Env == "production",
		SameSite: "Lax",
		Path:     "/",
	})
}

// generateStateToken generates a random state token for CSRF protection
func generateStateToken() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
