package handlers

import (
	"adboard/app"
	"adboard/middleware"
	"adboard/providers"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"
)

const facebookAPIBase = "https://graph.facebook.com/v15.0/"

// GetFacebookAdAccounts lists the ad accounts visible to the user.
func GetFacebookAdAccounts(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		token, err := a.TokenService.GetAccessToken(c.Context(), userID, providers.Facebook)
		if err != nil {
			return tokenError(c, string(providers.Facebook), err)
		}

		query := url.Values{
			"fields":       {"id,name"},
			"access_token": {token},
		}
		req, err := http.NewRequestWithContext(c.Context(), "GET",
			facebookAPIBase+"me/adaccounts?"+query.Encode(), nil)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to build upstream request", err)
		}

		return relay(c, req)
	}
}

// GetFacebookCampaigns fetches the campaign report for one ad account.
func GetFacebookCampaigns(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)
		adAccountID := c.Params("id")
		if adAccountID == "" {
			return badRequest(c, "Missing ad account id")
		}

		token, err := a.TokenService.GetAccessToken(c.Context(), userID, providers.Facebook)
		if err != nil {
			return tokenError(c, string(providers.Facebook), err)
		}

		query := url.Values{
			"fields":       {"id,name,daily_budget"},
			"access_token": {token},
		}
		req, err := http.NewRequestWithContext(c.Context(), "GET",
			facebookAPIBase+url.PathEscape(adAccountID)+"/campaigns?"+query.Encode(), nil)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to build upstream request", err)
		}

		return relay(c, req)
	}
}
