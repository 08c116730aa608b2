package handlers

import (
	"adboard/app"
	"adboard/config"
	"adboard/middleware"
	"adboard/providers"
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"
)

const (
	googleAdsAPIBase      = "https://googleads.googleapis.com/v14/"
	analyticsAdminAPIBase = "https://analyticsadmin.googleapis.com/v1beta/"
	campaignReportGAQL    = `SELECT campaign.id, campaign.name, campaign.bidding_strategy_type, campaign_budget.amount_micros, metrics.cost_micros, metrics.clicks, metrics.impressions, metrics.all_conversions FROM campaign WHERE campaign.status = 'ENABLED' LIMIT 20`
)

// GetGoogleAdsCustomers lists the Ads customer accounts accessible to
// the user.
func GetGoogleAdsCustomers(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		token, err := a.TokenService.GetAccessToken(c.Context(), userID, providers.GoogleAds)
		if err != nil {
			return tokenError(c, string(providers.GoogleAds), err)
		}

		req, err := http.NewRequestWithContext(c.Context(), "GET",
			googleAdsAPIBase+"customers:listAccessibleCustomers", nil)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to build upstream request", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("developer-token", config.AppConfig.GoogleDeveloperToken)

		return relay(c, req)
	}
}

// GetGoogleAdsCampaigns fetches the enabled-campaign report for one
// customer account.
func GetGoogleAdsCampaigns(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)
		customerID := c.Params("id")
		if customerID == "" {
			return badRequest(c, "Missing customer id")
		}

		token, err := a.TokenService.GetAccessToken(c.Context(), userID, providers.GoogleAds)
		if err != nil {
			return tokenError(c, string(providers.GoogleAds), err)
		}

		body, _ := json.Marshal(fiber.Map{"query": campaignReportGAQL})
		req, err := http.NewRequestWithContext(c.Context(), "POST",
			googleAdsAPIBase+"customers/"+url.PathEscape(customerID)+"/googleAds:search",
			bytes.NewReader(body))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to build upstream request", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("developer-token", config.AppConfig.GoogleDeveloperToken)
		req.Header.Set("Content-Type", "application/json")

		return relay(c, req)
	}
}

// GetGoogleAnalyticsAccounts lists the Analytics accounts visible to
// the user.
func GetGoogleAnalyticsAccounts(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		token, err := a.TokenService.GetAccessToken(c.Context(), userID, providers.GoogleAnalytics)
		if err != nil {
			return tokenError(c, string(providers.GoogleAnalytics), err)
		}

		req, err := http.NewRequestWithContext(c.Context(), "GET",
			analyticsAdminAPIBase+"accounts", nil)
		if err != nil {
			return serverErrorWithDetails(c, "Failed to build upstream request", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		return relay(c, req)
	}
}
