package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/donat3/ledger-core/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Token endpoints
		v1.POST("/tokens", middleware.Auth(authCfg), handler.MintToken)
		v1.GET("/tokens/:id", handler.GetToken)
		v1.GET("/tokens", handler.ListTokens)

		// Account endpoints (public read access)
		v1.GET("/accounts/:address", handler.GetAccount)

		// Auction endpoints
		v1.POST("/auctions", middleware.Auth(authCfg), handler.CreateListing)
		v1.POST("/auctions/:id/bids", middleware.Auth(authCfg), handler.PlaceBid)
		v1.POST("/auctions/:id/complete", middleware.Auth(authCfg), handler.CompleteAuction)
		v1.POST("/auctions/:id/withdrawals", middleware.Auth(authCfg), handler.WithdrawBid)
		v1.GET("/auctions/:id", handler.GetListing)
		v1.GET("/auctions", handler.ListListings)
		v1.GET("/auctions/:id/bids", handler.GetListingBids)
		v1.GET("/auctions/:id/bids/:address", handler.GetBid)

		// Campaign endpoints
		v1.POST("/campaigns", middleware.Auth(authCfg), handler.CreateCampaign)
		v1.PATCH("/campaigns/:id/status", middleware.Auth(authCfg), handler.UpdateCampaignStatus)
		v1.POST("/campaigns/:id/donations", middleware.Auth(authCfg), handler.Donate)
		v1.POST("/campaigns/:id/milestones/:index/claims", middleware.Auth(authCfg), handler.ClaimCampaignMilestone)
		v1.GET("/campaigns/:id", handler.GetCampaign)
		v1.GET("/campaigns", handler.ListCampaigns)
		v1.GET("/campaigns/:id/donations", handler.ListCampaignDonations)
		v1.GET("/campaigns/:id/donors/:address", handler.GetCampaignDonor)

		// Donor and milestone endpoints
		v1.POST("/milestones/:index/claims", middleware.Auth(authCfg), handler.ClaimGlobalMilestone)
		v1.GET("/milestones", handler.ListMilestones)
		v1.GET("/donors/:address", handler.GetDonor)
		v1.GET("/stats", handler.GetStats)

		// Admin endpoints (owner or service credential)
		admin := v1.Group("/admin", middleware.Auth(authCfg))
		{
			admin.POST("/pause", handler.Pause)
			admin.POST("/unpause", handler.Unpause)
			admin.PUT("/auction-increment", handler.UpdateIncrement)
			admin.POST("/milestones", handler.CreateMilestone)
			admin.PUT("/milestones/:index", handler.UpdateMilestone)
			admin.POST("/accounts/:address/credits", handler.CreditAccount)
		}
	}
}
