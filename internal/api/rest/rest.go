package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/artfolio/marketplace-ledger/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Asset registry reads (public)
		v1.GET("/assets", handler.CountAssets)
		v1.GET("/assets/:id", handler.GetAsset)

		// Asset registry mutations (caller-bound, JWT required)
		v1.POST("/assets", middleware.Auth(authCfg), handler.MintAsset)
		v1.POST("/assets/:id/transfer", middleware.Auth(authCfg), handler.TransferAsset)
		v1.POST("/approvals", middleware.Auth(authCfg), handler.SetApproval)

		// Listing ledger reads (public)
		v1.GET("/market", handler.GetMarketInfo)
		v1.GET("/listings", handler.ListListings)
		v1.GET("/listings/:id", handler.GetListing)
		v1.GET("/listings/:id/total-price", handler.GetTotalPrice)

		// Listing ledger mutations (caller-bound, JWT required)
		v1.POST("/listings", middleware.Auth(authCfg), handler.CreateListing)
		v1.POST("/listings/:id/purchase", middleware.Auth(authCfg), handler.PurchaseListing)

		// Settlement accounts: deposits are operator-only (API key),
		// balance reads are public
		v1.POST("/accounts/deposit", middleware.APIKeyAuth(authCfg), handler.Deposit)
		v1.GET("/accounts/:address", handler.GetAccount)

		// Event journal (public read access)
		v1.GET("/events", handler.ListEvents)
	}
}
