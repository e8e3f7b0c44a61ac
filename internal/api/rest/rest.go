package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	// Health check endpoint (no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes (public read access)
	v1 := router.Group("/api/v1")
	{
		// Contract endpoints
		v1.GET("/contracts/names", handler.GetContractNames)
		v1.GET("/contracts/:address/nfts", handler.GetContractNfts)
		v1.GET("/contracts/:address/metadata", handler.GetContractMetadata)

		// Wallet endpoints
		v1.GET("/wallets/:address/contracts", handler.GetWalletContracts)

		// Marketplace endpoints
		v1.GET("/marketplace/listings", handler.GetMarketplaceListings)
	}
}
