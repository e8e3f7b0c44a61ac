package rest

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openminter/nft-aggregator/internal/contracts"
	"github.com/openminter/nft-aggregator/internal/fanout"
	"github.com/openminter/nft-aggregator/internal/marketplace"
	"github.com/openminter/nft-aggregator/internal/nft"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// GetContractNames lists the factory's contract identities
	// GET /api/v1/contracts/names?owner=<address>&nft_owner=<address>
	GetContractNames(c *gin.Context)

	// GetContractNfts lists the fully reconciled tokens of a contract
	// GET /api/v1/contracts/:address/nfts
	GetContractNfts(c *gin.Context)

	// GetContractMetadata resolves a contract's collection metadata
	// GET /api/v1/contracts/:address/metadata
	GetContractMetadata(c *gin.Context)

	// GetWalletContracts lists the asset contracts related to a wallet
	// GET /api/v1/wallets/:address/contracts
	GetWalletContracts(c *gin.Context)

	// GetMarketplaceListings lists active marketplace sales
	// GET /api/v1/marketplace/listings?resolve=<n>
	GetMarketplaceListings(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	names      *contracts.NameResolver
	aggregator *nft.Aggregator
	assets     *nft.AssetContractResolver
	listings   *marketplace.Pipeline
	workers    int
}

// NewHandler creates a new REST API handler
func NewHandler(
	names *contracts.NameResolver,
	aggregator *nft.Aggregator,
	assets *nft.AssetContractResolver,
	listings *marketplace.Pipeline,
	workers int,
) Handler {
	return &handler{
		names:      names,
		aggregator: aggregator,
		assets:     assets,
		listings:   listings,
		workers:    workers,
	}
}

// GetContractNames lists the contract identities reachable from the factory
func (h *handler) GetContractNames(c *gin.Context) {
	var ownerFilter, nftOwnerFilter *string
	if owner, ok := c.GetQuery("owner"); ok {
		ownerFilter = &owner
	}
	if nftOwner, ok := c.GetQuery("nft_owner"); ok {
		nftOwnerFilter = &nftOwner
	}

	identifiers, err := h.names.ResolveNames(c.Request.Context(), ownerFilter, nftOwnerFilter)
	if err != nil {
		respondServiceError(c, err, "Failed to resolve contract names")
		return
	}

	c.JSON(http.StatusOK, identifiers)
}

// GetContractNfts lists the fully reconciled tokens of a contract
func (h *handler) GetContractNfts(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		respondBadRequest(c, "Contract address is required")
		return
	}

	nfts, err := h.aggregator.GetContractNfts(c.Request.Context(), address)
	if err != nil {
		respondServiceError(c, err, "Failed to aggregate contract tokens")
		return
	}

	c.JSON(http.StatusOK, nfts)
}

// GetContractMetadata resolves a contract's collection metadata. The response
// carries an ETag derived from the canonicalized metadata so clients can poll
// cheaply with If-None-Match.
func (h *handler) GetContractMetadata(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		respondBadRequest(c, "Contract address is required")
		return
	}

	contract, err := h.assets.ResolveAssetContract(c.Request.Context(), address)
	if err != nil {
		respondServiceError(c, err, "Failed to resolve contract metadata")
		return
	}

	if hash, err := contract.Metadata.Hash(); err == nil {
		etag := fmt.Sprintf("%q", hex.EncodeToString(hash))
		if c.GetHeader("If-None-Match") == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
	}

	c.JSON(http.StatusOK, contract)
}

// GetWalletContracts lists the asset contracts related to a wallet
func (h *handler) GetWalletContracts(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		respondBadRequest(c, "Wallet address is required")
		return
	}

	assetContracts, err := h.assets.ResolveWalletAssetContracts(c.Request.Context(), address)
	if err != nil {
		respondServiceError(c, err, "Failed to resolve wallet contracts")
		return
	}

	c.JSON(http.StatusOK, assetContracts)
}

// GetMarketplaceListings lists active sales newest first. With resolve=n the
// first n listings are resolved concurrently before responding; a listing
// whose resolution fails is still returned, carrying its error.
func (h *handler) GetMarketplaceListings(c *gin.Context) {
	resolve := 0
	if raw, ok := c.GetQuery("resolve"); ok {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondBadRequest(c, "resolve must be a non-negative integer")
			return
		}
		resolve = parsed
	}

	listings, err := h.listings.ListActiveSales(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list marketplace sales")
		return
	}

	if resolve > len(listings) {
		resolve = len(listings)
	}
	if resolve > 0 {
		// Failed resolutions are recorded on the listing itself, so the
		// batch never aborts.
		_, _ = fanout.Map(c.Request.Context(), h.workers, fanout.BestEffort, listings[:resolve],
			func(ctx context.Context, listing *marketplace.Listing) (struct{}, error) {
				_, err := h.listings.Resolve(ctx, listing)
				return struct{}{}, err
			})
	}

	dtos := make([]ListingDTO, len(listings))
	for i, listing := range listings {
		dtos[i] = toListingDTO(listing)
	}
	c.JSON(http.StatusOK, dtos)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
