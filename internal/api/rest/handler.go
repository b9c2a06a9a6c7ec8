package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/artfolio/marketplace-ledger/internal/api/middleware"
	"github.com/artfolio/marketplace-ledger/internal/domain"
	"github.com/artfolio/marketplace-ledger/internal/market"
	"github.com/artfolio/marketplace-ledger/internal/registry"
	"github.com/artfolio/marketplace-ledger/internal/store"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// MintAsset creates a new asset owned by the authenticated caller
	// POST /api/v1/assets
	MintAsset(c *gin.Context)

	// GetAsset retrieves a single asset by id
	// GET /api/v1/assets/:id
	GetAsset(c *gin.Context)

	// CountAssets returns the total mint count, or the caller-supplied
	// owner's holdings when ?owner= is present
	// GET /api/v1/assets?owner=<address>
	CountAssets(c *gin.Context)

	// TransferAsset reassigns asset ownership; the caller must be the
	// current owner or an approved operator
	// POST /api/v1/assets/:id/transfer
	TransferAsset(c *gin.Context)

	// SetApproval grants or revokes a blanket operator approval
	// POST /api/v1/approvals
	SetApproval(c *gin.Context)

	// CreateListing lists an asset for sale at a fixed price
	// POST /api/v1/listings
	CreateListing(c *gin.Context)

	// GetListing retrieves a single listing by id
	// GET /api/v1/listings/:id
	GetListing(c *gin.Context)

	// ListListings retrieves listings with optional filters
	// GET /api/v1/listings?seller=<address>&sold=<bool>&limit=<limit>&offset=<offset>
	ListListings(c *gin.Context)

	// GetTotalPrice returns the price plus marketplace fee for a listing
	// GET /api/v1/listings/:id/total-price
	GetTotalPrice(c *gin.Context)

	// PurchaseListing settles a purchase for the authenticated caller
	// POST /api/v1/listings/:id/purchase
	PurchaseListing(c *gin.Context)

	// Deposit credits a settlement account (API key only)
	// POST /api/v1/accounts/deposit
	Deposit(c *gin.Context)

	// GetAccount retrieves a settlement account by address
	// GET /api/v1/accounts/:address
	GetAccount(c *gin.Context)

	// GetMarketInfo returns the marketplace's fee parameters and item count
	// GET /api/v1/market
	GetMarketInfo(c *gin.Context)

	// ListEvents retrieves journal entries with optional filters
	// GET /api/v1/events?type=<offered|bought>&seller=<address>&buyer=<address>&limit=<limit>&offset=<offset>
	ListEvents(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	registry registry.Registry
	ledger   market.Ledger
}

// NewHandler creates a new REST API handler
func NewHandler(reg registry.Registry, ledger market.Ledger) Handler {
	return &handler{
		registry: reg,
		ledger:   ledger,
	}
}

func (h *handler) MintAsset(c *gin.Context) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		respondBadRequest(c, "Caller identity is missing")
		return
	}

	var req MintAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	assetID, err := h.registry.Mint(c.Request.Context(), caller, req.TokenURI)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	asset, err := h.registry.Asset(c.Request.Context(), assetID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mapAssetToDTO(asset))
}

func (h *handler) GetAsset(c *gin.Context) {
	assetID, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid asset id", err.Error())
		return
	}

	asset, err := h.registry.Asset(c.Request.Context(), assetID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapAssetToDTO(asset))
}

func (h *handler) CountAssets(c *gin.Context) {
	ctx := c.Request.Context()

	if ownerParam := c.Query("owner"); ownerParam != "" {
		owner, err := domain.ParseAddress(ownerParam)
		if err != nil {
			respondBadRequest(c, "Invalid owner address", err.Error())
			return
		}

		count, err := h.registry.BalanceOf(ctx, owner)
		if err != nil {
			respondDomainError(c, err)
			return
		}

		ownerHex := owner.Hex()
		c.JSON(http.StatusOK, AssetCountResponse{Owner: &ownerHex, Count: count})
		return
	}

	count, err := h.registry.TokenCount(ctx)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, AssetCountResponse{Count: count})
}

func (h *handler) TransferAsset(c *gin.Context) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		respondBadRequest(c, "Caller identity is missing")
		return
	}

	assetID, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid asset id", err.Error())
		return
	}

	var req TransferAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	from, err := domain.ParseAddress(req.From)
	if err != nil {
		respondBadRequest(c, "Invalid from address", err.Error())
		return
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		respondBadRequest(c, "Invalid to address", err.Error())
		return
	}

	ctx := c.Request.Context()
	if err := h.registry.Transfer(ctx, caller, from, to, assetID); err != nil {
		respondDomainError(c, err)
		return
	}

	asset, err := h.registry.Asset(ctx, assetID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapAssetToDTO(asset))
}

func (h *handler) SetApproval(c *gin.Context) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		respondBadRequest(c, "Caller identity is missing")
		return
	}

	var req SetApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	operator, err := domain.ParseAddress(req.Operator)
	if err != nil {
		respondBadRequest(c, "Invalid operator address", err.Error())
		return
	}

	if err := h.registry.SetApprovalForAll(c.Request.Context(), caller, operator, req.Approved); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, ApprovalResponse{
		Owner:    caller.Hex(),
		Operator: operator.Hex(),
		Approved: req.Approved,
	})
}

func (h *handler) CreateListing(c *gin.Context) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		respondBadRequest(c, "Caller identity is missing")
		return
	}

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	price, err := domain.ParseAmount(req.Price)
	if err != nil {
		respondBadRequest(c, "Invalid price", err.Error())
		return
	}

	listing, _, err := h.ledger.MakeItem(c.Request.Context(), caller, req.AssetID, price)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mapListingToDTO(listing))
}

func (h *handler) GetListing(c *gin.Context) {
	listingID, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid listing id", err.Error())
		return
	}

	listing, err := h.ledger.Item(c.Request.Context(), listingID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapListingToDTO(listing))
}

func (h *handler) ListListings(c *gin.Context) {
	filter := store.ListingQueryFilter{}

	if sellerParam := c.Query("seller"); sellerParam != "" {
		seller, err := domain.ParseAddress(sellerParam)
		if err != nil {
			respondBadRequest(c, "Invalid seller address", err.Error())
			return
		}
		filter.Seller = &seller
	}
	if soldParam := c.Query("sold"); soldParam != "" {
		sold, err := strconv.ParseBool(soldParam)
		if err != nil {
			respondBadRequest(c, "Invalid sold filter", err.Error())
			return
		}
		filter.Sold = &sold
	}

	limit, offset, err := parsePagination(c)
	if err != nil {
		respondBadRequest(c, "Invalid pagination", err.Error())
		return
	}
	filter.Limit = limit
	filter.Offset = offset

	listings, total, err := h.ledger.Items(c.Request.Context(), filter)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	items := make([]ListingResponse, len(listings))
	for i, listing := range listings {
		items[i] = mapListingToDTO(listing)
	}

	c.JSON(http.StatusOK, ListingListResponse{Items: items, Total: total})
}

func (h *handler) GetTotalPrice(c *gin.Context) {
	listingID, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid listing id", err.Error())
		return
	}

	ctx := c.Request.Context()
	listing, err := h.ledger.Item(ctx, listingID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	total, err := h.ledger.TotalPrice(ctx, listingID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, TotalPriceResponse{
		ListingID:  listingID,
		Price:      listing.Price.String(),
		TotalPrice: total.String(),
		FeePercent: h.ledger.FeePercent(),
	})
}

func (h *handler) PurchaseListing(c *gin.Context) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		respondBadRequest(c, "Caller identity is missing")
		return
	}

	listingID, err := parseID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid listing id", err.Error())
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	attached, err := domain.ParseAmount(req.AttachedValue)
	if err != nil {
		respondBadRequest(c, "Invalid attached value", err.Error())
		return
	}

	listing, _, err := h.ledger.Purchase(c.Request.Context(), caller, listingID, attached)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapListingToDTO(listing))
}

func (h *handler) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	address, err := domain.ParseAddress(req.Address)
	if err != nil {
		respondBadRequest(c, "Invalid address", err.Error())
		return
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		respondBadRequest(c, "Invalid amount", err.Error())
		return
	}

	account, err := h.ledger.Deposit(c.Request.Context(), address, amount)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapAccountToDTO(account))
}

func (h *handler) GetAccount(c *gin.Context) {
	address, err := domain.ParseAddress(c.Param("address"))
	if err != nil {
		respondBadRequest(c, "Invalid address", err.Error())
		return
	}

	account, err := h.ledger.Account(c.Request.Context(), address)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapAccountToDTO(account))
}

func (h *handler) GetMarketInfo(c *gin.Context) {
	count, err := h.ledger.ItemCount(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, MarketInfoResponse{
		FeePercent:   h.ledger.FeePercent(),
		FeeRecipient: h.ledger.FeeRecipient().Hex(),
		ItemCount:    count,
	})
}

func (h *handler) ListEvents(c *gin.Context) {
	filter := store.EventQueryFilter{}

	if typeParam := c.Query("type"); typeParam != "" {
		eventType := domain.EventType(typeParam)
		if eventType != domain.EventTypeOffered && eventType != domain.EventTypeBought {
			respondBadRequest(c, "Invalid event type", typeParam)
			return
		}
		filter.EventType = &eventType
	}
	if sellerParam := c.Query("seller"); sellerParam != "" {
		seller, err := domain.ParseAddress(sellerParam)
		if err != nil {
			respondBadRequest(c, "Invalid seller address", err.Error())
			return
		}
		filter.Seller = &seller
	}
	if buyerParam := c.Query("buyer"); buyerParam != "" {
		buyer, err := domain.ParseAddress(buyerParam)
		if err != nil {
			respondBadRequest(c, "Invalid buyer address", err.Error())
			return
		}
		filter.Buyer = &buyer
	}

	limit, offset, err := parsePagination(c)
	if err != nil {
		respondBadRequest(c, "Invalid pagination", err.Error())
		return
	}
	filter.Limit = limit
	filter.Offset = offset

	events, total, err := h.ledger.Events(c.Request.Context(), filter)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	dtos := make([]EventResponse, len(events))
	for i, event := range events {
		dtos[i] = mapEventToDTO(event)
	}

	c.JSON(http.StatusOK, EventListResponse{Events: dtos, Total: total})
}

func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID parses a positive decimal identifier
func parseID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// parsePagination extracts limit/offset query parameters with defaults
func parsePagination(c *gin.Context) (int, uint64, error) {
	limit := defaultPageLimit
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil {
			return 0, 0, err
		}
		if parsed > 0 && parsed <= maxPageLimit {
			limit = parsed
		}
	}

	var offset uint64
	if offsetParam := c.Query("offset"); offsetParam != "" {
		parsed, err := strconv.ParseUint(offsetParam, 10, 64)
		if err != nil {
			return 0, 0, err
		}
		offset = parsed
	}

	return limit, offset, nil
}
