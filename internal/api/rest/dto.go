package rest

import (
	"encoding/json"
	"time"

	"github.com/artfolio/marketplace-ledger/internal/store/schema"
)

// MintAssetRequest is the body of POST /assets
type MintAssetRequest struct {
	TokenURI string `json:"token_uri" binding:"required"`
}

// TransferAssetRequest is the body of POST /assets/:id/transfer
type TransferAssetRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// SetApprovalRequest is the body of POST /approvals
type SetApprovalRequest struct {
	Operator string `json:"operator" binding:"required"`
	Approved bool   `json:"approved"`
}

// CreateListingRequest is the body of POST /listings
type CreateListingRequest struct {
	AssetID uint64 `json:"asset_id" binding:"required"`
	Price   string `json:"price" binding:"required"`
}

// PurchaseRequest is the body of POST /listings/:id/purchase
type PurchaseRequest struct {
	AttachedValue string `json:"attached_value" binding:"required"`
}

// DepositRequest is the body of POST /accounts/deposit
type DepositRequest struct {
	Address string `json:"address" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// AssetResponse represents an asset record
type AssetResponse struct {
	ID        uint64    `json:"id"`
	Owner     string    `json:"owner"`
	TokenURI  string    `json:"token_uri"`
	CreatedAt time.Time `json:"created_at"`
}

// AssetCountResponse is the response of GET /assets
type AssetCountResponse struct {
	Owner *string `json:"owner,omitempty"`
	Count uint64  `json:"count"`
}

// ApprovalResponse is the response of POST /approvals
type ApprovalResponse struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

// ListingResponse represents a listing record
type ListingResponse struct {
	ID        uint64     `json:"id"`
	AssetID   uint64     `json:"asset_id"`
	Price     string     `json:"price"`
	Seller    string     `json:"seller"`
	Sold      bool       `json:"sold"`
	Buyer     *string    `json:"buyer,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	SoldAt    *time.Time `json:"sold_at,omitempty"`
}

// ListingListResponse is the response of GET /listings
type ListingListResponse struct {
	Items []ListingResponse `json:"items"`
	Total uint64            `json:"total"`
}

// TotalPriceResponse is the response of GET /listings/:id/total-price
type TotalPriceResponse struct {
	ListingID  uint64 `json:"listing_id"`
	Price      string `json:"price"`
	TotalPrice string `json:"total_price"`
	FeePercent uint64 `json:"fee_percent"`
}

// AccountResponse represents a settlement account
type AccountResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

// EventResponse represents a journal entry
type EventResponse struct {
	ID        int64           `json:"id"`
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	ListingID uint64          `json:"listing_id"`
	Seller    string          `json:"seller"`
	Buyer     *string         `json:"buyer,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventListResponse is the response of GET /events
type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Total  uint64          `json:"total"`
}

// MarketInfoResponse is the response of GET /market
type MarketInfoResponse struct {
	FeePercent   uint64 `json:"fee_percent"`
	FeeRecipient string `json:"fee_recipient"`
	ItemCount    uint64 `json:"item_count"`
}

func mapAssetToDTO(asset *schema.Asset) AssetResponse {
	return AssetResponse{
		ID:        asset.ID,
		Owner:     asset.Owner,
		TokenURI:  asset.TokenURI,
		CreatedAt: asset.CreatedAt,
	}
}

func mapListingToDTO(listing *schema.Listing) ListingResponse {
	return ListingResponse{
		ID:        listing.ID,
		AssetID:   listing.AssetID,
		Price:     listing.Price.String(),
		Seller:    listing.Seller,
		Sold:      listing.Sold,
		Buyer:     listing.Buyer,
		CreatedAt: listing.CreatedAt,
		SoldAt:    listing.SoldAt,
	}
}

func mapAccountToDTO(account *schema.Account) AccountResponse {
	return AccountResponse{
		Address: account.Address,
		Balance: account.Balance.String(),
	}
}

func mapEventToDTO(event *schema.MarketEvent) EventResponse {
	return EventResponse{
		ID:        event.ID,
		EventID:   event.EventID,
		EventType: event.EventType,
		ListingID: event.ListingID,
		Seller:    event.Seller,
		Buyer:     event.Buyer,
		Payload:   json.RawMessage(event.Payload),
		CreatedAt: event.CreatedAt,
	}
}
