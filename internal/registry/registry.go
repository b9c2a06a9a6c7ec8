// Package registry implements the asset registry: sequential asset ids,
// immutable metadata pointers, single-owner transfers and blanket operator
// delegation.
package registry

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/artfolio/marketplace-ledger/internal/domain"
	"github.com/artfolio/marketplace-ledger/internal/logger"
	"github.com/artfolio/marketplace-ledger/internal/store"
	"github.com/artfolio/marketplace-ledger/internal/store/schema"
)

// Registry defines the asset registry operations
type Registry interface {
	// Mint creates a new asset owned by caller and returns its id
	Mint(ctx context.Context, caller common.Address, tokenURI string) (uint64, error)
	// SetApprovalForAll grants or revokes blanket transfer rights for all of
	// caller's current and future assets; idempotent
	SetApprovalForAll(ctx context.Context, caller, operator common.Address, approved bool) error
	// IsApprovedForAll reports whether operator holds a blanket grant from owner
	IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error)
	// Transfer reassigns ownership; caller must be the owner or an approved operator
	Transfer(ctx context.Context, caller, from, to common.Address, assetID uint64) error
	// Asset retrieves the full asset record
	Asset(ctx context.Context, assetID uint64) (*schema.Asset, error)
	// OwnerOf returns the current holder of an asset
	OwnerOf(ctx context.Context, assetID uint64) (common.Address, error)
	// TokenURI returns the immutable metadata pointer of an asset
	TokenURI(ctx context.Context, assetID uint64) (string, error)
	// BalanceOf returns the number of assets held by owner
	BalanceOf(ctx context.Context, owner common.Address) (uint64, error)
	// TokenCount returns the total number of minted assets
	TokenCount(ctx context.Context) (uint64, error)
}

type assetRegistry struct {
	store store.Store
}

// New creates a new asset registry backed by the given store
func New(s store.Store) Registry {
	return &assetRegistry{store: s}
}

func (r *assetRegistry) Mint(ctx context.Context, caller common.Address, tokenURI string) (uint64, error) {
	assetID, err := r.store.CreateAsset(ctx, caller, tokenURI)
	if err != nil {
		return 0, err
	}

	logger.InfoCtx(ctx, "Minted asset",
		zap.Uint64("asset_id", assetID),
		zap.String("owner", caller.Hex()),
	)
	return assetID, nil
}

func (r *assetRegistry) SetApprovalForAll(ctx context.Context, caller, operator common.Address, approved bool) error {
	if err := r.store.SetOperatorApproval(ctx, caller, operator, approved); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Set operator approval",
		zap.String("owner", caller.Hex()),
		zap.String("operator", operator.Hex()),
		zap.Bool("approved", approved),
	)
	return nil
}

func (r *assetRegistry) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	return r.store.IsApprovedForAll(ctx, owner, operator)
}

func (r *assetRegistry) Transfer(ctx context.Context, caller, from, to common.Address, assetID uint64) error {
	err := r.store.TransferAsset(ctx, store.TransferAssetInput{
		Caller:  caller,
		From:    from,
		To:      to,
		AssetID: assetID,
	})
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Transferred asset",
		zap.Uint64("asset_id", assetID),
		zap.String("from", from.Hex()),
		zap.String("to", to.Hex()),
	)
	return nil
}

func (r *assetRegistry) Asset(ctx context.Context, assetID uint64) (*schema.Asset, error) {
	asset, err := r.store.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, domain.ErrUnknownAsset
	}
	return asset, nil
}

func (r *assetRegistry) OwnerOf(ctx context.Context, assetID uint64) (common.Address, error) {
	asset, err := r.Asset(ctx, assetID)
	if err != nil {
		return common.Address{}, err
	}
	return domain.ParseAddress(asset.Owner)
}

func (r *assetRegistry) TokenURI(ctx context.Context, assetID uint64) (string, error) {
	asset, err := r.Asset(ctx, assetID)
	if err != nil {
		return "", err
	}
	return asset.TokenURI, nil
}

func (r *assetRegistry) BalanceOf(ctx context.Context, owner common.Address) (uint64, error) {
	return r.store.CountAssetsByOwner(ctx, owner)
}

func (r *assetRegistry) TokenCount(ctx context.Context) (uint64, error) {
	return r.store.CountAssets(ctx)
}
