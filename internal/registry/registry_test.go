package registry_test

import (
	"context"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artfolio/marketplace-ledger/internal/domain"
	"github.com/artfolio/marketplace-ledger/internal/logger"
	"github.com/artfolio/marketplace-ledger/internal/registry"
	"github.com/artfolio/marketplace-ledger/internal/store"
	"github.com/artfolio/marketplace-ledger/internal/store/schema"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

var (
	owner    = common.HexToAddress("0x5aeda56215b167893e80b4fe645ba6d5bab767de")
	operator = common.HexToAddress("0x821aea9a577a9b44299b9c15c88cf3087f3b5544")
	receiver = common.HexToAddress("0x0d1d4e623d10f9fba5db95830f7d3839406c6af2")
)

// fakeStore returns canned results for the registry-facing store methods.
type fakeStore struct {
	store.Store

	createAssetID      uint64
	createAssetErr     error
	getAssetResult     *schema.Asset
	getAssetErr        error
	setApprovalInput   *bool
	setApprovalErr     error
	isApprovedResult   bool
	transferInput      *store.TransferAssetInput
	transferErr        error
	countByOwnerResult uint64
	countAssetsResult  uint64
}

func (f *fakeStore) CreateAsset(ctx context.Context, owner common.Address, tokenURI string) (uint64, error) {
	return f.createAssetID, f.createAssetErr
}

func (f *fakeStore) GetAsset(ctx context.Context, assetID uint64) (*schema.Asset, error) {
	return f.getAssetResult, f.getAssetErr
}

func (f *fakeStore) SetOperatorApproval(ctx context.Context, owner, operator common.Address, approved bool) error {
	f.setApprovalInput = &approved
	return f.setApprovalErr
}

func (f *fakeStore) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	return f.isApprovedResult, nil
}

func (f *fakeStore) TransferAsset(ctx context.Context, input store.TransferAssetInput) error {
	f.transferInput = &input
	return f.transferErr
}

func (f *fakeStore) CountAssetsByOwner(ctx context.Context, owner common.Address) (uint64, error) {
	return f.countByOwnerResult, nil
}

func (f *fakeStore) CountAssets(ctx context.Context) (uint64, error) {
	return f.countAssetsResult, nil
}

func TestRegistry_Mint(t *testing.T) {
	fs := &fakeStore{createAssetID: 1}
	r := registry.New(fs)

	assetID, err := r.Mint(context.Background(), owner, "https://metadata.example/1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), assetID)
}

func TestRegistry_SetApprovalForAll(t *testing.T) {
	fs := &fakeStore{}
	r := registry.New(fs)

	require.NoError(t, r.SetApprovalForAll(context.Background(), owner, operator, true))
	require.NotNil(t, fs.setApprovalInput)
	assert.True(t, *fs.setApprovalInput)

	require.NoError(t, r.SetApprovalForAll(context.Background(), owner, operator, false))
	assert.False(t, *fs.setApprovalInput)
}

func TestRegistry_Transfer(t *testing.T) {
	fs := &fakeStore{}
	r := registry.New(fs)

	require.NoError(t, r.Transfer(context.Background(), operator, owner, receiver, 7))
	require.NotNil(t, fs.transferInput)
	assert.Equal(t, operator, fs.transferInput.Caller)
	assert.Equal(t, owner, fs.transferInput.From)
	assert.Equal(t, receiver, fs.transferInput.To)
	assert.Equal(t, uint64(7), fs.transferInput.AssetID)
}

func TestRegistry_Transfer_NotAuthorized(t *testing.T) {
	fs := &fakeStore{transferErr: domain.ErrNotAuthorized}
	r := registry.New(fs)

	err := r.Transfer(context.Background(), receiver, owner, receiver, 7)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestRegistry_Asset_Unknown(t *testing.T) {
	fs := &fakeStore{}
	r := registry.New(fs)

	_, err := r.Asset(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrUnknownAsset)
}

func TestRegistry_OwnerOf(t *testing.T) {
	fs := &fakeStore{getAssetResult: &schema.Asset{ID: 1, Owner: owner.Hex(), TokenURI: "uri"}}
	r := registry.New(fs)

	got, err := r.OwnerOf(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, owner, got)
}

func TestRegistry_TokenURI(t *testing.T) {
	fs := &fakeStore{getAssetResult: &schema.Asset{ID: 1, Owner: owner.Hex(), TokenURI: "https://metadata.example/1"}}
	r := registry.New(fs)

	uri, err := r.TokenURI(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://metadata.example/1", uri)
}

func TestRegistry_TokenURI_Unknown(t *testing.T) {
	fs := &fakeStore{}
	r := registry.New(fs)

	_, err := r.TokenURI(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrUnknownAsset)
}

func TestRegistry_Counts(t *testing.T) {
	fs := &fakeStore{countByOwnerResult: 3, countAssetsResult: 10}
	r := registry.New(fs)

	balance, err := r.BalanceOf(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), balance)

	total, err := r.TokenCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(10), total)
}
