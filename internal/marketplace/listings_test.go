package marketplace_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openminter/nft-aggregator/internal/domain"
	"github.com/openminter/nft-aggregator/internal/logger"
	"github.com/openminter/nft-aggregator/internal/marketplace"
	"github.com/openminter/nft-aggregator/internal/mocks"
	"github.com/openminter/nft-aggregator/internal/providers/tezos"
	"github.com/openminter/nft-aggregator/internal/schema"
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

// saleSourceStub feeds canned sale rows into the pipeline.
type saleSourceStub struct {
	sales []schema.FixedPriceSaleEntry
	err   error
}

func (s *saleSourceStub) GetFixedPriceSales(context.Context) ([]schema.FixedPriceSaleEntry, error) {
	return s.sales, s.err
}

func saleEntry(id int64, active bool, address, tokenID, seller, price string) schema.FixedPriceSaleEntry {
	return schema.FixedPriceSaleEntry{
		ID:     id,
		Active: active,
		Key: schema.SaleKey{
			SaleToken:  schema.SaleToken{TokenForSaleAddress: address, TokenForSaleTokenID: tokenID},
			SaleSeller: seller,
		},
		Value: price,
	}
}

type pipelineMocks struct {
	ctrl     *gomock.Controller
	tzkt     *mocks.MockTzKTClient
	metadata *mocks.MockMetadataResolver
	sales    *saleSourceStub
	pipeline *marketplace.Pipeline
}

func setupPipeline(t *testing.T, sales ...schema.FixedPriceSaleEntry) *pipelineMocks {
	ctrl := gomock.NewController(t)
	tzkt := mocks.NewMockTzKTClient(ctrl)
	metadataResolver := mocks.NewMockMetadataResolver(ctrl)
	source := &saleSourceStub{sales: sales}

	return &pipelineMocks{
		ctrl:     ctrl,
		tzkt:     tzkt,
		metadata: metadataResolver,
		sales:    source,
		pipeline: marketplace.NewPipeline(tzkt, metadataResolver, source),
	}
}

func TestListActiveSales(t *testing.T) {
	m := setupPipeline(t,
		saleEntry(1, true, "KT1A", "0", "tz1SellerA", "1000000"),
		saleEntry(2, false, "KT1A", "1", "tz1SellerA", "1000000"),
		saleEntry(3, true, "KT1B", "7", "tz1SellerB", "2000000"),
	)
	defer m.ctrl.Finish()

	m.tzkt.EXPECT().GetBigMapUpdates(gomock.Any(), tezos.BigMapUpdatesFilter{
		Path:      "assets.token_metadata",
		Action:    "add_key",
		Contracts: []string{"KT1A", "KT1B"},
	}).Return(json.RawMessage(`[
		{"contract": {"address": "KT1A"}, "content": {"value": {"token_id": 0, "token_info": {"": "697066733a2f2f516d41"}}}},
		{"contract": {"address": "KT1B"}, "content": {"value": {"token_id": 7, "token_info": {"": "697066733a2f2f516d42"}}}}
	]`), nil)

	listings, err := m.pipeline.ListActiveSales(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	// Newest first, inactive sale dropped
	assert.Equal(t, int64(3), listings[0].TokenSale.ID)
	assert.Equal(t, "ipfs://QmB", listings[0].TokenMetadata)
	assert.Equal(t, int64(1), listings[1].TokenSale.ID)
	assert.Equal(t, "ipfs://QmA", listings[1].TokenMetadata)

	for _, listing := range listings {
		assert.False(t, listing.Loaded())
		assert.Equal(t, marketplace.ListingPending, listing.State())
	}
}

func TestListActiveSalesUnmatchedTokenMetadata(t *testing.T) {
	m := setupPipeline(t,
		saleEntry(1, true, "KT1A", "0", "tz1Seller", "1000000"),
	)
	defer m.ctrl.Finish()

	// The event's token id joins as a string, so token 1 does not match sale of token 0
	m.tzkt.EXPECT().GetBigMapUpdates(gomock.Any(), gomock.Any()).Return(json.RawMessage(`[
		{"contract": {"address": "KT1A"}, "content": {"value": {"token_id": 1, "token_info": {"": "697066733a2f2f516d41"}}}}
	]`), nil)

	listings, err := m.pipeline.ListActiveSales(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "", listings[0].TokenMetadata)
}

func TestListActiveSalesNoActiveSales(t *testing.T) {
	m := setupPipeline(t,
		saleEntry(1, false, "KT1A", "0", "tz1Seller", "1000000"),
	)
	defer m.ctrl.Finish()

	// No updates fetch happens when every sale is inactive
	listings, err := m.pipeline.ListActiveSales(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestResolve(t *testing.T) {
	m := setupPipeline(t)
	defer m.ctrl.Finish()

	listing := &marketplace.Listing{
		TokenSale:     saleEntry(5, true, "KT1A", "3", "tz1Seller", "2000000"),
		TokenMetadata: "ipfs://QmA",
	}

	m.metadata.EXPECT().Resolve(gomock.Any(), "ipfs://QmA").Return(domain.Metadata{
		"name":        "Token Three",
		"description": "Third",
		"artifactUri": "ipfs://QmArtifact",
	}, nil)

	resolved, err := m.pipeline.Resolve(context.Background(), listing)
	require.NoError(t, err)
	require.Same(t, listing, resolved)

	assert.Equal(t, marketplace.ListingResolved, listing.State())
	assert.True(t, listing.Loaded())

	token := listing.Token
	require.NotNil(t, token)
	assert.Equal(t, int64(3), token.ID)
	assert.Equal(t, "Token Three", token.Title)
	assert.Equal(t, "tz1Seller", token.Owner)
	assert.Equal(t, "KT1A", token.Address)
	require.NotNil(t, token.Sale)
	assert.Equal(t, float64(2), token.Sale.Price)
}

func TestResolveIsIdempotent(t *testing.T) {
	m := setupPipeline(t)
	defer m.ctrl.Finish()

	listing := &marketplace.Listing{
		TokenSale:     saleEntry(5, true, "KT1A", "3", "tz1Seller", "2000000"),
		TokenMetadata: "ipfs://QmA",
	}

	// The resolver is consulted exactly once no matter how many callers race
	m.metadata.EXPECT().Resolve(gomock.Any(), "ipfs://QmA").Return(domain.Metadata{"name": "Token Three"}, nil).Times(1)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.pipeline.Resolve(context.Background(), listing)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, marketplace.ListingResolved, listing.State())
	require.NotNil(t, listing.Token)
}

func TestResolveMissingTokenMetadata(t *testing.T) {
	m := setupPipeline(t)
	defer m.ctrl.Finish()

	listing := &marketplace.Listing{
		TokenSale: saleEntry(5, true, "KT1A", "3", "tz1Seller", "2000000"),
	}

	_, err := m.pipeline.Resolve(context.Background(), listing)

	var missingErr *domain.MissingDataError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, "token metadata", missingErr.What)

	// The failed record stays claimed and never retries
	assert.Equal(t, marketplace.ListingFailed, listing.State())
	assert.True(t, listing.Loaded())
	assert.Error(t, listing.Err)

	resolved, err := m.pipeline.Resolve(context.Background(), listing)
	require.NoError(t, err)
	assert.Equal(t, marketplace.ListingFailed, resolved.State())
}

func TestResolveResolverFailure(t *testing.T) {
	m := setupPipeline(t)
	defer m.ctrl.Finish()

	listing := &marketplace.Listing{
		TokenSale:     saleEntry(5, true, "KT1A", "3", "tz1Seller", "2000000"),
		TokenMetadata: "ipfs://QmA",
	}

	resolveErr := errors.New("gateway timeout")
	m.metadata.EXPECT().Resolve(gomock.Any(), "ipfs://QmA").Return(nil, resolveErr)

	_, err := m.pipeline.Resolve(context.Background(), listing)
	assert.ErrorIs(t, err, resolveErr)
	assert.Equal(t, marketplace.ListingFailed, listing.State())
	assert.Nil(t, listing.Token)
}

func TestResolveInvalidSalePrice(t *testing.T) {
	m := setupPipeline(t)
	defer m.ctrl.Finish()

	listing := &marketplace.Listing{
		TokenSale:     saleEntry(5, true, "KT1A", "3", "tz1Seller", "not-a-number"),
		TokenMetadata: "ipfs://QmA",
	}

	_, err := m.pipeline.Resolve(context.Background(), listing)
	assert.Error(t, err)
	assert.Equal(t, marketplace.ListingFailed, listing.State())
}

func TestListActiveSalesSaleSourceFailure(t *testing.T) {
	m := setupPipeline(t)
	defer m.ctrl.Finish()

	m.sales.err = errors.New("tzkt unavailable")

	_, err := m.pipeline.ListActiveSales(context.Background())
	assert.ErrorIs(t, err, m.sales.err)
}
