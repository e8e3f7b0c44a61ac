package nft_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openminter/nft-aggregator/internal/domain"
	"github.com/openminter/nft-aggregator/internal/mocks"
	"github.com/openminter/nft-aggregator/internal/nft"
	"github.com/openminter/nft-aggregator/internal/providers/tezos"
)

const walletAddress = "tz1Wallet"

type assetMocks struct {
	ctrl     *gomock.Controller
	tzkt     *mocks.MockTzKTClient
	metadata *mocks.MockMetadataResolver
	resolver *nft.AssetContractResolver
}

func setupAssetResolver(t *testing.T) *assetMocks {
	ctrl := gomock.NewController(t)
	tzkt := mocks.NewMockTzKTClient(ctrl)
	metadataResolver := mocks.NewMockMetadataResolver(ctrl)

	return &assetMocks{
		ctrl:     ctrl,
		tzkt:     tzkt,
		metadata: metadataResolver,
		resolver: nft.NewAssetContractResolver(tzkt, metadataResolver, 4),
	}
}

func TestResolveAssetContract(t *testing.T) {
	m := setupAssetResolver(t)
	defer m.ctrl.Finish()

	m.tzkt.EXPECT().GetContractBigMapKeys(gomock.Any(), "KT1A", "metadata").Return(json.RawMessage(`[
		{"id": 1, "active": true, "hash": "h", "key": "", "value": "`+hexMetadataURI+`", "firstLevel": 1, "lastLevel": 1, "updates": 1}
	]`), nil)
	m.metadata.EXPECT().Resolve(gomock.Any(), "ipfs://QmTest").Return(domain.Metadata{
		"name":        "Collection A",
		"description": "A collection",
	}, nil)

	contract, err := m.resolver.ResolveAssetContract(context.Background(), "KT1A")
	require.NoError(t, err)

	assert.Equal(t, "KT1A", contract.Address)
	assert.Equal(t, "Collection A", contract.Metadata.Name())
}

func TestResolveAssetContractMissingURIKey(t *testing.T) {
	m := setupAssetResolver(t)
	defer m.ctrl.Finish()

	// No "" key in the metadata big map
	m.tzkt.EXPECT().GetContractBigMapKeys(gomock.Any(), "KT1A", "metadata").Return(json.RawMessage(`[
		{"id": 1, "active": true, "hash": "h", "key": "version", "value": "76312e30", "firstLevel": 1, "lastLevel": 1, "updates": 1}
	]`), nil)

	_, err := m.resolver.ResolveAssetContract(context.Background(), "KT1A")

	var missingErr *domain.MissingDataError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, "metadata URI", missingErr.What)
}

func TestResolveAssetContractUnnamedMetadata(t *testing.T) {
	m := setupAssetResolver(t)
	defer m.ctrl.Finish()

	m.tzkt.EXPECT().GetContractBigMapKeys(gomock.Any(), "KT1A", "metadata").Return(json.RawMessage(`[
		{"id": 1, "active": true, "hash": "h", "key": "", "value": "`+hexMetadataURI+`", "firstLevel": 1, "lastLevel": 1, "updates": 1}
	]`), nil)
	m.metadata.EXPECT().Resolve(gomock.Any(), "ipfs://QmTest").Return(domain.Metadata{"description": "nameless"}, nil)

	_, err := m.resolver.ResolveAssetContract(context.Background(), "KT1A")

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestResolveWalletAssetContracts(t *testing.T) {
	m := setupAssetResolver(t)
	defer m.ctrl.Finish()

	m.tzkt.EXPECT().GetAccountContracts(gomock.Any(), walletAddress).Return([]tezos.AccountContract{
		{Kind: "asset", Address: "KT1A"},
		{Kind: "delegator_contract", Address: "KT1Delegator"},
		{Kind: "asset", Address: "KT1B"},
	}, nil)
	m.tzkt.EXPECT().GetBigMapUpdates(gomock.Any(), tezos.BigMapUpdatesFilter{
		Path:      "metadata",
		Action:    "add_key",
		Contracts: []string{"KT1A", "KT1B"},
	}).Return(json.RawMessage(`[
		{"contract": {"address": "KT1A"}, "content": {"key": "", "value": "697066733a2f2f516d41"}},
		{"contract": {"address": "KT1A"}, "content": {"key": "version", "value": "76312e30"}},
		{"contract": {"address": "KT1B"}, "content": {"key": "", "value": "697066733a2f2f516d42"}}
	]`), nil)

	// KT1B's metadata fails to resolve and is skipped
	m.metadata.EXPECT().Resolve(gomock.Any(), "ipfs://QmA").Return(domain.Metadata{"name": "Collection A"}, nil)
	m.metadata.EXPECT().Resolve(gomock.Any(), "ipfs://QmB").Return(nil, errors.New("gateway timeout"))

	contracts, err := m.resolver.ResolveWalletAssetContracts(context.Background(), walletAddress)
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	assert.Equal(t, "KT1A", contracts[0].Address)
}

func TestResolveWalletAssetContractsNoAssetContracts(t *testing.T) {
	m := setupAssetResolver(t)
	defer m.ctrl.Finish()

	m.tzkt.EXPECT().GetAccountContracts(gomock.Any(), walletAddress).Return([]tezos.AccountContract{
		{Kind: "delegator_contract", Address: "KT1Delegator"},
	}, nil)

	contracts, err := m.resolver.ResolveWalletAssetContracts(context.Background(), walletAddress)
	require.NoError(t, err)
	assert.Empty(t, contracts)
}
