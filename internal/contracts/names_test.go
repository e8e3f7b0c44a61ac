package contracts_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openminter/nft-aggregator/internal/contracts"
	"github.com/openminter/nft-aggregator/internal/domain"
	"github.com/openminter/nft-aggregator/internal/logger"
	"github.com/openminter/nft-aggregator/internal/mocks"
	"github.com/openminter/nft-aggregator/internal/providers/tezos"
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

const (
	factoryAddress = "KT1Factory"
	minterAddress  = "KT1Minter"
)

func newNameResolver(tzkt *mocks.MockTzKTClient) *contracts.NameResolver {
	return contracts.NewNameResolver(tzkt, contracts.NameResolverConfig{
		FactoryAddress: factoryAddress,
		MinterAddress:  minterAddress,
		Workers:        4,
	})
}

func TestResolveNamesFactory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tzkt := mocks.NewMockTzKTClient(ctrl)
	tzkt.EXPECT().GetContract(gomock.Any(), factoryAddress).Return(&tezos.Contract{
		Address: factoryAddress,
		BigMaps: map[string]int64{"contracts": 10},
	}, nil)
	tzkt.EXPECT().GetBigMapKeys(gomock.Any(), int64(10)).Return(json.RawMessage(`[
		{"key": "KT1A", "value": {"owner": "tz1X", "name": "Collection A"}},
		{"key": "KT1B", "value": {"owner": "tz1Y", "name": "Collection B"}}
	]`), nil)

	identifiers, err := newNameResolver(tzkt).ResolveNames(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []domain.ContractIdentifier{
		{Address: minterAddress, Name: "Minter"},
		{Address: "KT1A", Name: "Collection A"},
		{Address: "KT1B", Name: "Collection B"},
	}, identifiers)
}

func TestResolveNamesOwnerFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tzkt := mocks.NewMockTzKTClient(ctrl)
	tzkt.EXPECT().GetContract(gomock.Any(), factoryAddress).Return(&tezos.Contract{
		Address: factoryAddress,
		BigMaps: map[string]int64{"contracts": 10},
	}, nil)
	tzkt.EXPECT().GetBigMapKeys(gomock.Any(), int64(10)).Return(json.RawMessage(`[
		{"key": "KT1A", "value": {"owner": "tz1X", "name": "Collection A"}},
		{"key": "KT1B", "value": {"owner": "tz1Y", "name": "Collection B"}}
	]`), nil)

	owner := "tz1X"
	identifiers, err := newNameResolver(tzkt).ResolveNames(context.Background(), &owner, nil)
	require.NoError(t, err)

	// The minter is always included regardless of owner
	assert.Equal(t, []domain.ContractIdentifier{
		{Address: minterAddress, Name: "Minter"},
		{Address: "KT1A", Name: "Collection A"},
	}, identifiers)
}

func TestResolveNamesFA2Factory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// A factory address that is itself an FA2 contract yields just the minter
	tzkt := mocks.NewMockTzKTClient(ctrl)
	tzkt.EXPECT().GetContract(gomock.Any(), factoryAddress).Return(&tezos.Contract{
		Address: factoryAddress,
		BigMaps: map[string]int64{"assets.ledger": 20},
	}, nil)

	identifiers, err := newNameResolver(tzkt).ResolveNames(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.ContractIdentifier{{Address: minterAddress, Name: "Minter"}}, identifiers)
}

func TestResolveNamesGenericFactory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tzkt := mocks.NewMockTzKTClient(ctrl)
	tzkt.EXPECT().GetContract(gomock.Any(), factoryAddress).Return(&tezos.Contract{
		Address: factoryAddress,
		BigMaps: map[string]int64{},
	}, nil)

	identifiers, err := newNameResolver(tzkt).ResolveNames(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, identifiers)
}

func TestResolveNamesNftOwnerFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tzkt := mocks.NewMockTzKTClient(ctrl)
	tzkt.EXPECT().GetContract(gomock.Any(), factoryAddress).Return(&tezos.Contract{
		Address: factoryAddress,
		BigMaps: map[string]int64{"contracts": 10},
	}, nil)
	tzkt.EXPECT().GetBigMapKeys(gomock.Any(), int64(10)).Return(json.RawMessage(`[
		{"key": "KT1A", "value": {"owner": "tz1X", "name": "Collection A"}},
		{"key": "KT1B", "value": {"owner": "tz1X", "name": "Collection B"}}
	]`), nil)

	// Minter holds a token of tz1Holder, KT1A does not, KT1B is not FA2
	tzkt.EXPECT().GetContract(gomock.Any(), minterAddress).Return(&tezos.Contract{
		Address: minterAddress,
		BigMaps: map[string]int64{"assets.ledger": 30},
	}, nil)
	tzkt.EXPECT().GetBigMapKeys(gomock.Any(), int64(30)).Return(json.RawMessage(`[
		{"id": 1, "active": true, "hash": "h", "key": "0", "value": "tz1Holder", "firstLevel": 1, "lastLevel": 1, "updates": 1}
	]`), nil)

	tzkt.EXPECT().GetContract(gomock.Any(), "KT1A").Return(&tezos.Contract{
		Address: "KT1A",
		BigMaps: map[string]int64{"assets.ledger": 31},
	}, nil)
	tzkt.EXPECT().GetBigMapKeys(gomock.Any(), int64(31)).Return(json.RawMessage(`[
		{"id": 2, "active": true, "hash": "h", "key": "0", "value": "tz1Other", "firstLevel": 1, "lastLevel": 1, "updates": 1}
	]`), nil)

	tzkt.EXPECT().GetContract(gomock.Any(), "KT1B").Return(&tezos.Contract{
		Address: "KT1B",
		BigMaps: map[string]int64{},
	}, nil)

	nftOwner := "tz1Holder"
	identifiers, err := newNameResolver(tzkt).ResolveNames(context.Background(), nil, &nftOwner)
	require.NoError(t, err)

	assert.Equal(t, []domain.ContractIdentifier{{Address: minterAddress, Name: "Minter"}}, identifiers)
}

func TestResolveNamesNftOwnerFilterExcludesFailingCandidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tzkt := mocks.NewMockTzKTClient(ctrl)
	tzkt.EXPECT().GetContract(gomock.Any(), factoryAddress).Return(&tezos.Contract{
		Address: factoryAddress,
		BigMaps: map[string]int64{"contracts": 10},
	}, nil)
	tzkt.EXPECT().GetBigMapKeys(gomock.Any(), int64(10)).Return(json.RawMessage(`[
		{"key": "KT1A", "value": {"owner": "tz1X", "name": "Collection A"}}
	]`), nil)

	tzkt.EXPECT().GetContract(gomock.Any(), minterAddress).Return(&tezos.Contract{
		Address: minterAddress,
		BigMaps: map[string]int64{"assets.ledger": 30},
	}, nil)
	tzkt.EXPECT().GetBigMapKeys(gomock.Any(), int64(30)).Return(json.RawMessage(`[
		{"id": 1, "active": true, "hash": "h", "key": "0", "value": "tz1Holder", "firstLevel": 1, "lastLevel": 1, "updates": 1}
	]`), nil)

	// KT1A's reads fail; the candidate is dropped, not the resolution
	tzkt.EXPECT().GetContract(gomock.Any(), "KT1A").Return(nil, errors.New("tzkt unavailable"))

	nftOwner := "tz1Holder"
	identifiers, err := newNameResolver(tzkt).ResolveNames(context.Background(), nil, &nftOwner)
	require.NoError(t, err)

	assert.Equal(t, []domain.ContractIdentifier{{Address: minterAddress, Name: "Minter"}}, identifiers)
}

func TestResolveNamesPropagatesRegistryValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tzkt := mocks.NewMockTzKTClient(ctrl)
	tzkt.EXPECT().GetContract(gomock.Any(), factoryAddress).Return(&tezos.Contract{
		Address: factoryAddress,
		BigMaps: map[string]int64{"contracts": 10},
	}, nil)
	tzkt.EXPECT().GetBigMapKeys(gomock.Any(), int64(10)).Return(json.RawMessage(`[{"key": "KT1A"}]`), nil)

	_, err := newNameResolver(tzkt).ResolveNames(context.Background(), nil, nil)

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
