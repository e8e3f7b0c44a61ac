package tezos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/openminter/nft-aggregator/internal/adapter"
)

// defaultPageLimit caps every list read; the minter contracts this system
// targets stay far below it.
const defaultPageLimit = 10000

// Contract is a fetched contract descriptor: its indexer-reported kind plus
// the big maps its storage exposes, keyed by storage path.
type Contract struct {
	Address string
	Kind    string
	BigMaps map[string]int64
}

// AccountContract is one contract originated or administered by an account.
type AccountContract struct {
	Kind    string `json:"kind"`
	Address string `json:"address"`
	Alias   string `json:"alias"`
}

// BigMapUpdatesFilter selects big-map events on the updates endpoint.
type BigMapUpdatesFilter struct {
	Path      string
	Action    string
	Contracts []string
	Limit     int
}

// TzKTClient defines an interface for TzKT API client operations to enable mocking
//
//go:generate mockgen -source=tzkt_client.go -destination=../../mocks/tzkt_client.go -package=mocks -mock_names=TzKTClient=MockTzKTClient
type TzKTClient interface {
	// GetContract retrieves a contract descriptor with its big-map layout
	GetContract(ctx context.Context, address string) (*Contract, error)

	// GetContractStorage retrieves a contract's raw storage value
	GetContractStorage(ctx context.Context, address string) (json.RawMessage, error)

	// GetContractBigMapKeys retrieves the keys of a contract big map addressed by storage path
	GetContractBigMapKeys(ctx context.Context, address, path string) (json.RawMessage, error)

	// GetBigMapKeys retrieves the keys of a big map addressed by id
	GetBigMapKeys(ctx context.Context, bigMapID int64) (json.RawMessage, error)

	// GetBigMapUpdates retrieves big-map events matching the filter
	GetBigMapUpdates(ctx context.Context, filter BigMapUpdatesFilter) (json.RawMessage, error)

	// GetAccountContracts retrieves the contracts related to an account
	GetAccountContracts(ctx context.Context, address string) ([]AccountContract, error)
}

// tzktClient is the concrete implementation of TzKTClient
type tzktClient struct {
	baseURL    string
	httpClient adapter.HTTPClient
}

// NewTzKTClient creates a new TzKT API client
func NewTzKTClient(baseURL string, httpClient adapter.HTTPClient) TzKTClient {
	return &tzktClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type contractDescriptor struct {
	Address string `json:"address"`
	Kind    string `json:"kind"`
}

type bigMapDescriptor struct {
	Ptr  int64  `json:"ptr"`
	Path string `json:"path"`
}

// GetContract retrieves a contract descriptor together with its big maps
func (c *tzktClient) GetContract(ctx context.Context, address string) (*Contract, error) {
	var descriptor contractDescriptor
	contractURL := fmt.Sprintf("%s/v1/contracts/%s", c.baseURL, address)
	if err := c.httpClient.Get(ctx, contractURL, &descriptor); err != nil {
		return nil, fmt.Errorf("failed to get contract %s: %w", address, err)
	}

	var bigMaps []bigMapDescriptor
	bigMapsURL := fmt.Sprintf("%s/v1/contracts/%s/bigmaps", c.baseURL, address)
	if err := c.httpClient.Get(ctx, bigMapsURL, &bigMaps); err != nil {
		return nil, fmt.Errorf("failed to get big maps of %s: %w", address, err)
	}

	contract := &Contract{
		Address: descriptor.Address,
		Kind:    descriptor.Kind,
		BigMaps: make(map[string]int64, len(bigMaps)),
	}
	for _, bm := range bigMaps {
		contract.BigMaps[bm.Path] = bm.Ptr
	}
	return contract, nil
}

// GetContractStorage retrieves a contract's raw storage value
func (c *tzktClient) GetContractStorage(ctx context.Context, address string) (json.RawMessage, error) {
	var storage json.RawMessage
	storageURL := fmt.Sprintf("%s/v1/contracts/%s/storage", c.baseURL, address)
	if err := c.httpClient.Get(ctx, storageURL, &storage); err != nil {
		return nil, fmt.Errorf("failed to get storage of %s: %w", address, err)
	}
	return storage, nil
}

// GetContractBigMapKeys retrieves the keys of a contract big map addressed by storage path
func (c *tzktClient) GetContractBigMapKeys(ctx context.Context, address, path string) (json.RawMessage, error) {
	var keys json.RawMessage
	keysURL := fmt.Sprintf("%s/v1/contracts/%s/bigmaps/%s/keys?limit=%d", c.baseURL, address, path, defaultPageLimit)
	if err := c.httpClient.Get(ctx, keysURL, &keys); err != nil {
		return nil, fmt.Errorf("failed to get big map %s of %s: %w", path, address, err)
	}
	return keys, nil
}

// GetBigMapKeys retrieves the keys of a big map addressed by id
func (c *tzktClient) GetBigMapKeys(ctx context.Context, bigMapID int64) (json.RawMessage, error) {
	var keys json.RawMessage
	keysURL := fmt.Sprintf("%s/v1/bigmaps/%d/keys?limit=%d", c.baseURL, bigMapID, defaultPageLimit)
	if err := c.httpClient.Get(ctx, keysURL, &keys); err != nil {
		return nil, fmt.Errorf("failed to get big map %d: %w", bigMapID, err)
	}
	return keys, nil
}

// GetBigMapUpdates retrieves big-map events matching the filter
func (c *tzktClient) GetBigMapUpdates(ctx context.Context, filter BigMapUpdatesFilter) (json.RawMessage, error) {
	query := url.Values{}
	if filter.Path != "" {
		query.Set("path", filter.Path)
	}
	if filter.Action != "" {
		query.Set("action", filter.Action)
	}
	if len(filter.Contracts) > 0 {
		query.Set("contract.in", strings.Join(filter.Contracts, ","))
	}
	limit := filter.Limit
	if limit == 0 {
		limit = defaultPageLimit
	}
	query.Set("limit", fmt.Sprintf("%d", limit))

	var updates json.RawMessage
	updatesURL := fmt.Sprintf("%s/v1/bigmaps/updates?%s", c.baseURL, query.Encode())
	if err := c.httpClient.Get(ctx, updatesURL, &updates); err != nil {
		return nil, fmt.Errorf("failed to get big map updates: %w", err)
	}
	return updates, nil
}

// GetAccountContracts retrieves the contracts related to an account
func (c *tzktClient) GetAccountContracts(ctx context.Context, address string) ([]AccountContract, error) {
	var contracts []AccountContract
	contractsURL := fmt.Sprintf("%s/v1/accounts/%s/contracts?limit=%d", c.baseURL, address, defaultPageLimit)
	if err := c.httpClient.Get(ctx, contractsURL, &contracts); err != nil {
		return nil, fmt.Errorf("failed to get contracts of %s: %w", address, err)
	}
	return contracts, nil
}
