package metadata

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/openminter/nft-aggregator/internal/adapter"
	"github.com/openminter/nft-aggregator/internal/domain"
	"github.com/openminter/nft-aggregator/internal/logger"
)

// DefaultCacheSize bounds the resolved-URI cache when no size is configured.
const DefaultCacheSize = 1024

// Config holds configuration for the metadata resolver
type Config struct {
	// IPFSGateways is the list of IPFS gateways to try
	IPFSGateways []string
	// CacheSize bounds the resolved-URI LRU cache
	CacheSize int
}

// Resolver defines the interface for resolving a metadata URI into a
// structured metadata record
//
//go:generate mockgen -source=resolver.go -destination=../mocks/metadata_resolver.go -package=mocks -mock_names=Resolver=MockMetadataResolver
type Resolver interface {
	// Resolve fetches and parses the metadata behind uri.
	// Already-resolved URIs are served from cache and never re-fetched.
	Resolve(ctx context.Context, uri string) (domain.Metadata, error)
}

type resolver struct {
	httpClient adapter.HTTPClient
	config     *Config
	cache      *lru.Cache[string, domain.Metadata]
}

// NewResolver creates a metadata resolver backed by the given HTTP client
func NewResolver(httpClient adapter.HTTPClient, config *Config) (Resolver, error) {
	cacheSize := config.CacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, domain.Metadata](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata cache: %w", err)
	}

	return &resolver{
		httpClient: httpClient,
		config:     config,
		cache:      cache,
	}, nil
}

func (r *resolver) Resolve(ctx context.Context, uri string) (domain.Metadata, error) {
	if cached, ok := r.cache.Get(uri); ok {
		return cached, nil
	}

	metadata, err := r.fetch(ctx, uri)
	if err != nil {
		return nil, err
	}

	r.cache.Add(uri, metadata)
	return metadata, nil
}

// fetch dispatches on the URI scheme
func (r *resolver) fetch(ctx context.Context, uri string) (domain.Metadata, error) {
	switch {
	case strings.HasPrefix(uri, "data:"):
		return r.parseDataURI(uri)
	case strings.HasPrefix(uri, "ipfs://"):
		return r.fetchFromIPFS(ctx, uri)
	case strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://"):
		return r.fetchFromHTTP(ctx, uri)
	default:
		return nil, fmt.Errorf("unsupported URI scheme: %s", uri)
	}
}

// parseDataURI parses an inline data URI
func (r *resolver) parseDataURI(uri string) (domain.Metadata, error) {
	// data:application/json;base64,<encoded data>
	// or data:application/json,<json data>
	parts := strings.SplitN(uri[5:], ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid data URI format")
	}

	dataType := parts[0]
	data := parts[1]

	if strings.Contains(dataType, "base64") {
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64: %w", err)
		}
		data = string(decoded)
	}

	var metadata domain.Metadata
	if err := json.Unmarshal([]byte(data), &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return metadata, nil
}

// fetchFromIPFS fetches metadata through the configured gateways in
// parallel, returning the first successful result
func (r *resolver) fetchFromIPFS(ctx context.Context, uri string) (domain.Metadata, error) {
	if len(r.config.IPFSGateways) == 0 {
		return nil, fmt.Errorf("no IPFS gateways configured")
	}

	cid := strings.TrimPrefix(uri, "ipfs://")

	type result struct {
		metadata domain.Metadata
		err      error
	}

	results := make(chan result, len(r.config.IPFSGateways))

	for _, gateway := range r.config.IPFSGateways {
		go func(gw string) {
			url := fmt.Sprintf("%s/ipfs/%s", gw, cid)
			metadata, err := r.fetchFromHTTP(ctx, url)
			results <- result{metadata: metadata, err: err}
		}(gateway)
	}

	for range r.config.IPFSGateways {
		res := <-results
		if res.err == nil {
			return res.metadata, nil
		}
		logger.DebugCtx(ctx, "IPFS gateway failed", zap.String("cid", cid), zap.Error(res.err))
	}

	return nil, fmt.Errorf("failed to fetch %s from all IPFS gateways", uri)
}

// fetchFromHTTP fetches metadata from an HTTP(S) URL
func (r *resolver) fetchFromHTTP(ctx context.Context, url string) (domain.Metadata, error) {
	var metadata domain.Metadata
	if err := r.httpClient.Get(ctx, url, &metadata); err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	return metadata, nil
}
