// Package marketplace implements the two-phase listing pipeline: a cheap
// list phase producing lightweight stubs for every active sale, and an
// on-demand resolve phase turning one stub into a full Nft. The split exists
// because a marketplace view must render many listings quickly without
// blocking on every metadata fetch.
package marketplace

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/openminter/nft-aggregator/internal/domain"
	"github.com/openminter/nft-aggregator/internal/hexstr"
	"github.com/openminter/nft-aggregator/internal/metadata"
	"github.com/openminter/nft-aggregator/internal/nft"
	"github.com/openminter/nft-aggregator/internal/providers/tezos"
	"github.com/openminter/nft-aggregator/internal/schema"
)

// ListingState is the lifecycle of a listing record. Transitions are
// one-way: Pending -> Resolving -> Resolved | Failed.
type ListingState int32

const (
	// ListingPending is an unclaimed stub.
	ListingPending ListingState = iota
	// ListingResolving is claimed by a resolution in flight.
	ListingResolving
	// ListingResolved carries a fully built token.
	ListingResolved
	// ListingFailed carries a resolution error; the record stays claimed and
	// never retries itself. Callers retry by re-fetching a fresh stub.
	ListingFailed
)

// Listing is one marketplace sale with lazily resolved token data. The state
// word is the claim token: the first Resolve call on a record wins it, every
// later call is a no-op.
type Listing struct {
	state atomic.Int32

	// TokenSale is the sale row this listing renders.
	TokenSale schema.FixedPriceSaleEntry
	// TokenMetadata is the decoded metadata URI, "" when no token-metadata
	// row matched the sale.
	TokenMetadata string
	// Token is set once the listing is resolved.
	Token *domain.Nft
	// Err is set when resolution failed.
	Err error
}

// State returns the listing's lifecycle state.
func (l *Listing) State() ListingState {
	return ListingState(l.state.Load())
}

// Loaded reports whether the record has been claimed by a resolution,
// successful or not.
func (l *Listing) Loaded() bool {
	return l.State() != ListingPending
}

// SaleSource provides the marketplace's fixed-price sale rows.
type SaleSource interface {
	GetFixedPriceSales(ctx context.Context) ([]schema.FixedPriceSaleEntry, error)
}

// Pipeline produces listing stubs and resolves them on demand.
type Pipeline struct {
	tzkt     tezos.TzKTClient
	metadata metadata.Resolver
	sales    SaleSource
}

// NewPipeline creates a marketplace listing pipeline.
func NewPipeline(tzkt tezos.TzKTClient, resolver metadata.Resolver, sales SaleSource) *Pipeline {
	return &Pipeline{
		tzkt:     tzkt,
		metadata: resolver,
		sales:    sales,
	}
}

// ListActiveSales returns a stub for every active sale, newest first. Each
// stub carries the sale row and, when a token-metadata event for the sale's
// (address, token id) key exists, the decoded metadata URI. No metadata URI
// is resolved here.
func (p *Pipeline) ListActiveSales(ctx context.Context) ([]*Listing, error) {
	sales, err := p.sales.GetFixedPriceSales(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]schema.FixedPriceSaleEntry, 0, len(sales))
	addresses := make([]string, 0, len(sales))
	seen := make(map[string]struct{})
	for _, sale := range sales {
		if !sale.Active {
			continue
		}
		active = append(active, sale)
		address := sale.Key.SaleToken.TokenForSaleAddress
		if _, ok := seen[address]; !ok {
			seen[address] = struct{}{}
			addresses = append(addresses, address)
		}
	}
	if len(active) == 0 {
		return []*Listing{}, nil
	}

	raw, err := p.tzkt.GetBigMapUpdates(ctx, tezos.BigMapUpdatesFilter{
		Path:      nft.TokenMetadataPath,
		Action:    "add_key",
		Contracts: addresses,
	})
	if err != nil {
		return nil, err
	}
	updates, err := schema.ParseTokenMetadataUpdates(raw)
	if err != nil {
		return nil, err
	}

	// Newest sales first
	listings := make([]*Listing, 0, len(active))
	for i := len(active) - 1; i >= 0; i-- {
		sale := active[i]
		listing := &Listing{TokenSale: sale}
		if update := matchUpdate(updates, sale); update != nil {
			if info, ok := update.TokenInfo[""]; ok {
				listing.TokenMetadata = hexstr.Decode(info)
			}
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// matchUpdate finds the token-metadata event joining to the sale's composite
// (address, token id) key. Token ids compare as strings.
func matchUpdate(updates []schema.TokenMetadataUpdate, sale schema.FixedPriceSaleEntry) *schema.TokenMetadataUpdate {
	token := sale.Key.SaleToken
	for i := range updates {
		if updates[i].Contract == token.TokenForSaleAddress && updates[i].TokenID == token.TokenForSaleTokenID {
			return &updates[i]
		}
	}
	return nil
}

// Resolve turns a stub into a full listing. The call is idempotent: only the
// caller that wins the Pending->Resolving transition performs work, every
// other call returns the record as-is. A failed resolution leaves the record
// claimed with Err set and returns the error; the record never retries
// itself.
func (p *Pipeline) Resolve(ctx context.Context, listing *Listing) (*Listing, error) {
	if !listing.state.CompareAndSwap(int32(ListingPending), int32(ListingResolving)) {
		return listing, nil
	}

	token, err := p.buildToken(ctx, listing)
	if err != nil {
		listing.Err = err
		listing.state.Store(int32(ListingFailed))
		return listing, err
	}

	listing.Token = token
	listing.state.Store(int32(ListingResolved))
	return listing, nil
}

func (p *Pipeline) buildToken(ctx context.Context, listing *Listing) (*domain.Nft, error) {
	saleToken := listing.TokenSale.Key.SaleToken

	if listing.TokenMetadata == "" {
		return nil, domain.NewMissingDataError("token metadata", fmt.Sprintf("sale of %s token %s", saleToken.TokenForSaleAddress, saleToken.TokenForSaleTokenID))
	}

	sale, err := nft.SaleFromEntry(listing.TokenSale)
	if err != nil {
		return nil, err
	}

	id, err := strconv.ParseInt(saleToken.TokenForSaleTokenID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid token id %q: %w", saleToken.TokenForSaleTokenID, err)
	}

	resolved, err := p.metadata.Resolve(ctx, listing.TokenMetadata)
	if err != nil {
		return nil, err
	}

	// Marketplace listings report the seller as current holder; no ledger
	// lookup happens on this path.
	return &domain.Nft{
		ID:          id,
		Title:       resolved.Name(),
		Owner:       sale.Seller,
		Description: resolved.Description(),
		ArtifactURI: resolved.ArtifactURI(),
		Metadata:    resolved,
		Sale:        sale,
		Address:     saleToken.TokenForSaleAddress,
	}, nil
}
