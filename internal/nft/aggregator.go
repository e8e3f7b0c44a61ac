package nft

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/openminter/nft-aggregator/internal/domain"
	"github.com/openminter/nft-aggregator/internal/fanout"
	"github.com/openminter/nft-aggregator/internal/hexstr"
	"github.com/openminter/nft-aggregator/internal/metadata"
	"github.com/openminter/nft-aggregator/internal/providers/tezos"
	"github.com/openminter/nft-aggregator/internal/schema"
)

// FA2 storage paths of the minter contracts this system targets.
const (
	LedgerPath        = "assets.ledger"
	TokenMetadataPath = "assets.token_metadata"
	AssetMetadataPath = "metadata"
)

// AggregatorConfig holds aggregation configuration.
type AggregatorConfig struct {
	// MarketplaceAddress is the fixed-price marketplace contract whose sales
	// are joined cross-contract onto tokens.
	MarketplaceAddress string
	// Workers bounds the per-token resolution fan-out.
	Workers int
}

// Aggregator joins ledger, token metadata and sale data for a contract into
// fully resolved Nft entities.
type Aggregator struct {
	tzkt     tezos.TzKTClient
	metadata metadata.Resolver
	config   AggregatorConfig
}

// NewAggregator creates an NFT aggregator.
func NewAggregator(tzkt tezos.TzKTClient, resolver metadata.Resolver, config AggregatorConfig) *Aggregator {
	return &Aggregator{
		tzkt:     tzkt,
		metadata: resolver,
		config:   config,
	}
}

// GetContractNfts returns every token of the contract with its metadata
// resolved, its current owner joined from the ledger, and any active
// fixed-price sale attached. This is the eager path: one token failing to
// resolve fails the whole call, so callers never see a partial listing.
func (a *Aggregator) GetContractNfts(ctx context.Context, address string) ([]domain.Nft, error) {
	var (
		ledger []schema.LedgerEntry
		tokens []schema.TokenMetadataEntry
		sales  []schema.FixedPriceSaleEntry
		errs   [3]error
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		ledger, errs[0] = a.getLedger(ctx, address)
	}()
	go func() {
		defer wg.Done()
		tokens, errs[1] = a.getTokenMetadata(ctx, address)
	}()
	go func() {
		defer wg.Done()
		sales, errs[2] = a.GetFixedPriceSales(ctx)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	activeSales := filterActiveSales(sales)

	return fanout.Map(ctx, a.config.Workers, fanout.Strict, tokens,
		func(ctx context.Context, token schema.TokenMetadataEntry) (domain.Nft, error) {
			return a.resolveToken(ctx, address, token, ledger, activeSales)
		})
}

// resolveToken builds one Nft. All join comparisons use the decimal-string
// token id; the id is parsed to an integer only for the ID field.
func (a *Aggregator) resolveToken(
	ctx context.Context,
	address string,
	token schema.TokenMetadataEntry,
	ledger []schema.LedgerEntry,
	activeSales []schema.FixedPriceSaleEntry,
) (domain.Nft, error) {
	tokenID := token.Value.TokenID

	decoded := make(domain.Metadata, len(token.Value.TokenInfo))
	for key, value := range token.Value.TokenInfo {
		decoded[key] = hexstr.Decode(value)
	}

	uri, _ := decoded[""].(string)
	resolved, err := a.metadata.Resolve(ctx, uri)
	if err != nil {
		return domain.Nft{}, fmt.Errorf("failed to resolve metadata for token %s: %w", tokenID, err)
	}
	merged := decoded.Merge(resolved)

	sale, err := JoinSale(activeSales, address, tokenID)
	if err != nil {
		return domain.Nft{}, err
	}

	id, err := strconv.ParseInt(tokenID, 10, 64)
	if err != nil {
		return domain.Nft{}, fmt.Errorf("invalid token id %q: %w", tokenID, err)
	}

	return domain.Nft{
		ID:          id,
		Title:       merged.Name(),
		Owner:       currentOwner(ledger, tokenID),
		Description: merged.Description(),
		ArtifactURI: merged.ArtifactURI(),
		Metadata:    merged,
		Sale:        sale,
	}, nil
}

// GetFixedPriceSales reads the marketplace sales big map. The marketplace
// contract stores the big-map id as its whole storage value.
func (a *Aggregator) GetFixedPriceSales(ctx context.Context) ([]schema.FixedPriceSaleEntry, error) {
	storage, err := a.tzkt.GetContractStorage(ctx, a.config.MarketplaceAddress)
	if err != nil {
		return nil, err
	}
	bigMapID, err := schema.ParseBigMapPointer(storage)
	if err != nil {
		return nil, err
	}

	raw, err := a.tzkt.GetBigMapKeys(ctx, bigMapID)
	if err != nil {
		return nil, err
	}
	return schema.ParseFixedPriceSaleResponse(raw)
}

func (a *Aggregator) getLedger(ctx context.Context, address string) ([]schema.LedgerEntry, error) {
	raw, err := a.tzkt.GetContractBigMapKeys(ctx, address, LedgerPath)
	if err != nil {
		return nil, err
	}
	return schema.ParseLedgerResponse(raw)
}

func (a *Aggregator) getTokenMetadata(ctx context.Context, address string) ([]schema.TokenMetadataEntry, error) {
	raw, err := a.tzkt.GetContractBigMapKeys(ctx, address, TokenMetadataPath)
	if err != nil {
		return nil, err
	}
	return schema.ParseTokenMetadataResponse(raw)
}

func filterActiveSales(sales []schema.FixedPriceSaleEntry) []schema.FixedPriceSaleEntry {
	active := make([]schema.FixedPriceSaleEntry, 0, len(sales))
	for _, sale := range sales {
		if sale.Active {
			active = append(active, sale)
		}
	}
	return active
}

// JoinSale finds the active sale for (address, tokenID) and converts it to a
// domain sale. Returns nil when no sale joins.
func JoinSale(activeSales []schema.FixedPriceSaleEntry, address, tokenID string) (*domain.Sale, error) {
	for _, sale := range activeSales {
		token := sale.Key.SaleToken
		if token.TokenForSaleAddress == address && token.TokenForSaleTokenID == tokenID {
			return SaleFromEntry(sale)
		}
	}
	return nil, nil
}

// SaleFromEntry converts a sale big-map entry into a domain sale, applying
// the six-decimal mutez fixed-point conversion.
func SaleFromEntry(sale schema.FixedPriceSaleEntry) (*domain.Sale, error) {
	mutez, err := strconv.ParseInt(sale.Value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid sale price %q: %w", sale.Value, err)
	}
	return &domain.Sale{
		ID:     sale.ID,
		Seller: sale.Key.SaleSeller,
		Price:  float64(mutez) / domain.MutezPerTez,
		Mutez:  mutez,
		Type:   domain.SaleTypeFixedPrice,
	}, nil
}

// currentOwner derives the owner of tokenID from the latest active ledger
// row; "" when no active row matches. Inactive rows are historical and never
// considered.
func currentOwner(ledger []schema.LedgerEntry, tokenID string) string {
	owner := ""
	lastLevel := int64(-1)
	for _, entry := range ledger {
		if !entry.Active || entry.Key != tokenID {
			continue
		}
		if entry.LastLevel > lastLevel {
			owner = entry.Value
			lastLevel = entry.LastLevel
		}
	}
	return owner
}
