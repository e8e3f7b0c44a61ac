// Package schema validates the loosely typed TzKT responses this system
// consumes. Each Parse function checks the whole batch structurally and fails
// together: a single malformed row rejects the response with a
// domain.ValidationError naming the response kind. Best-effort decoding of
// individual rows is deliberately not supported at this layer.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/openminter/nft-aggregator/internal/domain"
)

// Response source names used in validation errors.
const (
	SourceLedger               = "ledger"
	SourceTokenMetadata        = "token-metadata"
	SourceAssetMetadata        = "asset-metadata"
	SourceFixedPriceSale       = "fixed-price-sale"
	SourceContractRegistry     = "contract-registry"
	SourceTokenMetadataUpdates = "token-metadata-updates"
	SourceAssetMetadataUpdates = "asset-metadata-updates"
)

var validate = validator.New()

// LedgerEntry is one token-ownership record. Key is the decimal-string token
// id and Value the owner address. Inactive entries are historical.
type LedgerEntry struct {
	ID         int64
	Active     bool
	Hash       string
	Key        string
	Value      string
	FirstLevel int64
	LastLevel  int64
	Updates    int64
}

// AssetMetadataEntry shares the ledger envelope; Value holds a hex-encoded
// metadata URI.
type AssetMetadataEntry = LedgerEntry

// ledgerEntryWire carries every required field as a pointer so that absence
// is distinguishable from a zero value (active=false is a legal row).
type ledgerEntryWire struct {
	ID         *int64  `json:"id" validate:"required"`
	Active     *bool   `json:"active" validate:"required"`
	Hash       *string `json:"hash" validate:"required"`
	Key        *string `json:"key" validate:"required"`
	Value      *string `json:"value" validate:"required"`
	FirstLevel *int64  `json:"firstLevel" validate:"required"`
	LastLevel  *int64  `json:"lastLevel" validate:"required"`
	Updates    *int64  `json:"updates" validate:"required"`
}

func (w *ledgerEntryWire) entry() LedgerEntry {
	return LedgerEntry{
		ID:         *w.ID,
		Active:     *w.Active,
		Hash:       *w.Hash,
		Key:        *w.Key,
		Value:      *w.Value,
		FirstLevel: *w.FirstLevel,
		LastLevel:  *w.LastLevel,
		Updates:    *w.Updates,
	}
}

func parseLedgerShaped(raw json.RawMessage, source string) ([]LedgerEntry, error) {
	var wire []ledgerEntryWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, domain.NewValidationError(source, err)
	}

	entries := make([]LedgerEntry, len(wire))
	for i := range wire {
		if err := validate.Struct(&wire[i]); err != nil {
			return nil, domain.NewValidationError(source, fmt.Errorf("entry %d: %w", i, err))
		}
		entries[i] = wire[i].entry()
	}
	return entries, nil
}

// ParseLedgerResponse validates a ledger big-map response.
func ParseLedgerResponse(raw json.RawMessage) ([]LedgerEntry, error) {
	return parseLedgerShaped(raw, SourceLedger)
}

// ParseAssetMetadataResponse validates a contract metadata big-map response.
func ParseAssetMetadataResponse(raw json.RawMessage) ([]AssetMetadataEntry, error) {
	return parseLedgerShaped(raw, SourceAssetMetadata)
}

// TokenMetadataValue is the FA2 token_metadata big-map value. TokenInfo maps
// arbitrary keys to hex-encoded byte strings; the canonical "" key holds the
// metadata URI.
type TokenMetadataValue struct {
	TokenID   string
	TokenInfo map[string]string
}

// TokenMetadataEntry is one token_metadata big-map row.
type TokenMetadataEntry struct {
	ID         int64
	Active     bool
	Hash       string
	Key        string
	Value      TokenMetadataValue
	FirstLevel int64
	LastLevel  int64
	Updates    int64
}

type tokenMetadataValueWire struct {
	TokenID   *string           `json:"token_id" validate:"required"`
	TokenInfo map[string]string `json:"token_info" validate:"required"`
}

type tokenMetadataEntryWire struct {
	ID         *int64                  `json:"id" validate:"required"`
	Active     *bool                   `json:"active" validate:"required"`
	Hash       *string                 `json:"hash" validate:"required"`
	Key        *string                 `json:"key" validate:"required"`
	Value      *tokenMetadataValueWire `json:"value" validate:"required"`
	FirstLevel *int64                  `json:"firstLevel" validate:"required"`
	LastLevel  *int64                  `json:"lastLevel" validate:"required"`
	Updates    *int64                  `json:"updates" validate:"required"`
}

// ParseTokenMetadataResponse validates a token_metadata big-map response.
func ParseTokenMetadataResponse(raw json.RawMessage) ([]TokenMetadataEntry, error) {
	var wire []tokenMetadataEntryWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, domain.NewValidationError(SourceTokenMetadata, err)
	}

	entries := make([]TokenMetadataEntry, len(wire))
	for i := range wire {
		w := &wire[i]
		if err := validate.Struct(w); err != nil {
			return nil, domain.NewValidationError(SourceTokenMetadata, fmt.Errorf("entry %d: %w", i, err))
		}
		if _, ok := w.Value.TokenInfo[""]; !ok {
			return nil, domain.NewValidationError(SourceTokenMetadata, fmt.Errorf(`entry %d: token_info missing "" key`, i))
		}
		entries[i] = TokenMetadataEntry{
			ID:     *w.ID,
			Active: *w.Active,
			Hash:   *w.Hash,
			Key:    *w.Key,
			Value: TokenMetadataValue{
				TokenID:   *w.Value.TokenID,
				TokenInfo: w.Value.TokenInfo,
			},
			FirstLevel: *w.FirstLevel,
			LastLevel:  *w.LastLevel,
			Updates:    *w.Updates,
		}
	}
	return entries, nil
}

// SaleToken identifies the token a sale offers, by its composite natural key.
// Both fields are compared as strings, never as numbers.
type SaleToken struct {
	TokenForSaleAddress string
	TokenForSaleTokenID string
}

// SaleKey is the fixed-price sale big-map key.
type SaleKey struct {
	SaleToken  SaleToken
	SaleSeller string
}

// FixedPriceSaleEntry is one marketplace sale row; Value is the price in
// mutez as a decimal string.
type FixedPriceSaleEntry struct {
	ID         int64
	Active     bool
	Hash       string
	Key        SaleKey
	Value      string
	FirstLevel int64
	LastLevel  int64
	Updates    int64
}

type saleTokenWire struct {
	TokenForSaleAddress *string `json:"token_for_sale_address" validate:"required"`
	TokenForSaleTokenID *string `json:"token_for_sale_token_id" validate:"required"`
}

type saleKeyWire struct {
	SaleToken  *saleTokenWire `json:"sale_token" validate:"required"`
	SaleSeller *string        `json:"sale_seller" validate:"required"`
}

type fixedPriceSaleEntryWire struct {
	ID         *int64       `json:"id" validate:"required"`
	Active     *bool        `json:"active" validate:"required"`
	Hash       *string      `json:"hash" validate:"required"`
	Key        *saleKeyWire `json:"key" validate:"required"`
	Value      *string      `json:"value" validate:"required"`
	FirstLevel *int64       `json:"firstLevel" validate:"required"`
	LastLevel  *int64       `json:"lastLevel" validate:"required"`
	Updates    *int64       `json:"updates" validate:"required"`
}

// ParseFixedPriceSaleResponse validates a fixed-price sale big-map response.
func ParseFixedPriceSaleResponse(raw json.RawMessage) ([]FixedPriceSaleEntry, error) {
	var wire []fixedPriceSaleEntryWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, domain.NewValidationError(SourceFixedPriceSale, err)
	}

	entries := make([]FixedPriceSaleEntry, len(wire))
	for i := range wire {
		w := &wire[i]
		if err := validate.Struct(w); err != nil {
			return nil, domain.NewValidationError(SourceFixedPriceSale, fmt.Errorf("entry %d: %w", i, err))
		}
		entries[i] = FixedPriceSaleEntry{
			ID:     *w.ID,
			Active: *w.Active,
			Hash:   *w.Hash,
			Key: SaleKey{
				SaleToken: SaleToken{
					TokenForSaleAddress: *w.Key.SaleToken.TokenForSaleAddress,
					TokenForSaleTokenID: *w.Key.SaleToken.TokenForSaleTokenID,
				},
				SaleSeller: *w.Key.SaleSeller,
			},
			Value:      *w.Value,
			FirstLevel: *w.FirstLevel,
			LastLevel:  *w.LastLevel,
			Updates:    *w.Updates,
		}
	}
	return entries, nil
}

// ParseBigMapPointer validates a contract storage value that is expected to
// be a bare big-map id, as the fixed-price marketplace stores its sales map.
func ParseBigMapPointer(raw json.RawMessage) (int64, error) {
	var id *int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, domain.NewValidationError(SourceFixedPriceSale, fmt.Errorf("big-map id: %w", err))
	}
	if id == nil {
		return 0, domain.NewValidationError(SourceFixedPriceSale, fmt.Errorf("big-map id: null storage"))
	}
	return *id, nil
}

// ContractRegistryValue is the factory registry big-map value.
type ContractRegistryValue struct {
	Owner string
	Name  string
}

// ContractRegistryEntry maps a deployed child contract address to its
// declared owner and display name.
type ContractRegistryEntry struct {
	Key   string
	Value ContractRegistryValue
}

type contractRegistryValueWire struct {
	Owner *string `json:"owner" validate:"required"`
	Name  *string `json:"name" validate:"required"`
}

type contractRegistryEntryWire struct {
	Key   *string                    `json:"key" validate:"required"`
	Value *contractRegistryValueWire `json:"value" validate:"required"`
}

// ParseContractRegistryResponse validates a factory registry big-map response.
func ParseContractRegistryResponse(raw json.RawMessage) ([]ContractRegistryEntry, error) {
	var wire []contractRegistryEntryWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, domain.NewValidationError(SourceContractRegistry, err)
	}

	entries := make([]ContractRegistryEntry, len(wire))
	for i := range wire {
		w := &wire[i]
		if err := validate.Struct(w); err != nil {
			return nil, domain.NewValidationError(SourceContractRegistry, fmt.Errorf("entry %d: %w", i, err))
		}
		entries[i] = ContractRegistryEntry{
			Key: *w.Key,
			Value: ContractRegistryValue{
				Owner: *w.Value.Owner,
				Name:  *w.Value.Name,
			},
		}
	}
	return entries, nil
}
