package schema

import (
	"encoding/json"
	"fmt"

	"github.com/openminter/nft-aggregator/internal/domain"
)

// TokenMetadataUpdate is one add_key event on a token_metadata big map,
// flattened to what the marketplace listing join needs. TokenID is
// normalized to its decimal-string form: the indexer reports it as a JSON
// number on this endpoint while sale keys carry it as a string.
type TokenMetadataUpdate struct {
	Contract  string
	TokenID   string
	TokenInfo map[string]string
}

type bigMapUpdateContractWire struct {
	Address *string `json:"address" validate:"required"`
}

type tokenMetadataUpdateValueWire struct {
	TokenID   *json.Number      `json:"token_id" validate:"required"`
	TokenInfo map[string]string `json:"token_info" validate:"required"`
}

type tokenMetadataUpdateContentWire struct {
	Value *tokenMetadataUpdateValueWire `json:"value" validate:"required"`
}

type tokenMetadataUpdateWire struct {
	Contract *bigMapUpdateContractWire       `json:"contract" validate:"required"`
	Content  *tokenMetadataUpdateContentWire `json:"content" validate:"required"`
}

// ParseTokenMetadataUpdates validates a batch of token_metadata add_key
// events.
func ParseTokenMetadataUpdates(raw json.RawMessage) ([]TokenMetadataUpdate, error) {
	var wire []tokenMetadataUpdateWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, domain.NewValidationError(SourceTokenMetadataUpdates, err)
	}

	updates := make([]TokenMetadataUpdate, len(wire))
	for i := range wire {
		w := &wire[i]
		if err := validate.Struct(w); err != nil {
			return nil, domain.NewValidationError(SourceTokenMetadataUpdates, fmt.Errorf("event %d: %w", i, err))
		}
		updates[i] = TokenMetadataUpdate{
			Contract:  *w.Contract.Address,
			TokenID:   w.Content.Value.TokenID.String(),
			TokenInfo: w.Content.Value.TokenInfo,
		}
	}
	return updates, nil
}

// AssetMetadataUpdate is one add_key event on a contract metadata big map.
// Value holds a hex-encoded metadata URI.
type AssetMetadataUpdate struct {
	Contract string
	Key      string
	Value    string
}

type assetMetadataUpdateContentWire struct {
	Key   *string `json:"key" validate:"required"`
	Value *string `json:"value" validate:"required"`
}

type assetMetadataUpdateWire struct {
	Contract *bigMapUpdateContractWire       `json:"contract" validate:"required"`
	Content  *assetMetadataUpdateContentWire `json:"content" validate:"required"`
}

// ParseAssetMetadataUpdates validates a batch of contract metadata add_key
// events.
func ParseAssetMetadataUpdates(raw json.RawMessage) ([]AssetMetadataUpdate, error) {
	var wire []assetMetadataUpdateWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, domain.NewValidationError(SourceAssetMetadataUpdates, err)
	}

	updates := make([]AssetMetadataUpdate, len(wire))
	for i := range wire {
		w := &wire[i]
		if err := validate.Struct(w); err != nil {
			return nil, domain.NewValidationError(SourceAssetMetadataUpdates, fmt.Errorf("event %d: %w", i, err))
		}
		updates[i] = AssetMetadataUpdate{
			Contract: *w.Contract.Address,
			Key:      *w.Content.Key,
			Value:    *w.Content.Value,
		}
	}
	return updates, nil
}
