package domain

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// SaleTypeFixedPrice is the only sale kind the marketplace contract emits.
const SaleTypeFixedPrice = "fixedPrice"

// MutezPerTez is the fixed-point scale of on-chain prices.
const MutezPerTez = 1_000_000

// ContractIdentifier names a token contract. It is recomputed per query and
// never persisted.
type ContractIdentifier struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Metadata is an open record of token or collection metadata. Recognized
// fields are read through the accessors below; unknown fields are carried
// along untouched so that merging never loses information.
type Metadata map[string]any

func (m Metadata) stringField(key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// Name returns the metadata name field, or "" if absent.
func (m Metadata) Name() string { return m.stringField("name") }

// Description returns the metadata description field, or "" if absent.
func (m Metadata) Description() string { return m.stringField("description") }

// ArtifactURI returns the metadata artifactUri field, or "" if absent.
func (m Metadata) ArtifactURI() string { return m.stringField("artifactUri") }

// Hash returns the SHA-256 digest of the JCS-canonicalized metadata.
// Equal metadata hashes equally regardless of key order, which makes the
// digest usable as an HTTP ETag.
func (m Metadata) Hash() ([]byte, error) {
	metadataJSON, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	canonical, err := jcs.Transform(metadataJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize metadata: %w", err)
	}

	hash := sha256.Sum256(canonical)
	return hash[:], nil
}

// Merge returns a new Metadata holding the keys of m overlaid with those of
// other. Keys present in both take other's value.
func (m Metadata) Merge(other Metadata) Metadata {
	merged := make(Metadata, len(m)+len(other))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Sale describes an active fixed-price listing joined to a token.
type Sale struct {
	ID     int64   `json:"id"`
	Seller string  `json:"seller"`
	Price  float64 `json:"price"`
	Mutez  int64   `json:"mutez"`
	Type   string  `json:"type"`
}

// Nft is the fully reconciled token entity.
//
// Owner comes from the latest active ledger row for the token id and is ""
// when no ledger row matches. Sale is nil unless an active fixed-price sale
// joins to this token. Address is only set on marketplace-resolved tokens.
type Nft struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Owner       string   `json:"owner"`
	Description string   `json:"description"`
	ArtifactURI string   `json:"artifactUri"`
	Metadata    Metadata `json:"metadata"`
	Sale        *Sale    `json:"sale,omitempty"`
	Address     string   `json:"address,omitempty"`
}

// AssetContract is collection-level contract identity, independent of any
// individual token.
type AssetContract struct {
	Address  string   `json:"address"`
	Metadata Metadata `json:"metadata"`
}
