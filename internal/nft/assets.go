package nft

import (
	"context"
	"fmt"

	"github.com/openminter/nft-aggregator/internal/domain"
	"github.com/openminter/nft-aggregator/internal/fanout"
	"github.com/openminter/nft-aggregator/internal/hexstr"
	"github.com/openminter/nft-aggregator/internal/metadata"
	"github.com/openminter/nft-aggregator/internal/providers/tezos"
	"github.com/openminter/nft-aggregator/internal/schema"
)

// assetContractKind is the indexer's kind tag for token contracts.
const assetContractKind = "asset"

// AssetContractResolver resolves collection-level contract metadata.
type AssetContractResolver struct {
	tzkt     tezos.TzKTClient
	metadata metadata.Resolver
	workers  int
}

// NewAssetContractResolver creates an asset contract resolver.
func NewAssetContractResolver(tzkt tezos.TzKTClient, resolver metadata.Resolver, workers int) *AssetContractResolver {
	return &AssetContractResolver{
		tzkt:     tzkt,
		metadata: resolver,
		workers:  workers,
	}
}

// ResolveAssetContract resolves one contract's collection metadata from its
// metadata big map. The empty-string key holds the metadata URI; its absence
// and a result without a name are both failures.
func (r *AssetContractResolver) ResolveAssetContract(ctx context.Context, address string) (*domain.AssetContract, error) {
	raw, err := r.tzkt.GetContractBigMapKeys(ctx, address, AssetMetadataPath)
	if err != nil {
		return nil, err
	}
	entries, err := schema.ParseAssetMetadataResponse(raw)
	if err != nil {
		return nil, err
	}

	metaURI := ""
	for _, entry := range entries {
		if entry.Key == "" {
			metaURI = entry.Value
			break
		}
	}
	if metaURI == "" {
		return nil, domain.NewMissingDataError("metadata URI", address)
	}

	resolved, err := r.metadata.Resolve(ctx, hexstr.Decode(metaURI))
	if err != nil {
		return nil, err
	}
	if _, ok := resolved["name"].(string); !ok {
		return nil, domain.NewValidationError(schema.SourceAssetMetadata, fmt.Errorf("metadata of %s has no name", address))
	}

	return &domain.AssetContract{Address: address, Metadata: resolved}, nil
}

// ResolveWalletAssetContracts resolves the collection metadata of every
// asset contract related to a wallet. This path is best-effort over many
// independent contracts: a contract whose metadata fails to resolve is
// logged and skipped, never failing the batch.
func (r *AssetContractResolver) ResolveWalletAssetContracts(ctx context.Context, walletAddress string) ([]domain.AssetContract, error) {
	accountContracts, err := r.tzkt.GetAccountContracts(ctx, walletAddress)
	if err != nil {
		return nil, err
	}

	addresses := make([]string, 0, len(accountContracts))
	for _, contract := range accountContracts {
		if contract.Kind == assetContractKind {
			addresses = append(addresses, contract.Address)
		}
	}
	if len(addresses) == 0 {
		return []domain.AssetContract{}, nil
	}

	raw, err := r.tzkt.GetBigMapUpdates(ctx, tezos.BigMapUpdatesFilter{
		Path:      AssetMetadataPath,
		Action:    "add_key",
		Contracts: addresses,
	})
	if err != nil {
		return nil, err
	}
	updates, err := schema.ParseAssetMetadataUpdates(raw)
	if err != nil {
		return nil, err
	}

	rows := make([]schema.AssetMetadataUpdate, 0, len(updates))
	for _, update := range updates {
		if update.Key == "" {
			rows = append(rows, update)
		}
	}

	return fanout.Map(ctx, r.workers, fanout.BestEffort, rows,
		func(ctx context.Context, row schema.AssetMetadataUpdate) (domain.AssetContract, error) {
			resolved, err := r.metadata.Resolve(ctx, hexstr.Decode(row.Value))
			if err != nil {
				return domain.AssetContract{}, fmt.Errorf("failed to resolve metadata of %s: %w", row.Contract, err)
			}
			return domain.AssetContract{Address: row.Contract, Metadata: resolved}, nil
		})
}
