package contracts

import (
	"context"
	"fmt"

	"github.com/openminter/nft-aggregator/internal/domain"
	"github.com/openminter/nft-aggregator/internal/fanout"
	"github.com/openminter/nft-aggregator/internal/providers/tezos"
	"github.com/openminter/nft-aggregator/internal/schema"
)

// MinterContractName is the display name of the well-known minter contract.
const MinterContractName = "Minter"

// NameResolverConfig holds the well-known contract addresses the resolver
// works from.
type NameResolverConfig struct {
	// FactoryAddress is the contract factory to enumerate.
	FactoryAddress string
	// MinterAddress is the well-known minter contract, always part of the
	// result set when the factory is recognized.
	MinterAddress string
	// Workers bounds the nft-owner filter fan-out.
	Workers int
}

// NameResolver enumerates the contracts deployed by a factory, optionally
// filtered by declared owner and by ledger-derived NFT ownership.
type NameResolver struct {
	tzkt   tezos.TzKTClient
	config NameResolverConfig
}

// NewNameResolver creates a contract name resolver.
func NewNameResolver(tzkt tezos.TzKTClient, config NameResolverConfig) *NameResolver {
	return &NameResolver{
		tzkt:   tzkt,
		config: config,
	}
}

// ResolveNames lists the contract identities reachable from the configured
// factory. A nil ownerFilter keeps every registry entry; a non-nil one keeps
// entries whose declared owner matches exactly. A non-nil nftOwnerFilter
// additionally keeps only contracts whose ledger contains that address as an
// owner. Both filters compose conjunctively.
func (r *NameResolver) ResolveNames(ctx context.Context, ownerFilter, nftOwnerFilter *string) ([]domain.ContractIdentifier, error) {
	raw, err := r.tzkt.GetContract(ctx, r.config.FactoryAddress)
	if err != nil {
		return nil, err
	}

	minter := domain.ContractIdentifier{Address: r.config.MinterAddress, Name: MinterContractName}

	switch factory := Classify(raw).(type) {
	case GenericContract:
		return []domain.ContractIdentifier{}, nil

	case FA2Contract:
		return []domain.ContractIdentifier{minter}, nil

	case FA2FactoryContract:
		rawKeys, err := r.tzkt.GetBigMapKeys(ctx, factory.RegistryBigMapID)
		if err != nil {
			return nil, err
		}
		entries, err := schema.ParseContractRegistryResponse(rawKeys)
		if err != nil {
			return nil, err
		}

		identifiers := []domain.ContractIdentifier{minter}
		for _, entry := range entries {
			if ownerFilter != nil && entry.Value.Owner != *ownerFilter {
				continue
			}
			identifiers = append(identifiers, domain.ContractIdentifier{
				Address: entry.Key,
				Name:    entry.Value.Name,
			})
		}

		if nftOwnerFilter == nil {
			return identifiers, nil
		}
		return r.filterByNftOwner(ctx, identifiers, *nftOwnerFilter)
	}

	return nil, fmt.Errorf("unhandled contract variant for %s", raw.Address)
}

// filterByNftOwner keeps the candidates whose FA2 ledger lists nftOwner among
// its owner addresses. Candidates are inspected concurrently; a candidate
// whose reads fail is excluded rather than aborting the resolution.
func (r *NameResolver) filterByNftOwner(ctx context.Context, candidates []domain.ContractIdentifier, nftOwner string) ([]domain.ContractIdentifier, error) {
	type ownedCandidate struct {
		identifier domain.ContractIdentifier
		owners     map[string]struct{}
	}

	inspected, err := fanout.Map(ctx, r.config.Workers, fanout.BestEffort, candidates,
		func(ctx context.Context, candidate domain.ContractIdentifier) (ownedCandidate, error) {
			owners, err := r.contractNftOwners(ctx, candidate.Address)
			if err != nil {
				return ownedCandidate{}, err
			}
			return ownedCandidate{identifier: candidate, owners: owners}, nil
		})
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.ContractIdentifier, 0, len(inspected))
	for _, candidate := range inspected {
		if _, ok := candidate.owners[nftOwner]; ok {
			filtered = append(filtered, candidate.identifier)
		}
	}
	return filtered, nil
}

// contractNftOwners collects the distinct owner addresses in a contract's
// FA2 ledger. Non-FA2 contracts contribute an empty owner set.
func (r *NameResolver) contractNftOwners(ctx context.Context, address string) (map[string]struct{}, error) {
	raw, err := r.tzkt.GetContract(ctx, address)
	if err != nil {
		return nil, err
	}

	fa2, ok := Classify(raw).(FA2Contract)
	if !ok {
		return map[string]struct{}{}, nil
	}

	rawKeys, err := r.tzkt.GetBigMapKeys(ctx, fa2.LedgerBigMapID)
	if err != nil {
		return nil, err
	}
	entries, err := schema.ParseLedgerResponse(rawKeys)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		owners[entry.Value] = struct{}{}
	}
	return owners, nil
}
