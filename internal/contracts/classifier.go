package contracts

import (
	"github.com/openminter/nft-aggregator/internal/providers/tezos"
)

// Big-map storage paths that discriminate contract kinds.
const (
	registryBigMapPath = "contracts"
	ledgerBigMapPath   = "assets.ledger"
	// Some FA2 contracts expose the ledger at the storage root.
	bareLedgerBigMapPath = "ledger"
)

// Contract is the closed set of contract variants this system distinguishes.
// Callers switch on the concrete type and must handle all three variants;
// the unexported method keeps the set closed so a new variant is a
// compile-time-visible change.
type Contract interface {
	contractVariant()
}

// GenericContract is a contract with no recognized big-map layout.
type GenericContract struct {
	Address string
}

// FA2Contract is a token contract exposing an FA2 ledger big map.
type FA2Contract struct {
	Address        string
	LedgerBigMapID int64
}

// FA2FactoryContract is a factory exposing a registry big map of deployed
// child contracts.
type FA2FactoryContract struct {
	Address          string
	RegistryBigMapID int64
}

func (GenericContract) contractVariant()    {}
func (FA2Contract) contractVariant()        {}
func (FA2FactoryContract) contractVariant() {}

// Classify discriminates a fetched contract descriptor into exactly one
// variant. A factory registry takes precedence over a ledger; a contract
// exposing neither is generic.
func Classify(raw *tezos.Contract) Contract {
	if id, ok := raw.BigMaps[registryBigMapPath]; ok {
		return FA2FactoryContract{Address: raw.Address, RegistryBigMapID: id}
	}
	if id, ok := raw.BigMaps[ledgerBigMapPath]; ok {
		return FA2Contract{Address: raw.Address, LedgerBigMapID: id}
	}
	if id, ok := raw.BigMaps[bareLedgerBigMapPath]; ok {
		return FA2Contract{Address: raw.Address, LedgerBigMapID: id}
	}
	return GenericContract{Address: raw.Address}
}
