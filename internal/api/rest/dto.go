package rest

import (
	"strconv"

	"github.com/openminter/nft-aggregator/internal/domain"
	"github.com/openminter/nft-aggregator/internal/marketplace"
)

// ListingDTO is the wire form of a marketplace listing. Token and Error are
// only populated once the listing has been resolved.
type ListingDTO struct {
	SaleID        int64       `json:"saleId"`
	Seller        string      `json:"seller"`
	TokenAddress  string      `json:"tokenAddress"`
	TokenID       string      `json:"tokenId"`
	Price         float64     `json:"price"`
	Mutez         int64       `json:"mutez"`
	TokenMetadata string      `json:"tokenMetadata,omitempty"`
	Loaded        bool        `json:"loaded"`
	Token         *domain.Nft `json:"token,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// toListingDTO maps a listing record to its wire form.
func toListingDTO(l *marketplace.Listing) ListingDTO {
	sale := l.TokenSale
	dto := ListingDTO{
		SaleID:        sale.ID,
		Seller:        sale.Key.SaleSeller,
		TokenAddress:  sale.Key.SaleToken.TokenForSaleAddress,
		TokenID:       sale.Key.SaleToken.TokenForSaleTokenID,
		TokenMetadata: l.TokenMetadata,
		Loaded:        l.Loaded(),
		Token:         l.Token,
	}

	if mutez, err := strconv.ParseInt(sale.Value, 10, 64); err == nil {
		dto.Mutez = mutez
		dto.Price = float64(mutez) / domain.MutezPerTez
	}

	if l.Err != nil {
		dto.Error = l.Err.Error()
	}

	return dto
}
