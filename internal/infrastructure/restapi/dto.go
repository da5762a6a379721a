package restapi

import (
	"treasury_api/internal/domain/entity"
)

// APIResponse is the envelope of every portfolio response.
type APIResponse struct {
	Success    bool               `json:"success"`
	StatusCode int                `json:"statusCode"`
	Value      *PortfolioValueDTO `json:"value,omitempty"`
	Message    string             `json:"message,omitempty"`
}

// PortfolioValueDTO is the wire form of entity.PortfolioSnapshot.
type PortfolioValueDTO struct {
	TotalValueInUSD float64            `json:"totalValueInUSD"`
	Portfolio       []TreasuryTokenDTO `json:"portfolio"`
}

// TreasuryTokenDTO is the wire form of entity.TreasuryToken.
type TreasuryTokenDTO struct {
	Address           string  `json:"address"`
	ParentAddress     string  `json:"parentAddress"`
	Amount            float64 `json:"amount"`
	Decimals          int32   `json:"decimals"`
	Name              string  `json:"name"`
	Symbol            string  `json:"symbol"`
	Logo              string  `json:"logo"`
	Price             float64 `json:"price"`
	Value             float64 `json:"value"`
	PercentOfHoldings string  `json:"percentOfHoldings"`
}

// NewPortfolioValue converts a snapshot into its wire form.
func NewPortfolioValue(snapshot *entity.PortfolioSnapshot) *PortfolioValueDTO {
	value := &PortfolioValueDTO{
		TotalValueInUSD: snapshot.TotalValueInUSD.InexactFloat64(),
		Portfolio:       make([]TreasuryTokenDTO, 0, len(snapshot.Portfolio)),
	}
	for _, t := range snapshot.Portfolio {
		value.Portfolio = append(value.Portfolio, TreasuryTokenDTO{
			Address:           t.Address,
			ParentAddress:     t.ParentAddress,
			Amount:            t.Amount.InexactFloat64(),
			Decimals:          t.Decimals,
			Name:              t.Name,
			Symbol:            t.Symbol,
			Logo:              t.Logo,
			Price:             t.Price.InexactFloat64(),
			Value:             t.Value.InexactFloat64(),
			PercentOfHoldings: t.PercentOfHoldings,
		})
	}
	return value
}

func newSuccessResponse(snapshot *entity.PortfolioSnapshot) APIResponse {
	return APIResponse{Success: true, StatusCode: 200, Value: NewPortfolioValue(snapshot)}
}

func newErrorResponse(message string) APIResponse {
	return APIResponse{Success: false, StatusCode: 500, Message: message}
}
