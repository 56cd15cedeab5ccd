package services

import (
	"github.com/shopspring/decimal"

	"invoiceBack/internal/models"
)

// ComputeTotal sums line prices in decimal so 0.1 + 0.2 stays 0.3.
func ComputeTotal(services []models.Service) float64 {
	total := decimal.Zero
	for _, s := range services {
		total = total.Add(decimal.NewFromFloat(float64(s.Price)))
	}
	f, _ := total.Float64()
	return f
}
