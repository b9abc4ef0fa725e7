// Package pricing computes formation order totals from the service catalog
// and the jurisdiction fee schedule. All arithmetic is in integer cents.
package pricing

import "formationdesk/backend/models"

const (
	FormationFee  Cents = 3900
	ProcessingFee Cents = 500
)

// Breakdown itemizes an order total.
type Breakdown struct {
	Formation    Cents            `json:"formation"`
	Jurisdiction Cents            `json:"jurisdiction"`
	Services     Cents            `json:"services"`
	Processing   Cents            `json:"processing"`
	Total        Cents            `json:"total"`
	Lines        []models.Service `json:"lines"`
}

// ComputeTotal prices rec against catalog. Selected ids missing from the
// catalog contribute nothing.
func ComputeTotal(rec models.IntakeRecord, catalog Catalog) Breakdown {
	b := Breakdown{
		Formation:    FormationFee,
		Jurisdiction: Cents(rec.JurisdictionFee),
		Processing:   ProcessingFee,
		Lines:        []models.Service{},
	}
	for _, item := range catalog.Items {
		if rec.SelectedServices[item.ID] {
			b.Services += Cents(item.Price)
			b.Lines = append(b.Lines, item)
		}
	}
	b.Total = b.Formation + b.Jurisdiction + b.Services + b.Processing
	return b
}
