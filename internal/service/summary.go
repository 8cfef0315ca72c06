package service

import (
	"context"

	"github.com/NOTSTEVEN4000/banano-api/internal/db"
	"github.com/NOTSTEVEN4000/banano-api/internal/models"
)

// SummaryService builds the read-only daily report joining trips with
// their vehicle, delivery, fuel and cargo data.
type SummaryService struct {
	trips db.TripCollection
}

// NewSummaryService creates a summary service.
func NewSummaryService(trips db.TripCollection) *SummaryService {
	return &SummaryService{trips: trips}
}

// DailySummary aggregates every active trip of a date into per-trip
// views plus day-level totals. Monetary totals are accumulated raw and
// rounded once at the end, so per-trip rounding never compounds.
func (s *SummaryService) DailySummary(ctx context.Context, claims *models.Claims, date string) (*models.DaySummary, error) {
	rows, err := s.trips.AggregateDailySummary(ctx, claims.EmpresaID, date)
	if err != nil {
		return nil, err
	}

	summary := &models.DaySummary{
		Date:  date,
		Trips: make([]models.TripSummary, 0, len(rows)),
	}
	var fuelUSD, purchaseUSD, saleUSD, marginUSD float64

	for _, row := range rows {
		trip := models.TripSummary{
			ExternalID: row.ExternalID,
			Date:       row.Date,
			Type:       row.Type,
			State:      row.State,
			Vehicle:    row.Vehicle,
		}

		var tripFuel float64
		for _, f := range row.Fuel {
			tripFuel += f.AmountUSD
		}
		trip.Fuel = models.FuelSummary{
			Charges:  len(row.Fuel),
			TotalUSD: models.Round2(tripFuel),
		}
		fuelUSD += tripFuel
		summary.Totals.Charges += len(row.Fuel)

		if row.Supplies != nil {
			trip.Supplies = make(map[models.SupplyType]int, len(row.Supplies.Items))
			for _, item := range row.Supplies.Items {
				trip.Supplies[item.Supply] += item.Quantity
			}
		}

		if row.Type == models.TripTypeBoxes {
			trip.Boxes = s.boxSummary(row)
			for _, cargo := range row.Cargo {
				summary.Totals.Boxes += cargo.Boxes
				purchaseUSD += cargo.PurchaseUSD
				if cargo.SaleUSD != nil {
					saleUSD += *cargo.SaleUSD
				}
				if cargo.MarginUSD != nil {
					marginUSD += *cargo.MarginUSD
				}
			}
		}

		summary.Trips = append(summary.Trips, trip)
	}

	summary.Totals.Trips = len(rows)
	summary.Totals.FuelUSD = models.Round2(fuelUSD)
	summary.Totals.Purchase = models.Round2(purchaseUSD)
	summary.Totals.Sale = models.Round2(saleUSD)
	summary.Totals.Margin = models.Round2(marginUSD)

	return summary, nil
}

// boxSummary aggregates one trip's cargo rows and resolves farm names
// against the tenant's catalog.
func (s *SummaryService) boxSummary(row db.DailyTripRow) *models.BoxSummary {
	farmNames := make(map[string]string, len(row.Farms))
	for _, farm := range row.Farms {
		farmNames[farm.ExternalID] = farm.Name
	}

	box := &models.BoxSummary{ByFarm: make([]models.FarmBreakdown, 0, len(row.Cargo))}
	var purchase, sale, margin float64

	for _, cargo := range row.Cargo {
		name, ok := farmNames[cargo.FarmID]
		if !ok {
			name = cargo.FarmID
		}
		entry := models.FarmBreakdown{
			FarmID:   cargo.FarmID,
			FarmName: name,
			Boxes:    cargo.Boxes,
			Purchase: models.Round2(cargo.PurchaseUSD),
		}
		if cargo.SaleUSD != nil {
			entry.Sale = models.Round2(*cargo.SaleUSD)
			sale += *cargo.SaleUSD
		}
		if cargo.MarginUSD != nil {
			entry.MarginUSD = models.Round2(*cargo.MarginUSD)
			margin += *cargo.MarginUSD
		}
		box.Boxes += cargo.Boxes
		purchase += cargo.PurchaseUSD
		box.ByFarm = append(box.ByFarm, entry)
	}

	box.Purchase = models.Round2(purchase)
	box.Sale = models.Round2(sale)
	box.Margin = models.Round2(margin)
	return box
}
