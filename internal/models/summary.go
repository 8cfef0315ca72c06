package models

// VehicleRef is the vehicle projection used in reporting views.
type VehicleRef struct {
	ExternalID string `bson:"idExterno" json:"idExterno"`
	Name       string `bson:"nombre" json:"nombre"`
	Plate      string `bson:"placa" json:"placa"`
}

// FarmRef is the farm projection used for name resolution.
type FarmRef struct {
	ExternalID string `bson:"idExterno" json:"idExterno"`
	Name       string `bson:"nombre" json:"nombre"`
}

// FuelSummary totals the fuel charges of one trip.
type FuelSummary struct {
	Charges  int     `json:"recargas"`
	TotalUSD float64 `json:"totalUSD"`
}

// FarmBreakdown is the per-farm slice of a trip's box cargo.
type FarmBreakdown struct {
	FarmID    string  `json:"haciendaIdExterno"`
	FarmName  string  `json:"haciendaNombre"`
	Boxes     int     `json:"cajas"`
	Purchase  float64 `json:"compraUSD"`
	Sale      float64 `json:"ventaUSD"`
	MarginUSD float64 `json:"utilidadUSD"`
}

// BoxSummary aggregates the box cargo of one BOXES trip.
type BoxSummary struct {
	Boxes    int             `json:"totalCajas"`
	Purchase float64         `json:"compraUSD"`
	Sale     float64         `json:"ventaUSD"`
	Margin   float64         `json:"utilidadBrutaUSD"`
	ByFarm   []FarmBreakdown `json:"porHacienda"`
}

// TripSummary is the per-trip reporting view of the daily summary.
type TripSummary struct {
	ExternalID string             `json:"idExterno"`
	Date       string             `json:"fecha"`
	Type       TripType           `json:"tipo"`
	State      TripState          `json:"estado"`
	Vehicle    *VehicleRef        `json:"vehiculo"`
	Fuel       FuelSummary        `json:"combustible"`
	Supplies   map[SupplyType]int `json:"insumos,omitempty"`
	Boxes      *BoxSummary        `json:"cajas,omitempty"`
}

// DayTotals accumulates trip-level figures over a day. Monetary totals
// are summed raw and rounded once.
type DayTotals struct {
	Trips    int     `json:"viajes"`
	Charges  int     `json:"recargas"`
	FuelUSD  float64 `json:"combustibleUSD"`
	Boxes    int     `json:"cajas"`
	Purchase float64 `json:"compraUSD"`
	Sale     float64 `json:"ventaUSD"`
	Margin   float64 `json:"utilidadBrutaUSD"`
}

// DaySummary is the read-only daily report for one tenant and date.
type DaySummary struct {
	Date   string        `json:"fecha"`
	Totals DayTotals     `json:"totalesDia"`
	Trips  []TripSummary `json:"viajes"`
}
