// Command simulator drives a full demo day against a running API:
// it logs in, seeds the catalogs, stocks the warehouse, runs one
// supply trip and one box trip end to end, and prints the resulting
// daily summary.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	apiURL    string
	authToken string
)

func request(method, path string, payload interface{}, out interface{}) error {
	var body *bytes.Buffer = bytes.NewBuffer(nil)
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, apiURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s %s failed with status %d: %s", method, path, resp.StatusCode, apiErr.Error)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func login(user, pass string) error {
	var resp struct {
		Token string `json:"token"`
	}
	err := request(http.MethodPost, "/auth/login", map[string]string{
		"usuario": user,
		"clave":   pass,
	}, &resp)
	if err != nil {
		return err
	}
	authToken = resp.Token
	return nil
}

func seedVehicle() (string, error) {
	var vehicle struct {
		ExternalID string `json:"idExterno"`
		Plate      string `json:"placa"`
	}
	err := request(http.MethodPost, "/vehiculos", map[string]interface{}{
		"placa":          fmt.Sprintf("GBA-%d", time.Now().Unix()%10000),
		"nombre":         "Camion demo",
		"capacidadCajas": 540,
		"tipo":           "CAMION",
	}, &vehicle)
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"id": vehicle.ExternalID, "placa": vehicle.Plate}).Info("Seeded vehicle")
	return vehicle.ExternalID, nil
}

func seedFarm() (string, error) {
	var farm struct {
		ExternalID string `json:"idExterno"`
	}
	err := request(http.MethodPost, "/haciendas", map[string]string{
		"nombre":    "Hacienda San Jose",
		"ubicacion": "Km 12 via a Valencia",
	}, &farm)
	if err != nil {
		return "", err
	}
	log.WithField("id", farm.ExternalID).Info("Seeded farm")
	return farm.ExternalID, nil
}

func seedSupplies() error {
	supplies := []map[string]interface{}{
		{"tipo": "CARTON", "descripcion": "Caja de carton 22XU", "unidad": "unidad", "stockInicial": 0, "costoPromedioUSD": 0},
		{"tipo": "FUNDA", "descripcion": "Funda plastica tratada", "unidad": "unidad", "stockInicial": 0, "costoPromedioUSD": 0},
		{"tipo": "CARTULINA", "descripcion": "Cartulina de fondo", "unidad": "unidad", "stockInicial": 0, "costoPromedioUSD": 0},
	}
	for _, s := range supplies {
		if err := request(http.MethodPost, "/insumos", s, nil); err != nil {
			// re-runs hit the per-type uniqueness, keep going
			log.WithError(err).Warn("Supply already in catalog")
		}
	}

	entry := map[string]interface{}{
		"items": []map[string]interface{}{
			{"tipo": "CARTON", "cantidad": 500, "costoUnitarioUSD": 0.35},
			{"tipo": "FUNDA", "cantidad": 1000, "costoUnitarioUSD": 0.05},
			{"tipo": "CARTULINA", "cantidad": 500, "costoUnitarioUSD": 0.08},
		},
	}
	var result struct {
		ExternalID   string  `json:"idExterno"`
		TotalCostUSD float64 `json:"totalCostoEstimado"`
	}
	if err := request(http.MethodPost, "/insumos/entradas", entry, &result); err != nil {
		return err
	}
	log.WithFields(log.Fields{"entrada": result.ExternalID, "total_usd": result.TotalCostUSD}).Info("Stocked warehouse")
	return nil
}

func runSupplyTrip(date, vehicleID, farmID string) error {
	var trip struct {
		ExternalID string `json:"idExterno"`
	}
	err := request(http.MethodPost, "/viajes", map[string]interface{}{
		"fecha":             date,
		"tipo":              "INSUMOS",
		"vehiculoIdExterno": vehicleID,
		"destino":           map[string]string{"tipoDestino": "HACIENDA", "haciendaIdExterno": farmID},
		"notas":             "Entrega semanal de materiales",
	}, &trip)
	if err != nil {
		return err
	}

	delivery := map[string]interface{}{
		"haciendaIdExterno": farmID,
		"items": []map[string]interface{}{
			{"tipo": "CARTON", "cantidad": 200},
			{"tipo": "FUNDA", "cantidad": 400},
		},
	}
	if err := request(http.MethodPost, "/viajes/"+trip.ExternalID+"/insumos", delivery, nil); err != nil {
		return err
	}

	if err := request(http.MethodPatch, "/viajes/"+trip.ExternalID+"/iniciar", nil, nil); err != nil {
		return err
	}
	if err := request(http.MethodPatch, "/viajes/"+trip.ExternalID+"/entregar", map[string]string{
		"observacion": "Recibido por el mayordomo",
	}, nil); err != nil {
		return err
	}

	log.WithField("viaje", trip.ExternalID).Info("Supply trip delivered")
	return nil
}

func runBoxTrip(date, vehicleID, farmID string) error {
	var trip struct {
		ExternalID string `json:"idExterno"`
	}
	err := request(http.MethodPost, "/viajes", map[string]interface{}{
		"fecha":             date,
		"tipo":              "CAJAS",
		"vehiculoIdExterno": vehicleID,
		"destino":           map[string]string{"tipoDestino": "BODEGA"},
	}, &trip)
	if err != nil {
		return err
	}

	price := 2.00
	cargo := map[string]interface{}{
		"haciendaIdExterno":   farmID,
		"cantidadCajas":       100,
		"costoCompraUnitario": 1.50,
		"precioVentaUnitario": price,
		"clienteIdExterno":    "cli-demo",
	}
	var totals struct {
		PurchaseUSD float64  `json:"totalCompra"`
		MarginUSD   *float64 `json:"utilidadBruta"`
	}
	if err := request(http.MethodPost, "/viajes/"+trip.ExternalID+"/cargas", cargo, &totals); err != nil {
		return err
	}

	fuel := map[string]interface{}{
		"fechaHora": time.Now().Format(time.RFC3339),
		"montoUSD":  25.50,
		"detalle":   "Estacion del km 4",
	}
	if err := request(http.MethodPost, "/viajes/"+trip.ExternalID+"/combustible", fuel, nil); err != nil {
		return err
	}

	if err := request(http.MethodPatch, "/viajes/"+trip.ExternalID+"/iniciar", nil, nil); err != nil {
		return err
	}
	if err := request(http.MethodPatch, "/viajes/"+trip.ExternalID+"/entregar", nil, nil); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"viaje":      trip.ExternalID,
		"compra_usd": totals.PurchaseUSD,
	}).Info("Box trip delivered")
	return nil
}

func printSummary(date string) error {
	var summary map[string]interface{}
	if err := request(http.MethodGet, "/resumen/"+date, nil, &summary); err != nil {
		return err
	}
	pretty, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(pretty))
	return nil
}

func main() {
	apiURL = os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}
	user := os.Getenv("SIM_USER")
	if user == "" {
		user = "admin"
	}
	pass := os.Getenv("SIM_PASS")
	if pass == "" {
		pass = "Admin123!"
	}

	log.WithField("api_url", apiURL).Info("Starting demo day")

	if err := login(user, pass); err != nil {
		log.WithError(err).Fatal("Login failed")
	}

	vehicleID, err := seedVehicle()
	if err != nil {
		log.WithError(err).Fatal("Failed to seed vehicle")
	}
	farmID, err := seedFarm()
	if err != nil {
		log.WithError(err).Fatal("Failed to seed farm")
	}
	if err := seedSupplies(); err != nil {
		log.WithError(err).Fatal("Failed to stock warehouse")
	}

	date := time.Now().Format("2006-01-02")
	if err := runSupplyTrip(date, vehicleID, farmID); err != nil {
		log.WithError(err).Fatal("Supply trip failed")
	}
	if err := runBoxTrip(date, vehicleID, farmID); err != nil {
		log.WithError(err).Fatal("Box trip failed")
	}

	if err := printSummary(date); err != nil {
		log.WithError(err).Fatal("Failed to fetch summary")
	}
}
