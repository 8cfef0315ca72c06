package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/NOTSTEVEN4000/banano-api/internal/auth"
	"github.com/NOTSTEVEN4000/banano-api/internal/config"
	"github.com/NOTSTEVEN4000/banano-api/internal/db"
	"github.com/NOTSTEVEN4000/banano-api/internal/events"
	"github.com/NOTSTEVEN4000/banano-api/internal/handlers"
	"github.com/NOTSTEVEN4000/banano-api/internal/middleware"
	"github.com/NOTSTEVEN4000/banano-api/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on environment")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(ctx)
	}()
	logrus.Info("Connected to MongoDB")

	collections := db.NewCollections(client, cfg.MongoDB)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := collections.EnsureIndexes(ctx); err != nil {
			logrus.WithError(err).Fatal("Failed to ensure indexes")
		}
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.MQTTBrokerURL != "" {
		mqttPub, err := events.NewMQTTPublisher(cfg.MQTTBrokerURL, "banano-api", cfg.MQTTTopicPrefix)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to MQTT broker")
		}
		defer mqttPub.Close()
		publisher = mqttPub
		logrus.WithField("broker", cfg.MQTTBrokerURL).Info("Trip events enabled")
	}

	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	inventoryService := service.NewInventoryService(collections.Supplies, collections.Movements)
	tripService := service.NewTripService(
		collections.Trips,
		collections.SupplyRecords,
		collections.FuelCharges,
		collections.BoxCargo,
		inventoryService,
		publisher,
	)
	summaryService := service.NewSummaryService(collections.Trips)

	authHandler := handlers.NewAuthHandler(authService, collections.Users)
	tripHandler := handlers.NewTripHandler(tripService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	catalogHandler := handlers.NewCatalogHandler(collections.Vehicles, collections.Farms)
	summaryHandler := handlers.NewSummaryHandler(summaryService)

	authMw := middleware.NewAuthMiddleware(authService)
	rateLimit := middleware.NewRateLimitMiddleware()

	router := mux.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(rateLimit.RateLimit(300, 60))
	router.Use(authMw.Authenticate)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)

	// Reads are open to every authenticated role; writes require
	// ADMIN or OPERADOR.
	reads := api.NewRoute().Subrouter()
	writes := api.NewRoute().Subrouter()
	writes.Use(authMw.RequireWriter)

	writes.HandleFunc("/viajes", tripHandler.Create).Methods(http.MethodPost)
	reads.HandleFunc("/viajes", tripHandler.ListByDate).Methods(http.MethodGet)
	writes.HandleFunc("/viajes/{id}/iniciar", tripHandler.Start).Methods(http.MethodPatch)
	writes.HandleFunc("/viajes/{id}/entregar", tripHandler.Deliver).Methods(http.MethodPatch)
	writes.HandleFunc("/viajes/{id}/anular", tripHandler.Cancel).Methods(http.MethodPatch)
	writes.HandleFunc("/viajes/{id}/insumos", tripHandler.AttachSupplyDelivery).Methods(http.MethodPost)
	reads.HandleFunc("/viajes/{id}/insumos", tripHandler.GetSupplyDelivery).Methods(http.MethodGet)
	writes.HandleFunc("/viajes/{id}/insumos", tripHandler.UpdateSupplyDelivery).Methods(http.MethodPut)
	writes.HandleFunc("/viajes/{id}/insumos", tripHandler.DeleteSupplyDelivery).Methods(http.MethodDelete)
	writes.HandleFunc("/viajes/{id}/cargas", tripHandler.AttachBoxCargo).Methods(http.MethodPost)
	reads.HandleFunc("/viajes/{id}/cargas", tripHandler.ListBoxCargo).Methods(http.MethodGet)
	writes.HandleFunc("/viajes/{id}/combustible", tripHandler.AttachFuelCharge).Methods(http.MethodPost)
	reads.HandleFunc("/viajes/{id}/combustible", tripHandler.ListFuelCharges).Methods(http.MethodGet)

	writes.HandleFunc("/insumos", inventoryHandler.CreateSupply).Methods(http.MethodPost)
	reads.HandleFunc("/insumos", inventoryHandler.ListSupplies).Methods(http.MethodGet)
	reads.HandleFunc("/insumos/{id}", inventoryHandler.GetSupply).Methods(http.MethodGet)
	writes.HandleFunc("/insumos/{id}", inventoryHandler.UpdateSupply).Methods(http.MethodPatch)
	writes.HandleFunc("/insumos/entradas", inventoryHandler.RegisterEntry).Methods(http.MethodPost)
	writes.HandleFunc("/insumos/ajustes", inventoryHandler.RegisterAdjustment).Methods(http.MethodPost)
	reads.HandleFunc("/insumos/{id}/movimientos", inventoryHandler.Movements).Methods(http.MethodGet)

	writes.HandleFunc("/vehiculos", catalogHandler.CreateVehicle).Methods(http.MethodPost)
	reads.HandleFunc("/vehiculos", catalogHandler.ListVehicles).Methods(http.MethodGet)
	reads.HandleFunc("/vehiculos/{id}", catalogHandler.GetVehicle).Methods(http.MethodGet)
	writes.HandleFunc("/vehiculos/{id}", catalogHandler.DeactivateVehicle).Methods(http.MethodDelete)

	writes.HandleFunc("/haciendas", catalogHandler.CreateFarm).Methods(http.MethodPost)
	reads.HandleFunc("/haciendas", catalogHandler.ListFarms).Methods(http.MethodGet)

	reads.HandleFunc("/resumen/{fecha}", summaryHandler.Daily).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logrus.WithField("port", cfg.Port).Info("HTTP server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Fatal("HTTP server stopped")
	}
}
