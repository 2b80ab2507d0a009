package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/agrodev/tractor-maintenance/internal/auth"
	"github.com/agrodev/tractor-maintenance/internal/db"
	"github.com/agrodev/tractor-maintenance/internal/handlers"
	"github.com/agrodev/tractor-maintenance/internal/middleware"
	"github.com/agrodev/tractor-maintenance/internal/notify"
	"github.com/agrodev/tractor-maintenance/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment")
	}
	log.SetFormatter(&log.JSONFormatter{})

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	log.Info("connected to MongoDB")

	database := os.Getenv("MONGO_DATABASE")
	if database == "" {
		database = "tractor_maintenance"
	}
	store := db.NewMongoStore(client, database)

	var notifier notify.Notifier = notify.LogNotifier{}
	if broker := os.Getenv("MQTT_BROKER"); broker != "" {
		topic := os.Getenv("MQTT_TOPIC")
		if topic == "" {
			topic = "maintenance/assignments"
		}
		mqttNotifier, err := notify.NewMQTTNotifier(broker, "tractor-maintenance-api", topic)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to MQTT broker")
		}
		defer mqttNotifier.Close()
		notifier = mqttNotifier
		log.WithField("topic", topic).Info("assignment notifications via MQTT")
	}

	ledger := service.NewLedger(store.Parts)
	sequencer := service.NewSequencer(store.Counters)
	fleet := service.NewFleetService(store)
	requests := service.NewRequestService(store, ledger, sequencer, notifier)

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("failed to configure auth service")
	}
	authMiddleware := middleware.NewAuthMiddleware(authService)

	authHandler := handlers.NewAuthHandler(authService, store.Users)
	partsHandler := handlers.NewPartsHandler(ledger)
	requestsHandler := handlers.NewRequestsHandler(requests)
	fleetHandler := handlers.NewFleetHandler(fleet)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/parts", partsHandler.HandleParts)
	mux.HandleFunc("/api/parts/", partsHandler.HandlePart)
	mux.HandleFunc("/api/requests", requestsHandler.HandleRequests)
	mux.HandleFunc("/api/requests/assign", requestsHandler.HandleAssign)
	mux.HandleFunc("/api/requests/", requestsHandler.HandleRequest)
	mux.HandleFunc("/api/technicians", fleetHandler.HandleTechnicians)
	mux.HandleFunc("/api/technicians/", fleetHandler.HandleTechnician)
	mux.HandleFunc("/api/tractor-owners", fleetHandler.HandleOwners)
	mux.HandleFunc("/api/tractor-owners/", fleetHandler.HandleOwner)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("HTTP server listening")
	if err := http.ListenAndServe(":"+port, authMiddleware.Authenticate(mux)); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
