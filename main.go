package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"accessible_connect/models"
	"accessible_connect/routes"
	"accessible_connect/services"
	"accessible_connect/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	participantService := &services.ParticipantService{Dynamo: dynamoService}
	presenceService := &services.PresenceService{Dynamo: dynamoService}
	appConfigService := &services.AppConfigService{Dynamo: dynamoService}

	// Socket handshakes are refused until the store answers a probe, so
	// clients see the DB connection alert instead of half-working sessions.
	var dbReady atomic.Bool
	go func() {
		for {
			if err := dynamoService.Ping(context.Background(), models.ParticipantsTable); err == nil {
				log.Println("✅ Store is reachable, accepting socket connections.")
				dbReady.Store(true)
				return
			} else {
				log.Printf("⚠️ Store not reachable yet: %v", err)
			}
			time.Sleep(3 * time.Second)
		}
	}()

	// Signaling core: one registry and router shared by both transports
	registry := socket.NewRegistry()
	router := socket.NewRouter(registry, presenceService)
	socketServer := socket.NewSocketServer(router, dbReady.Load)
	bridge := socket.NewBridge(router, dbReady.Load)

	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server failed: %v", err)
		}
	}()
	defer socketServer.Close()

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Accessible Connect")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterParticipantRoutes(r, participantService)
	routes.RegisterAppConfigRoutes(r, appConfigService)
	routes.RegisterAssetRoutes(r)

	// Signaling endpoints
	r.PathPrefix("/socket.io/").Handler(socketServer)
	r.Handle("/ws", bridge)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
