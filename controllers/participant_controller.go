package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"accessible_connect/models"
	"accessible_connect/services"
)

// ParticipantController struct
type ParticipantController struct {
	ParticipantService *services.ParticipantService
}

// NewParticipantController initializes the participant controller
func NewParticipantController(service *services.ParticipantService) *ParticipantController {
	return &ParticipantController{ParticipantService: service}
}

// HandleCreateParticipant stores a new connection binding. The client calls
// this once after joining and again after every reconnect with its fresh
// socketId.
func (c *ParticipantController) HandleCreateParticipant(w http.ResponseWriter, r *http.Request) {
	var participant models.Participant
	if err := json.NewDecoder(r.Body).Decode(&participant); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := c.ParticipantService.CreateParticipant(context.TODO(), participant); err != nil {
		log.Printf("❌ Failed to insert participant: %v", err)
		http.Error(w, `{"error": "Failed to create participant"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
