package routes

import (
	"accessible_connect/controllers"
	"accessible_connect/services"

	"github.com/gorilla/mux"
)

// RegisterParticipantRoutes sets up the participant-creation route
func RegisterParticipantRoutes(r *mux.Router, participantService *services.ParticipantService) {
	controller := controllers.NewParticipantController(participantService)

	r.HandleFunc("/createParticipant", controller.HandleCreateParticipant).Methods("POST")
}
