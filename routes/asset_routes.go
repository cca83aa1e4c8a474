package routes

import (
	"accessible_connect/controllers"

	"github.com/gorilla/mux"
)

// RegisterAssetRoutes sets up routes for gesture-model asset delivery
func RegisterAssetRoutes(r *mux.Router) {
	r.HandleFunc("/get-model-url", controllers.GetModelURL).Methods("POST")
}
