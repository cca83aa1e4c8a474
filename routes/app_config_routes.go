package routes

import (
	"accessible_connect/controllers"
	"accessible_connect/services"

	"github.com/gorilla/mux"
)

// RegisterAppConfigRoutes sets up the app configuration route
func RegisterAppConfigRoutes(r *mux.Router, appConfigService *services.AppConfigService) {
	controller := controllers.NewAppConfigController(appConfigService)

	r.HandleFunc("/getAppConfig", controller.HandleGetAppConfig).Methods("GET")
}
