package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"accessible_connect/services"
)

// AppConfigController struct
type AppConfigController struct {
	AppConfigService *services.AppConfigService
}

// NewAppConfigController initializes the app config controller
func NewAppConfigController(service *services.AppConfigService) *AppConfigController {
	return &AppConfigController{AppConfigService: service}
}

// HandleGetAppConfig returns the endpoint URL and the session directory.
func (c *AppConfigController) HandleGetAppConfig(w http.ResponseWriter, r *http.Request) {
	config, err := c.AppConfigService.GetAppConfig(context.TODO())
	if err != nil {
		log.Printf("❌ Failed to load app config: %v", err)
		http.Error(w, `{"error": "Failed to load app config"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(config)
}
