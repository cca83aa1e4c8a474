package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"accessible_connect/services"
)

// GetModelURL generates a presigned URL for downloading one file of the
// gesture-model bundle.
func GetModelURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FileName string `json:"fileName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.FileName == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	url, err := services.GenerateModelURL(payload.FileName)
	if err != nil {
		log.Printf("❌ Failed to presign model URL for %s: %v", payload.FileName, err)
		http.Error(w, "Failed to generate model URL", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"url": url})
}
