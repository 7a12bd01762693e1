/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package api

import (
	"encoding/json"
	"net/http"

	"github.com/lingolabs/lingo-hub/internal/language"
)

// LanguagesResponse wraps the catalog listing
type LanguagesResponse struct {
	Languages []language.Info `json:"languages"`
}

// LanguagesHandler serves the language catalog
type LanguagesHandler struct {
	catalog *language.Catalog
}

// NewLanguagesHandler creates a handler for the given catalog
func NewLanguagesHandler(catalog *language.Catalog) *LanguagesHandler {
	return &LanguagesHandler{catalog: catalog}
}

// HandleLanguages handles GET /api/languages
func (h *LanguagesHandler) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(LanguagesResponse{Languages: h.catalog.List()})
}
