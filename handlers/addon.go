package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"stremdb/models"
)

// metadataService is the surface of the metadata aggregator the addon
// endpoints need.
type metadataService interface {
	GetTitle(ctx context.Context, settings models.UserSettings, id string) (*models.Meta, error)
	Search(ctx context.Context, settings models.UserSettings, query, kind string) ([]models.Meta, error)
}

// AddonHandler serves the Stremio addon protocol endpoints.
type AddonHandler struct {
	Service metadataService
}

// NewAddonHandler creates a new AddonHandler.
func NewAddonHandler(service metadataService) *AddonHandler {
	return &AddonHandler{Service: service}
}

// manifest describes the addon to the Stremio client. Fixed data; the
// settings segment in the URL does not change what is declared here.
var manifest = map[string]any{
	"id":          "pet.thea.stremimdb",
	"version":     "1.0.0",
	"name":        "StremIMDb",
	"description": "IMDb metadata in Stremio",
	"logo":        "https://upload.wikimedia.org/wikipedia/commons/thumb/6/69/IMDB_Logo_2016.svg/575px-IMDB_Logo_2016.svg.png",
	"background":  "https://upload.wikimedia.org/wikipedia/commons/thumb/6/69/IMDB_Logo_2016.svg/575px-IMDB_Logo_2016.svg.png",
	"catalogs": []map[string]any{
		{
			"type": "movie",
			"id":   "search",
			"name": "Movies",
			"extra": []map[string]any{
				{"name": "search", "isRequired": true},
			},
		},
		{
			"type": "series",
			"id":   "search",
			"name": "Series",
			"extra": []map[string]any{
				{"name": "search", "isRequired": true},
			},
		},
	},
	"resources":  []string{"catalog", "meta"},
	"types":      []string{"movie", "series"},
	"idPrefixes": []string{"tt"},
	"behaviorHints": map[string]any{
		"configurable":          true,
		"configurationRequired": false,
	},
}

// GetManifest returns the static addon manifest.
func (h *AddonHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, manifest)
}

// GetMeta returns the full metadata record for one title.
func (h *AddonHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	settings := requestSettings(r)
	id := strings.TrimSuffix(vars["id"], ".json")

	meta, err := h.Service.GetTitle(r.Context(), settings, id)
	if err != nil {
		log.Printf("[addon] meta lookup failed for %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "metadata lookup failed"})
		return
	}
	if meta == nil {
		writeJSON(w, http.StatusNotFound, models.MetaResponse{})
		return
	}
	writeJSON(w, http.StatusOK, models.MetaResponse{Meta: meta})
}

// SearchCatalog returns summary records for a search query. The extra path
// segment arrives as "search=<query>" per the addon protocol.
func (h *AddonHandler) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	settings := requestSettings(r)
	kind := vars["type"]
	query := strings.TrimSuffix(vars["extra"], ".json")
	query = strings.TrimPrefix(query, "search=")

	metas, err := h.Service.Search(r.Context(), settings, query, kind)
	if err != nil {
		log.Printf("[addon] search failed for %q: %v", query, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "search failed"})
		return
	}
	writeJSON(w, http.StatusOK, models.CatalogResponse{Metas: metas})
}

// requestSettings decodes the optional settings path segment. Absent or
// malformed settings fall back to defaults rather than failing the request.
func requestSettings(r *http.Request) models.UserSettings {
	return models.DecodeSettings(mux.Vars(r)["settings"])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[addon] failed to encode response: %v", err)
	}
}
