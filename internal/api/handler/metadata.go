package handler

import (
	"net/http"

	"github.com/visitaroute/visitaroute/internal/api/models"
	"github.com/visitaroute/visitaroute/internal/api/response"
	"github.com/visitaroute/visitaroute/internal/optimizer"
	"github.com/visitaroute/visitaroute/internal/places"
)

// MetadataHandler handles static metadata endpoints.
type MetadataHandler struct{}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{}
}

// municipalityEntry is one covered municipality with its reference point.
type municipalityEntry struct {
	Name     string       `json:"name"`
	Centroid models.Point `json:"centroid"`
}

// ListMunicipalities handles GET /v1/metadata/municipalities - the coverage
// area of this regional office.
func (h *MetadataHandler) ListMunicipalities(w http.ResponseWriter, r *http.Request) {
	names := optimizer.Municipalities()
	entries := make([]municipalityEntry, 0, len(names))
	for _, name := range names {
		coord, _ := optimizer.MunicipalityCentroid(name)
		entries = append(entries, municipalityEntry{
			Name:     name,
			Centroid: models.Point{Lat: coord.Lat, Lng: coord.Lng},
		})
	}

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"origin":         models.Point{Lat: optimizer.DefaultOrigin.Lat, Lng: optimizer.DefaultOrigin.Lng},
		"municipalities": entries,
	})
}

// GetEnums handles GET /v1/metadata/enums - enumerations used by the API.
func (h *MetadataHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"kinds":        []places.Kind{places.KindPrefeitura, places.KindEmpresa, places.KindAutarquia},
		"tiers":        []int{1, 2, 3},
		"openStatuses": []places.Status{places.StatusOpen, places.StatusClosed, places.StatusUnknown},
	})
}
