package optimizer

import (
	"sort"

	"github.com/visitaroute/visitaroute/internal/distance"
)

// DefaultOrigin is the regional office in Itajaí, the default departure and
// return point for field teams.
var DefaultOrigin = distance.Coordinate{Lat: -26.9077, Lng: -48.6618}

// municipalityCentroids maps the municipalities covered by the regional
// office to a representative downtown coordinate. Used when a stop arrives
// without coordinates of its own.
var municipalityCentroids = map[string]distance.Coordinate{
	"Balneário Camboriú":   {Lat: -26.9926, Lng: -48.6352},
	"Balneário Piçarras":   {Lat: -26.7566, Lng: -48.6719},
	"Bombinhas":            {Lat: -27.1382, Lng: -48.5146},
	"Camboriú":             {Lat: -27.0247, Lng: -48.6536},
	"Ilhota":               {Lat: -26.8984, Lng: -48.8269},
	"Itajaí":               {Lat: -26.9077, Lng: -48.6618},
	"Itapema":              {Lat: -27.0903, Lng: -48.6114},
	"Luiz Alves":           {Lat: -26.7152, Lng: -48.9331},
	"Navegantes":           {Lat: -26.8989, Lng: -48.6545},
	"Penha":                {Lat: -26.7694, Lng: -48.6458},
	"Porto Belo":           {Lat: -27.1576, Lng: -48.5523},
}

// MunicipalityCentroid returns the reference coordinate for a covered
// municipality.
func MunicipalityCentroid(name string) (distance.Coordinate, bool) {
	coord, ok := municipalityCentroids[name]
	return coord, ok
}

// Municipalities returns the covered municipality names in alphabetical
// order.
func Municipalities() []string {
	names := make([]string, 0, len(municipalityCentroids))
	for name := range municipalityCentroids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
