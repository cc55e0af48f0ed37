// Package putaway contiene la heurística pura de sugerencia de ubicaciones
// (servicio de dominio, sin estado ni efectos).
package putaway

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// Pesos de la heurística. Base 100; vacía +50, piso +10, zona preferida +30.
const (
	scoreBase          = 100
	scoreEmptyBonus    = 50
	scoreGroundBonus   = 10
	scoreZoneBonus     = 30
	thresholdOptimal   = 150
	thresholdGood      = 120
	thresholdSuitable  = 100
)

// Candidate ubicación candidata con su puntaje y razón legible.
// Es solo una sugerencia: ni reserva ni muta nada.
type Candidate struct {
	Location  *entity.Location
	Occupancy decimal.Decimal
	Score     int
	Reason    string
}

// Score puntúa una ubicación para guardar un producto.
func Score(loc *entity.Location, occupancy decimal.Decimal, preferredZone string) int {
	score := scoreBase
	if occupancy.IsZero() {
		score += scoreEmptyBonus
	}
	if loc.IsGroundLevel() {
		score += scoreGroundBonus
	}
	if preferredZone != "" && loc.Zone == preferredZone {
		score += scoreZoneBonus
	}
	return score
}

// Reason banda legible según el puntaje.
func Reason(score int) string {
	switch {
	case score >= thresholdOptimal:
		return "ubicación óptima (vacía)"
	case score >= thresholdGood:
		return "buena ubicación"
	case score >= thresholdSuitable:
		return "ubicación adecuada"
	default:
		return "disponible"
	}
}

// Rank puntúa las ubicaciones activas y devuelve las topN mejores en orden
// descendente. occupancy mapea locationID -> cantidad en mano actual;
// las ubicaciones sin entrada se tratan como vacías. Se descartan las
// inactivas y las que ya no tienen capacidad para la cantidad pedida.
func Rank(locations []*entity.Location, occupancy map[string]decimal.Decimal, quantity decimal.Decimal, preferredZone string, topN int) []Candidate {
	candidates := make([]Candidate, 0, len(locations))
	for _, loc := range locations {
		if !loc.IsActive {
			continue
		}
		occ := occupancy[loc.ID]
		if loc.Capacity.IsPositive() && occ.Add(quantity).GreaterThan(loc.Capacity) {
			continue
		}
		score := Score(loc, occ, preferredZone)
		candidates = append(candidates, Candidate{
			Location:  loc,
			Occupancy: occ,
			Score:     score,
			Reason:    Reason(score),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Location.Code < candidates[j].Location.Code
	})
	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}
