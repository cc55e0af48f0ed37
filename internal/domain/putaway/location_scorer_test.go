package putaway_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/domain/putaway"
)

func loc(id, code, zone string, level int, capacity int64, active bool) *entity.Location {
	return &entity.Location{
		ID:       id,
		Code:     code,
		Type:     entity.LocationTypeStorage,
		Zone:     zone,
		Level:    level,
		Capacity: decimal.NewFromInt(capacity),
		IsActive: active,
	}
}

func TestScore_Pesos(t *testing.T) {
	// Base 100; vacía +50, piso +10, zona preferida +30.
	vaciaPisoZona := loc("l1", "A-01", "A", 0, 100, true)
	assert.Equal(t, 190, putaway.Score(vaciaPisoZona, decimal.Zero, "A"))

	ocupadaAltillo := loc("l2", "B-03", "B", 2, 100, true)
	assert.Equal(t, 100, putaway.Score(ocupadaAltillo, decimal.NewFromInt(10), "A"))

	soloVacia := loc("l3", "C-02", "C", 1, 100, true)
	assert.Equal(t, 150, putaway.Score(soloVacia, decimal.Zero, ""))

	// Sin zona preferida del producto no hay bono de zona.
	assert.Equal(t, 160, putaway.Score(vaciaPisoZona, decimal.Zero, ""))
}

func TestReason_Bandas(t *testing.T) {
	assert.Equal(t, "ubicación óptima (vacía)", putaway.Reason(190))
	assert.Equal(t, "ubicación óptima (vacía)", putaway.Reason(150))
	assert.Equal(t, "buena ubicación", putaway.Reason(149))
	assert.Equal(t, "buena ubicación", putaway.Reason(120))
	assert.Equal(t, "ubicación adecuada", putaway.Reason(119))
	assert.Equal(t, "ubicación adecuada", putaway.Reason(100))
	assert.Equal(t, "disponible", putaway.Reason(99))
}

func TestRank_OrdenaPorPuntajeYDescartaSinCapacidad(t *testing.T) {
	locations := []*entity.Location{
		loc("llena", "A-01", "A", 0, 10, true),   // ocupada 8 + pedir 5 > 10 -> descartada
		loc("vacia", "B-01", "B", 0, 100, true),  // 100+50+10 = 160
		loc("zona", "A-02", "A", 3, 100, true),   // ocupada, zona preferida: 100+30 = 130
		loc("piso", "C-01", "C", 0, 100, true),   // ocupada, piso: 110
		loc("inactiva", "A-00", "A", 0, 0, false),
	}
	occupancy := map[string]decimal.Decimal{
		"llena": decimal.NewFromInt(8),
		"zona":  decimal.NewFromInt(20),
		"piso":  decimal.NewFromInt(3),
	}

	got := putaway.Rank(locations, occupancy, decimal.NewFromInt(5), "A", 10)
	require.Len(t, got, 3, "la llena y la inactiva deben descartarse")

	assert.Equal(t, "vacia", got[0].Location.ID)
	assert.Equal(t, 160, got[0].Score)
	assert.Equal(t, "ubicación óptima (vacía)", got[0].Reason)

	assert.Equal(t, "zona", got[1].Location.ID)
	assert.Equal(t, 130, got[1].Score)

	assert.Equal(t, "piso", got[2].Location.ID)
	assert.Equal(t, 110, got[2].Score)
	assert.True(t, got[2].Occupancy.Equal(decimal.NewFromInt(3)))
}

func TestRank_EmpateDesempataPorCodigo(t *testing.T) {
	locations := []*entity.Location{
		loc("b", "B-01", "", 0, 0, true),
		loc("a", "A-01", "", 0, 0, true),
	}
	got := putaway.Rank(locations, nil, decimal.NewFromInt(1), "", 10)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Location.ID, "a igual puntaje gana el código menor")
	assert.Equal(t, "b", got[1].Location.ID)
}

func TestRank_CapacidadCeroEsSinLimite(t *testing.T) {
	locations := []*entity.Location{loc("l1", "A-01", "", 5, 0, true)}
	occupancy := map[string]decimal.Decimal{"l1": decimal.NewFromInt(1000000)}
	got := putaway.Rank(locations, occupancy, decimal.NewFromInt(99999), "", 10)
	assert.Len(t, got, 1, "capacidad cero nunca descarta por lleno")
}

func TestRank_TopN(t *testing.T) {
	locations := []*entity.Location{
		loc("l1", "A-01", "", 0, 0, true),
		loc("l2", "A-02", "", 0, 0, true),
		loc("l3", "A-03", "", 0, 0, true),
	}
	got := putaway.Rank(locations, nil, decimal.NewFromInt(1), "", 2)
	assert.Len(t, got, 2)
}
