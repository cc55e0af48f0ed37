package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

func TestCycleCountSession_Transiciones(t *testing.T) {
	cases := []struct {
		from    entity.CycleCountStatus
		to      entity.CycleCountStatus
		allowed bool
	}{
		{entity.CycleCountDraft, entity.CycleCountScheduled, true},
		{entity.CycleCountDraft, entity.CycleCountInProgress, false},
		{entity.CycleCountScheduled, entity.CycleCountInProgress, true},
		{entity.CycleCountScheduled, entity.CycleCountReview, false},
		{entity.CycleCountInProgress, entity.CycleCountReview, true},
		{entity.CycleCountInProgress, entity.CycleCountComplete, false},
		{entity.CycleCountReview, entity.CycleCountComplete, true},
		{entity.CycleCountReview, entity.CycleCountInProgress, false},
		// Cancelable desde cualquier estado salvo COMPLETE.
		{entity.CycleCountDraft, entity.CycleCountCancelled, true},
		{entity.CycleCountScheduled, entity.CycleCountCancelled, true},
		{entity.CycleCountInProgress, entity.CycleCountCancelled, true},
		{entity.CycleCountReview, entity.CycleCountCancelled, true},
		{entity.CycleCountComplete, entity.CycleCountCancelled, false},
		{entity.CycleCountCancelled, entity.CycleCountDraft, false},
	}
	for _, tc := range cases {
		s := &entity.CycleCountSession{Number: "CC-20250301-0001", Status: tc.from}
		err := s.TransitionTo(tc.to)
		if tc.allowed {
			require.NoError(t, err, "%s -> %s debe permitirse", tc.from, tc.to)
		} else {
			require.ErrorIs(t, err, domain.ErrInvalidTransition, "%s -> %s debe rechazarse", tc.from, tc.to)
		}
	}
}

func TestCycleCountItem_RecordCount_CalculaVarianza(t *testing.T) {
	now := time.Now().UTC()
	it := &entity.CycleCountItem{
		Status:           entity.CountItemPending,
		ExpectedQuantity: decimal.NewFromInt(10),
	}
	require.NoError(t, it.RecordCount(decimal.NewFromInt(7), "user-1", now))

	assert.Equal(t, entity.CountItemCounted, it.Status)
	require.NotNil(t, it.CountedQuantity)
	assert.True(t, it.CountedQuantity.Equal(decimal.NewFromInt(7)))
	assert.True(t, it.Variance.Equal(decimal.NewFromInt(-3)), "varianza = contado - esperado")
	assert.True(t, it.RequiresApproval, "varianza distinta de cero exige aprobación")
	assert.False(t, it.IsApproved)
	assert.Equal(t, "user-1", it.CountedBy)
}

func TestCycleCountItem_RecordCount_SinVarianzaNoExigeAprobacion(t *testing.T) {
	it := &entity.CycleCountItem{
		Status:           entity.CountItemPending,
		ExpectedQuantity: decimal.NewFromInt(10),
	}
	require.NoError(t, it.RecordCount(decimal.NewFromInt(10), "user-1", time.Now().UTC()))
	assert.True(t, it.Variance.IsZero())
	assert.False(t, it.RequiresApproval)
}

func TestCycleCountItem_RecordCount_DesdeReconteo(t *testing.T) {
	it := &entity.CycleCountItem{
		Status:           entity.CountItemRecounting,
		ExpectedQuantity: decimal.NewFromInt(5),
	}
	require.NoError(t, it.RecordCount(decimal.NewFromInt(5), "user-2", time.Now().UTC()))
	assert.Equal(t, entity.CountItemCounted, it.Status)
}

func TestCycleCountItem_RecordCount_RechazadoSiYaAjustado(t *testing.T) {
	it := &entity.CycleCountItem{Status: entity.CountItemAdjusted}
	err := it.RecordCount(decimal.NewFromInt(1), "user-1", time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCycleCountSession_HasUnapprovedVariances(t *testing.T) {
	s := &entity.CycleCountSession{
		Items: []*entity.CycleCountItem{
			{RequiresApproval: false},
			{RequiresApproval: true, IsApproved: true},
		},
	}
	assert.False(t, s.HasUnapprovedVariances())

	s.Items = append(s.Items, &entity.CycleCountItem{RequiresApproval: true})
	assert.True(t, s.HasUnapprovedVariances())
}

func TestCycleCountSession_HasOpenItems(t *testing.T) {
	s := &entity.CycleCountSession{
		Items: []*entity.CycleCountItem{
			{Status: entity.CountItemCounted},
			{Status: entity.CountItemAdjusted},
		},
	}
	assert.False(t, s.HasOpenItems())

	s.Items = append(s.Items, &entity.CycleCountItem{Status: entity.CountItemRecounting})
	assert.True(t, s.HasOpenItems(), "un ítem en reconteo mantiene la sesión abierta")
}
