package docnum_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/warehouse-pro/internal/domain/docnum"
)

var day = time.Date(2025, 3, 1, 15, 45, 2, 0, time.UTC)

// Los formatos de numeración son contrato con los registros de auditoría:
// se verifican bit a bit.
func TestDocument_Formato(t *testing.T) {
	assert.Equal(t, "ADJ-20250301-0001", docnum.Document(docnum.PrefixAdjustment, day, 1))
	assert.Equal(t, "CC-20250301-0023", docnum.Document(docnum.PrefixCycleCount, day, 23))
	assert.Equal(t, "PA-20250301-0456", docnum.Document(docnum.PrefixPutaway, day, 456))
	assert.Equal(t, "RET-20250301-7890", docnum.Document(docnum.PrefixReturn, day, 7890))
}

func TestDocument_SecuenciaSobreCuatroDigitos(t *testing.T) {
	// El padding es mínimo cuatro dígitos; secuencias mayores no se truncan.
	assert.Equal(t, "ADJ-20250301-12345", docnum.Document(docnum.PrefixAdjustment, day, 12345))
}

func TestMovementDaily_Formato(t *testing.T) {
	assert.Equal(t, "SM-20250301-0004", docnum.MovementDaily(day, 4))
}

func TestMovementTimestamped_Formato(t *testing.T) {
	assert.Equal(t, "MOV-20250301154502-001", docnum.MovementTimestamped(day, 1))
	assert.Equal(t, "MOV-20250301154502-012", docnum.MovementTimestamped(day, 12))
}

func TestSequenceKey_CompartidaPorDia(t *testing.T) {
	assert.Equal(t, "SM-20250301", docnum.SequenceKey("SM", day))
	// Mismo día a otra hora -> misma clave (contador diario compartido).
	otraHora := time.Date(2025, 3, 1, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, docnum.SequenceKey("SM", day), docnum.SequenceKey("SM", otraHora))
	// Día distinto -> clave distinta.
	otroDia := day.AddDate(0, 0, 1)
	assert.NotEqual(t, docnum.SequenceKey("SM", day), docnum.SequenceKey("SM", otroDia))
}
