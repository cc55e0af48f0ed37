package cyclecount

import (
	"context"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// CountSheetLine línea imprimible de la hoja de conteo.
type CountSheetLine struct {
	LineNumber   int
	LocationCode string
	SKU          string
	ProductName  string
	BatchNumber  string
	// Expected va vacío cuando la sesión es de conteo ciego.
	Expected string
}

// CountSheetGenerator puerto para generar la hoja de conteo imprimible
// (PDF) que el operario lleva al pasillo.
type CountSheetGenerator interface {
	GenerateCountSheet(ctx context.Context, session *entity.CycleCountSession, lines []CountSheetLine) ([]byte, error)
}
