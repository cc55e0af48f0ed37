// Package sequence genera números de documento legibles por humanos.
package sequence

import (
	"fmt"
	"time"

	"github.com/tu-usuario/warehouse-pro/internal/domain/docnum"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

// NextDocumentNumber devuelve el siguiente número {PREFIX}-{yyyyMMdd}-{####}
// para la empresa. El contador diario se incrementa de forma atómica en la
// base; llamarlo dentro de la transacción del documento garantiza números
// sin huecos bajo concurrencia.
func NextDocumentNumber(seqs repository.SequenceRepository, companyID, prefix string, now time.Time) (string, error) {
	seq, err := seqs.Next(companyID, docnum.SequenceKey(prefix, now))
	if err != nil {
		return "", fmt.Errorf("secuencia de documento %s: %w", prefix, err)
	}
	return docnum.Document(prefix, now, seq), nil
}
