package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador de numeración de documentos sobre PostgreSQL.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el siguiente valor de la secuencia
// (companyID, key) de forma atómica. El upsert bloquea la fila hasta el
// commit, así dos llamadas concurrentes sobre la misma clave se serializan
// sin huecos ni duplicados.
func (r *SequenceRepo) Next(companyID, key string) (int, error) {
	query := `
		INSERT INTO document_sequences (company_id, sequence_key, last_seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, sequence_key)
		DO UPDATE SET last_seq = document_sequences.last_seq + 1
		RETURNING last_seq`
	var seq int
	if err := r.q.QueryRow(context.Background(), query, companyID, key).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", key, err)
	}
	return seq, nil
}
