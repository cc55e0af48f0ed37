package repository

// SequenceRepository puerto del contador de numeración de documentos.
// Next incrementa y devuelve el siguiente valor de la secuencia
// (companyID, key) de forma atómica; dos llamadas concurrentes sobre la
// misma clave se serializan en la base (sin huecos ni duplicados).
// key = prefijo + fecha, ej. "ADJ-20250301".
type SequenceRepository interface {
	Next(companyID, key string) (int, error)
}
