// Package docnum formatea números de documento y de movimiento.
// Los formatos son contrato con los registros de auditoría existentes:
// deben reproducirse bit a bit.
package docnum

import (
	"fmt"
	"time"
)

// Prefijos de documento por tipo de workflow.
const (
	PrefixAdjustment = "ADJ"
	PrefixCycleCount = "CC"
	PrefixPutaway    = "PA"
	PrefixReturn     = "RET"
)

// Document formatea {PREFIX}-{yyyyMMdd}-{seq:04d}, ej. ADJ-20250301-0007.
func Document(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format("20060102"), seq)
}

// MovementDaily formatea SM-{yyyyMMdd}-{seq:04d}, ej. SM-20250301-0004.
// Lo usan los posteos de ajustes (secuencia diaria por empresa).
func MovementDaily(day time.Time, seq int) string {
	return fmt.Sprintf("SM-%s-%04d", day.Format("20060102"), seq)
}

// MovementTimestamped formatea MOV-{yyyyMMddHHmmss}-{line:03d},
// ej. MOV-20250301154502-001. Lo usan putaway, devoluciones y conteos.
func MovementTimestamped(at time.Time, lineNumber int) string {
	return fmt.Sprintf("MOV-%s-%03d", at.Format("20060102150405"), lineNumber)
}

// SequenceKey clave de secuencia diaria: prefijo + fecha (para la tabla
// document_sequences). Dos llamadas el mismo día comparten contador.
func SequenceKey(prefix string, day time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, day.Format("20060102"))
}
