package domain

import "errors"

// Errores de dominio (sin dependencias externas). Todos son recuperables y
// se mapean a respuestas HTTP en la capa de interfaces; los fallos de
// infraestructura (DB caída) se propagan envueltos, nunca como estos.
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrInvalidTransition    = errors.New("transición de estado inválida")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrAlreadyProcessed     = errors.New("línea ya procesada")
	ErrRecountLimitExceeded = errors.New("límite de reconteos excedido")
)
