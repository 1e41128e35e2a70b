package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso los envuelven con fmt.Errorf("%w: detalle") para que el motivo sea específico;
// los llamadores comparan con errors.Is.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Flujo de traslados
	ErrInvalidTransition      = errors.New("transición no permitida desde el estado actual")
	ErrVerificationIncomplete = errors.New("hay ítems sin verificar")
	ErrAlreadyVerified        = errors.New("el ítem ya fue verificado")
	ErrImmutableState         = errors.New("el traslado está en un estado terminal")
)
