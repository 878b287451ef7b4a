package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo carries a parsed error code and its user-facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError classifies a persistence error into a code and a Spanish
// message. Sensitive driver details are never surfaced.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: FallbackMessage}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		if strings.Contains(errStrLower, "license_number") {
			return ErrorInfo{
				Code:    ResourceAlreadyExists,
				Message: "Ya existe un local con esta patente.",
			}
		}
		if strings.Contains(errStrLower, "national_id") {
			return ErrorInfo{
				Code:    ResourceAlreadyExists,
				Message: "Ya existe un representante con este rut.",
			}
		}
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "Ya existen estos datos.",
		}
	}

	// Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "No se ha encontrado el dato referenciado.",
		}
	}

	// Not null constraint violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "Falta un campo obligatorio.",
		}
	}

	// Connection errors
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: FallbackMessage,
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: FallbackMessage,
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "memo") {
		return "No se ha encontrado ningún memo con esta patente."
	}
	if strings.Contains(contextLower, "local") {
		return "No se ha encontrado el local."
	}
	if strings.Contains(contextLower, "representative") {
		return "No se ha encontrado el representante."
	}

	return "No se han encontrado los datos solicitados."
}
