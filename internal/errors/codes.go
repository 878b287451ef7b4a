package errors

// Error code constants, format CATEGORY_SPECIFIC_DETAIL. The frontend maps
// these codes to its own messages; the Message field is a Spanish fallback.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidDate  = "VALIDATION_INVALID_DATE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Import (IMPORT_) ====================
	ImportInvalidFile = "IMPORT_INVALID_FILE"
	ImportEmptySheet  = "IMPORT_EMPTY_SHEET"
	ImportFailed      = "IMPORT_FAILED"

	// ==================== Export (EXPORT_) ====================
	ExportFailed = "EXPORT_FAILED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	MemoNotFound          = "MEMO_NOT_FOUND"
	LocalNotFound         = "LOCAL_NOT_FOUND"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)

// FallbackMessage is the generic service error shown when nothing more
// specific applies.
const FallbackMessage = "Hubo un problema en el servidor, inténtelo más tarde."
