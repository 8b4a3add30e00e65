package apperror

// Kode stabil yang dikirim ke klien pada field error.code.
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	// CodeConflict untuk balapan, mis. dua approver memutus step yang sama.
	CodeConflict = "CONFLICT"
	// CodeInvalidState untuk transisi status expense yang tidak sah.
	CodeInvalidState = "INVALID_STATE"

	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
