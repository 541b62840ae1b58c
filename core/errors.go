package core

// AttendanceError is a definitive business rejection. The message is what the
// field device shows the worker, so clients can tell these apart from
// transient infrastructure failures (which are plain wrapped errors and safe
// to retry).
type AttendanceError struct {
	Code    string
	Message string
}

func (e *AttendanceError) Error() string {
	return e.Message
}

var (
	ErrUserNotActive      = &AttendanceError{Code: "USER_NOT_ACTIVE", Message: "El usuario no está activo"}
	ErrCheckpointNotFound = &AttendanceError{Code: "CHECKPOINT_NOT_FOUND", Message: "Punto de control no encontrado"}
	ErrCheckpointInactive = &AttendanceError{Code: "CHECKPOINT_INACTIVE", Message: "El punto de control está inactivo"}
	ErrAccessDenied       = &AttendanceError{Code: "ACCESS_DENIED", Message: "No tiene acceso a este punto de control o producto"}
	ErrDuplicateEntry     = &AttendanceError{Code: "DUPLICATE_ENTRY", Message: "Ya tiene una entrada registrada hoy"}
	ErrDuplicateExit      = &AttendanceError{Code: "DUPLICATE_EXIT", Message: "Ya tiene una salida registrada hoy"}
	ErrMissingEntry       = &AttendanceError{Code: "MISSING_ENTRY", Message: "Debe registrar una entrada primero"}
	ErrInvalidLocation    = &AttendanceError{Code: "INVALID_LOCATION", Message: "Ubicación fuera del rango permitido"}
	ErrInvalidEventType   = &AttendanceError{Code: "INVALID_EVENT_TYPE", Message: "Tipo de evento no válido"}
)

// IsRejection reports whether err is a business rejection rather than an
// infrastructure failure. Rejections must not be retried blindly.
func IsRejection(err error) bool {
	_, ok := err.(*AttendanceError)
	return ok
}
