package errors

// APIError status code taşıyan error'lar için interface
type APIError interface {
	error
	Status() int
}

// AuthError authentication hatası için custom error type
type AuthError struct {
	Message    string
	StatusCode int
}

// Error AuthError'un error interface implementation'ı
func (e *AuthError) Error() string {
	return e.Message
}

// Status AuthError'un APIError interface implementation'ı
func (e *AuthError) Status() int {
	return e.StatusCode
}

// ValidationError istek doğrulama hatası için custom error type
type ValidationError struct {
	Message    string
	StatusCode int
	Field      string
}

// Error ValidationError'un error interface implementation'ı
func (e *ValidationError) Error() string {
	return e.Message
}

// Status ValidationError'un APIError interface implementation'ı
func (e *ValidationError) Status() int {
	return e.StatusCode
}
