package apperror

import "fmt"

// AppError adalah error lintas layer: service mengembalikan sentinel
// AppError, handler memetakannya ke respons HTTP lewat ToHTTP.
type AppError struct {
	Code       string // kode stabil untuk klien (mis. INVALID_INPUT)
	Message    string // pesan yang aman ditampilkan ke user
	HTTPStatus int
	Err        error // error asli, opsional
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New membuat sentinel AppError tanpa error pembungkus.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        nil,
	}
}

// Wrap membungkus error infrastruktur dengan kode dan status yang stabil.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}
