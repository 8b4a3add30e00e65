package apperror

import (
	"errors"
	"net/http"
)

// HTTPError adalah bentuk final error yang siap ditulis ke response envelope
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP memetakan error apapun ke HTTPError.
// AppError dipetakan apa adanya; error lain dianggap internal agar
// detail infrastruktur tidak bocor ke client.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: "Internal server error",
	}
}
