package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeCreateFailed  ErrorCode = "CREATE_FAILED"
	ErrCodeUpdateFailed  ErrorCode = "UPDATE_FAILED"
	ErrCodeDeleteFailed  ErrorCode = "DELETE_FAILED"
	ErrCodeResolveFailed ErrorCode = "RESOLVE_FAILED"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// WithStatus подменяет HTTP статус, если бэкенд вернул свой (например, 502).
func (e *AppError) WithStatus(status int) *AppError {
	if status > 0 {
		e.HTTPStatus = status
	}
	return e
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeResolveFailed:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeCreateFailed, ErrCodeUpdateFailed, ErrCodeDeleteFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeConflict
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

var (
	ErrUnauthorized       = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrProfileNotFound    = New(ErrCodeNotFound, "профиль не найден")
	ErrRowNotFound        = New(ErrCodeNotFound, "строка навыка не найдена")
	ErrDuplicateSkill     = New(ErrCodeConflict, "этот навык уже добавлен")
	ErrNothingToUpdate    = New(ErrCodeValidation, "нет полей для обновления")
	ErrCommitInProgress   = New(ErrCodeConflict, "сохранение уже выполняется")
	ErrSessionNotLoaded   = New(ErrCodeConflict, "список навыков ещё не загружен")
	ErrInvalidIdentifier  = New(ErrCodeValidation, "невалидный идентификатор строки")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "неверные учетные данные")
)
