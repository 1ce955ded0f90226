package service

import "fmt"

const (
	CodeNotFound             = "NOT_FOUND"
	CodeValidation           = "VALIDATION_ERROR"
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeNoColumns            = "NO_COLUMNS"
	CodeUnauthenticated      = "UNAUTHENTICATED"
	CodeForbidden            = "FORBIDDEN"
	CodeCodeGenerationFailed = "CODE_GENERATION_FAILED"
	CodeDuplicateCode        = "DUPLICATE_CODE"
	CodeConflict             = "CONFLICT"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource string, id any) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %v не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewInvalidAmount(field string, value float64) *BusinessError {
	return NewBusinessError(CodeInvalidAmount,
		fmt.Sprintf("Недопустимое количество часов в поле '%s'", field),
		ToDetail("field", field), ToDetail("value", value))
}

func NewForbidden(message string) *BusinessError {
	return NewBusinessError(CodeForbidden, message)
}

func NewUnauthenticated() *BusinessError {
	return NewBusinessError(CodeUnauthenticated, "Требуется аутентификация")
}

// GenerationError - не удалось вывести код задачи для проекта.
func NewGenerationError(projectCode string, err error) *BusinessError {
	busErr := NewBusinessError(CodeCodeGenerationFailed, "Ошибка при генерации кода задачи",
		ToDetail("project_code", projectCode))
	busErr.Err = err
	return busErr
}
