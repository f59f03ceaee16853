package user

import "unicode/utf8"

const (
	CodeFieldsRequired  = "fields_required"
	CodeStudentIDLength = "student_id_length"
)

// Validator - интерфейс для валидации данных входа
type Validator interface {
	Validate(creds Credentials) error
}

type CredentialsValidator struct {
	studentIDLen int
}

// NewCredentialsValidator создает новый валидатор
func NewCredentialsValidator() *CredentialsValidator {
	return &CredentialsValidator{studentIDLen: StudentIDLen}
}

// Validate проверяет, что все поля заполнены и номер студента нужной длины
func (v *CredentialsValidator) Validate(creds Credentials) error {
	if creds.Username == "" || creds.StudentID == "" || creds.Password == "" {
		return invalidInput(CodeFieldsRequired, "username, student id and password are required")
	}

	if utf8.RuneCountInString(creds.StudentID) != v.studentIDLen {
		return invalidInput(CodeStudentIDLength, "student id must be exactly 4 characters")
	}

	return nil
}
