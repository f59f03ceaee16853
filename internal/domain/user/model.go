package user

import "strings"

// Зарезервированная учётная запись администратора. В коллекции user её нет,
// вход под ней проверяется локально.
const (
	AdminUsername  = "admin"
	AdminStudentID = "0000"
	AdminPassword  = "adminstrator"
)

// StudentIDLen - длина номера студента
const StudentIDLen = 4

// Record - запись коллекции user
type Record struct {
	ID        string `json:"-"`
	Username  string `json:"username"`
	StudentID string `json:"studentId"`
	Password  string `json:"password"` // открытый текст (старые записи) или bcrypt-хэш
}

// Credentials - данные, введённые при входе
type Credentials struct {
	Username  string
	StudentID string
	Password  string
}

// IsAdmin сообщает, совпадают ли данные с зарезервированной тройкой администратора
func (c Credentials) IsAdmin() bool {
	return c.Username == AdminUsername &&
		c.StudentID == AdminStudentID &&
		c.Password == AdminPassword
}

// IsReservedIdentity сообщает, принадлежит ли пара (username, studentId) администратору
func IsReservedIdentity(username, studentID string) bool {
	return username == AdminUsername && studentID == AdminStudentID
}

// Normalize убирает пробелы по краям имени и номера студента. Пароль не трогается.
func (c Credentials) Normalize() Credentials {
	return Credentials{
		Username:  strings.TrimSpace(c.Username),
		StudentID: strings.TrimSpace(c.StudentID),
		Password:  c.Password,
	}
}
