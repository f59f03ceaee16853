package session

import (
	"encoding/json"
	"fmt"
)

// Role - роль, определённая один раз при входе
type Role int

const (
	RoleRegularUser Role = iota
	RoleAdministrator
)

func (r Role) String() string {
	switch r {
	case RoleAdministrator:
		return "administrator"
	default:
		return "user"
	}
}

// View - экран, на который клиент должен перейти
type View string

const (
	ViewLogin View = "login"
	ViewHome  View = "home"
	ViewAdmin View = "admin"
)

// State - состояние менеджера сессий
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session - аутентифицированная личность текущего клиента.
// Значение неизменяемо: его передают компонентам явно.
type Session struct {
	UserID    string
	Username  string
	StudentID string
	Role      Role
}

// sessionJSON - формат хранения, совместимый с веб-клиентом
type sessionJSON struct {
	UserID    string `json:"userId,omitempty"`
	Username  string `json:"username"`
	StudentID string `json:"studentId"`
	IsAdmin   bool   `json:"isAdmin"`
}

// IsAdmin сообщает, вошёл ли администратор
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdministrator
}

// HomeView возвращает экран, соответствующий роли
func (s Session) HomeView() View {
	if s.IsAdmin() {
		return ViewAdmin
	}
	return ViewHome
}

// Validate проверяет согласованность сохранённой сессии
func (s Session) Validate() error {
	if s.Username == "" || s.StudentID == "" {
		return fmt.Errorf("в сессии нет имени пользователя или номера студента")
	}
	if s.Role == RoleRegularUser && s.UserID == "" {
		return fmt.Errorf("в сессии пользователя нет идентификатора")
	}
	return nil
}

func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{
		UserID:    s.UserID,
		Username:  s.Username,
		StudentID: s.StudentID,
		IsAdmin:   s.IsAdmin(),
	})
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	role := RoleRegularUser
	if raw.IsAdmin {
		role = RoleAdministrator
	}

	*s = Session{
		UserID:    raw.UserID,
		Username:  raw.Username,
		StudentID: raw.StudentID,
		Role:      role,
	}
	return nil
}
