package video

import "time"

// Record - запись коллекции video. Создаётся один раз на успешную загрузку и не меняется.
type Record struct {
	ID         string    `json:"-"`
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	StudentID  string    `json:"studentId"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	UploadDate time.Time `json:"uploadDate"`
}
