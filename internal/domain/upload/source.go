package upload

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const sniffLen = 512

// videoTypes дополняет системную таблицу: в базовой таблице Go видео нет
var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".ogv":  "video/ogg",
}

// TypeByName определяет тип файла по расширению, пусто если неизвестен
func TypeByName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := videoTypes[ext]; ok {
		return t
	}
	return mime.TypeByExtension(ext)
}

// Source - загружаемый файл
type Source struct {
	Name        string
	ContentType string
	// Size в байтах, 0 если неизвестен
	Size   int64
	Reader io.Reader
}

// Close закрывает Reader, если он это умеет
func (s Source) Close() error {
	if c, ok := s.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// IsVideo сообщает, распознан ли тип файла как видео
func (s Source) IsVideo() bool {
	mediaType, _, err := mime.ParseMediaType(s.ContentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "video/")
}

// DefaultTitle - имя файла без каталога и расширения
func (s Source) DefaultTitle() string {
	base := filepath.Base(s.Name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OpenFile открывает локальный файл. Тип определяется по расширению,
// а если расширение неизвестно - по содержимому.
func OpenFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return Source{}, fmt.Errorf("ошибка открытия файла: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return Source{}, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return Source{}, fmt.Errorf("%w: %s является каталогом", ErrValidation, path)
	}

	contentType := TypeByName(path)
	if contentType == "" {
		contentType, err = sniff(f)
		if err != nil {
			f.Close()
			return Source{}, err
		}
	}

	return Source{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		Reader:      f,
	}, nil
}

func sniff(f *os.File) (string, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("ошибка чтения файла: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}
