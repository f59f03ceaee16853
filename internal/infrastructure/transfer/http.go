package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"vidshare/internal/domain/upload"
)

const (
	// DefaultFieldName - поле multipart-формы с файлом
	DefaultFieldName = "file"
	maxErrorBody     = 4 * 1024
)

// HTTPConfig - параметры конечной точки загрузки файлов
type HTTPConfig struct {
	URL       string
	APIKey    string
	FieldName string
}

// HTTPTransferer отправляет файл multipart-запросом и читает {"url": ...} из ответа
type HTTPTransferer struct {
	client    *http.Client
	log       *slog.Logger
	url       string
	apiKey    string
	fieldName string
}

type uploadResponse struct {
	URL string `json:"url"`
}

func NewHTTPTransferer(cfg HTTPConfig, log *slog.Logger) (*HTTPTransferer, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("адрес загрузки файлов не задан")
	}

	fieldName := cfg.FieldName
	if fieldName == "" {
		fieldName = DefaultFieldName
	}

	return &HTTPTransferer{
		// Общий предел времени задаёт конвейер через контекст
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
		log:       log,
		url:       cfg.URL,
		apiKey:    cfg.APIKey,
		fieldName: fieldName,
	}, nil
}

func (t *HTTPTransferer) Transfer(ctx context.Context, src upload.Source, progress func(int64)) (string, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		pw.CloseWithError(t.writeForm(form, src, progress))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, pr)
	if err != nil {
		pr.Close()
		<-writerDone
		return "", fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	t.log.Debug("Отправка файла", "url", t.url, "file", src.Name, "size", src.Size)

	resp, err := t.client.Do(req)
	// Останавливаем запись формы, если сервер ответил до конца передачи
	pr.Close()
	<-writerDone
	if err != nil {
		return "", fmt.Errorf("%w: %w", upload.ErrTransport, err)
	}
	defer resp.Body.Close()

	return t.parseResponse(resp)
}

func (t *HTTPTransferer) writeForm(form *multipart.Writer, src upload.Source, progress func(int64)) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, t.fieldName, src.Name))
	header.Set("Content-Type", src.ContentType)

	part, err := form.CreatePart(header)
	if err != nil {
		return err
	}

	if _, err := io.Copy(part, newCountingReader(src.Reader, progress)); err != nil {
		return err
	}

	return form.Close()
}

func (t *HTTPTransferer) parseResponse(resp *http.Response) (string, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &upload.StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: ошибка чтения ответа: %w", upload.ErrTransport, err)
	}

	var result uploadResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: ответ не JSON: %w", upload.ErrResponse, err)
	}
	if strings.TrimSpace(result.URL) == "" {
		return "", fmt.Errorf("%w: в ответе нет url", upload.ErrResponse)
	}

	return result.URL, nil
}
