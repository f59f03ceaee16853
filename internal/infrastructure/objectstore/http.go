package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"
)

// HTTPConfig - параметры подключения к сервису хранилища объектов
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RPS ограничивает частоту запросов клиента. 0 - без ограничения.
	RPS float64
}

// HTTPStore - клиент внешнего сервиса хранилища объектов
type HTTPStore struct {
	client    *http.Client
	log       *slog.Logger
	limiter   *rate.Limiter
	baseURL   string
	apiKey    string
	userAgent string
}

type wireItem struct {
	ObjectID   string          `json:"objectId"`
	ID         string          `json:"id"`
	ObjectData json.RawMessage `json:"objectData"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func (w wireItem) item() Item {
	id := w.ObjectID
	if id == "" {
		id = w.ID
	}
	return Item{ID: id, Data: w.ObjectData, CreatedAt: w.CreatedAt}
}

func NewHTTPStore(cfg HTTPConfig, log *slog.Logger) (*HTTPStore, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("адрес хранилища объектов не задан")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("некорректный адрес хранилища объектов: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		burst := int(cfg.RPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &HTTPStore{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		log:       log,
		limiter:   limiter,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		userAgent: "VidShare-Client/1.0",
	}, nil
}

// List запрашивает до limit объектов коллекции
func (h *HTTPStore) List(ctx context.Context, collection string, limit int, newestFirst bool) ([]Item, error) {
	order := "asc"
	if newestFirst {
		order = "desc"
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(normalizeLimit(limit)))
	query.Set("order", order)

	resp, err := h.doRequest(ctx, http.MethodGet, h.objectsPath(collection)+"?"+query.Encode(), nil)
	if err != nil {
		return nil, transportError("list "+collection, err)
	}

	var listResp struct {
		Items []wireItem `json:"items"`
	}
	if err := h.parseResponse(resp, &listResp); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	items := make([]Item, 0, len(listResp.Items))
	for _, w := range listResp.Items {
		items = append(items, w.item())
	}

	return items, nil
}

// Create добавляет объект в коллекцию
func (h *HTTPStore) Create(ctx context.Context, collection string, data any) (Item, error) {
	body := struct {
		ObjectData any `json:"objectData"`
	}{ObjectData: data}

	resp, err := h.doRequest(ctx, http.MethodPost, h.objectsPath(collection), body)
	if err != nil {
		return Item{}, transportError("create "+collection, err)
	}

	var created wireItem
	if err := h.parseResponse(resp, &created); err != nil {
		return Item{}, fmt.Errorf("create %s: %w", collection, err)
	}

	item := created.item()
	if item.ID == "" {
		return Item{}, serverError("create "+collection, fmt.Errorf("сервер не вернул идентификатор объекта"))
	}

	return item, nil
}

func (h *HTTPStore) objectsPath(collection string) string {
	return "/collections/" + url.PathEscape(collection) + "/objects"
}

func (h *HTTPStore) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	h.log.Debug("Отправка запроса",
		"method", method,
		"url", req.URL.String(),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return resp, nil
}

func (h *HTTPStore) parseResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w: %w", ErrTransport, err)
	}

	h.log.Debug("Получен ответ",
		"status", resp.StatusCode,
		"bytes", len(body),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, &errResp); err == nil {
			statusErr.Message = errResp.Error
		}
		return statusErr
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w: %w", ErrServer, err)
		}
	}

	return nil
}
