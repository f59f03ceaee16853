package upload

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"vidshare/internal/domain/session"
	"vidshare/internal/domain/video"
)

// DefaultTimeout - жёсткий предел времени передачи файла
const DefaultTimeout = 30 * time.Second

// State - состояние конвейера загрузки
type State int

const (
	StateIdle State = iota
	StateTransferring
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateTransferring:
		return "transferring"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Transferer передаёт файл во внешнее хранилище и возвращает его URL.
// progress вызывается с числом отправленных байт. Ошибки должны нести
// ErrTransport, ErrServer (*StatusError) или ErrResponse.
type Transferer interface {
	Transfer(ctx context.Context, src Source, progress func(sent int64)) (string, error)
}

// Request - параметры одной загрузки
type Request struct {
	Session session.Session
	Source  Source
	// Title по умолчанию - имя файла без расширения
	Title string
	// OnProgress получает проценты 0..100, не убывающие
	OnProgress func(percent int)
}

// Option настраивает конвейер
type Option func(*Pipeline)

// WithTimeout задаёт предел времени передачи
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// Pipeline передаёт файл и регистрирует видео. Одновременно идёт не более одной загрузки.
type Pipeline struct {
	transferer Transferer
	videos     video.Repository
	timeout    time.Duration
	log        *slog.Logger

	mu    sync.Mutex
	state State
}

func NewPipeline(transferer Transferer, videos video.Repository, log *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		transferer: transferer,
		videos:     videos,
		timeout:    DefaultTimeout,
		log:        log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State возвращает текущее состояние
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Transfer - дескриптор запущенной загрузки
type Transfer struct {
	cancel context.CancelFunc
	done   chan struct{}

	record video.Record
	err    error
}

// Cancel прерывает передачу файла и освобождает соединение.
// Начатая регистрация видео доводится до конца.
func (t *Transfer) Cancel() {
	t.cancel()
}

// Done закрывается по завершении загрузки
func (t *Transfer) Done() <-chan struct{} {
	return t.done
}

// Wait ждёт завершения и возвращает созданную запись
func (t *Transfer) Wait() (video.Record, error) {
	<-t.done
	return t.record, t.err
}

// Upload запускает загрузку и ждёт её завершения
func (p *Pipeline) Upload(ctx context.Context, req Request) (video.Record, error) {
	t, err := p.Start(ctx, req)
	if err != nil {
		return video.Record{}, err
	}
	return t.Wait()
}

// Start проверяет запрос и запускает передачу в фоне
func (p *Pipeline) Start(ctx context.Context, req Request) (*Transfer, error) {
	title, err := validate(req)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.state == StateTransferring {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	p.state = StateTransferring
	p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	t := &Transfer{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		defer cancel()
		t.record, t.err = p.run(runCtx, req, title)
	}()

	return t, nil
}

func validate(req Request) (string, error) {
	if req.Source.Reader == nil {
		return "", fmt.Errorf("%w: файл не выбран", ErrValidation)
	}
	if !req.Source.IsVideo() {
		return "", fmt.Errorf("%w: %s не является видео (%s)", ErrValidation, req.Source.Name, req.Source.ContentType)
	}
	if req.Session.UserID == "" {
		return "", fmt.Errorf("%w: загрузка доступна только пользователю", ErrValidation)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSpace(req.Source.DefaultTitle())
	}
	if title == "" {
		return "", fmt.Errorf("%w: название не может быть пустым", ErrValidation)
	}

	return title, nil
}

func (p *Pipeline) run(ctx context.Context, req Request, title string) (video.Record, error) {
	progress := newReporter(req.Source.Size, req.OnProgress)
	progress.emit(0)

	p.log.Info("Начало загрузки", "file", req.Source.Name, "size", req.Source.Size, "title", title)

	transferCtx, cancelTransfer := context.WithTimeout(ctx, p.timeout)
	url, err := p.transferer.Transfer(transferCtx, req.Source, progress.sent)
	timedOut := errors.Is(transferCtx.Err(), context.DeadlineExceeded)
	cancelTransfer()

	if ctx.Err() != nil {
		return video.Record{}, p.canceled(req)
	}

	if err != nil {
		err = classify(err, timedOut)
		p.finish(StateFailed)
		p.log.Error("Ошибка загрузки", "file", req.Source.Name, "error", err)
		return video.Record{}, err
	}

	// После начала регистрации отмена не действует: запись либо создаётся, либо нет
	rec, err := p.videos.Register(context.WithoutCancel(ctx), req.Session, title, url)
	if err != nil {
		p.finish(StateFailed)
		p.log.Error("Файл загружен, но видео не зарегистрировано", "url", url, "error", err)
		return video.Record{}, &RegistrationError{URL: url, Title: title, Err: err}
	}

	progress.emit(100)
	p.finish(StateCompleted)
	p.log.Info("Загрузка завершена", "video_id", rec.ID, "url", url)

	return rec, nil
}

func (p *Pipeline) canceled(req Request) error {
	p.finish(StateIdle)
	p.log.Info("Загрузка отменена", "file", req.Source.Name)
	return ErrCanceled
}

func (p *Pipeline) finish(state State) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

func classify(err error, timedOut bool) error {
	switch {
	case timedOut:
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, ErrServer), errors.Is(err, ErrResponse), errors.Is(err, ErrTransport):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
}

// reporter переводит байты в проценты и отбрасывает повторы и откаты
type reporter struct {
	mu    sync.Mutex
	total int64
	fn    func(int)
	last  int
}

func newReporter(total int64, fn func(int)) *reporter {
	return &reporter{total: total, fn: fn, last: -1}
}

func (r *reporter) sent(n int64) {
	if r.total <= 0 {
		return
	}
	r.emit(int(math.Round(float64(n) / float64(r.total) * 100)))
}

func (r *reporter) emit(percent int) {
	percent = min(max(percent, 0), 100)

	r.mu.Lock()
	defer r.mu.Unlock()
	if percent <= r.last {
		return
	}
	r.last = percent
	if r.fn != nil {
		r.fn(percent)
	}
}
