package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
)

// максимальный размер тела ответа, который читаем целиком
const maxResponseBody = 4 << 20

type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration
	// BreakerFailures - сколько подряд неудач размыкает цепь
	BreakerFailures uint32
	// BreakerTimeout - сколько цепь остается разомкнутой
	BreakerTimeout time.Duration
	HTTPClient     *http.Client
}

func DefaultGatewayConfig(baseURL string) GatewayConfig {
	return GatewayConfig{
		BaseURL:         baseURL,
		Timeout:         10 * time.Second,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// TaskGateway - HTTP клиент к API задач
type TaskGateway struct {
	baseURL *url.URL
	http    *http.Client
	tokens  oauth2.TokenSource
	breaker *gobreaker.CircuitBreaker[*response]
	log     logrus.FieldLogger
}

type response struct {
	status int
	body   []byte
	// taskMissing - 404 пришел от API задач, а не от неверного адреса
	taskMissing bool
}

func NewTaskGateway(cfg GatewayConfig, tokens oauth2.TokenSource, log logrus.FieldLogger) (*TaskGateway, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid tasks api url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid tasks api url %q: scheme must be http or https", cfg.BaseURL)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	g := &TaskGateway{
		baseURL: base,
		http:    httpClient,
		tokens:  tokens,
		log:     log,
	}
	g.breaker = gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        "tasks-api",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("состояние circuit breaker изменилось")
		},
	})

	return g, nil
}

func (g *TaskGateway) List(ctx context.Context) ([]entity.Task, error) {
	var tasks []entity.Task
	if err := g.do(ctx, entity.OpLoad, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	for i := range tasks {
		if err := checkTask(&tasks[i]); err != nil {
			return nil, &entity.OperationError{Op: entity.OpLoad, Err: err}
		}
	}
	if tasks == nil {
		tasks = []entity.Task{}
	}
	return tasks, nil
}

func (g *TaskGateway) Get(ctx context.Context, id string) (*entity.Task, error) {
	var task entity.Task
	if err := g.do(ctx, entity.OpLoad, http.MethodGet, taskPath(id), nil, &task); err != nil {
		return nil, err
	}
	if err := checkTask(&task); err != nil {
		return nil, &entity.OperationError{Op: entity.OpLoad, Err: err}
	}
	return &task, nil
}

func (g *TaskGateway) Create(ctx context.Context, draft entity.TaskDraft) (*entity.Task, error) {
	var task entity.Task
	if err := g.do(ctx, entity.OpCreate, http.MethodPost, "/tasks", draft, &task); err != nil {
		return nil, err
	}
	if err := checkTask(&task); err != nil {
		return nil, &entity.OperationError{Op: entity.OpCreate, Err: err}
	}
	return &task, nil
}

func (g *TaskGateway) Update(ctx context.Context, id string, patch entity.TaskPatch) (*entity.Task, error) {
	var task entity.Task
	if err := g.do(ctx, entity.OpUpdate, http.MethodPut, taskPath(id), patch, &task); err != nil {
		return nil, err
	}
	if err := checkTask(&task); err != nil {
		return nil, &entity.OperationError{Op: entity.OpUpdate, Err: err}
	}
	return &task, nil
}

func (g *TaskGateway) Delete(ctx context.Context, id string) error {
	return g.do(ctx, entity.OpDelete, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

// checkTask - запись от сервера должна иметь id и допустимый статус
func checkTask(t *entity.Task) error {
	if t.ID == "" {
		return fmt.Errorf("%w: task without id", entity.ErrMalformedResponse)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: task %s has unknown status %q", entity.ErrMalformedResponse, t.ID, t.Status)
	}
	return nil
}

func (g *TaskGateway) bearer() (string, error) {
	if g.tokens == nil {
		return "", entity.ErrUnauthorized
	}
	token, err := g.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrUnauthorized, err)
	}
	if token == nil || token.AccessToken == "" {
		return "", entity.ErrUnauthorized
	}
	return token.AccessToken, nil
}

func (g *TaskGateway) do(ctx context.Context, op entity.Operation, method, path string, in, out any) error {
	fail := func(err error) error {
		return &entity.OperationError{Op: op, Err: err}
	}

	// Без токена запрос не отправляем
	token, err := g.bearer()
	if err != nil {
		return fail(err)
	}

	var body []byte
	if in != nil {
		if body, err = json.Marshal(in); err != nil {
			return fail(err)
		}
	}

	requestID := uuid.NewString()
	log := g.log.WithFields(logrus.Fields{"op": op, "method": method, "path": path, "request_id": requestID})

	resp, err := g.breaker.Execute(func() (*response, error) {
		return g.roundTrip(ctx, method, path, token, requestID, body)
	})
	if err != nil {
		log.WithError(err).Debug("запрос к API задач не удался")
		return fail(err)
	}

	switch {
	case resp.status == http.StatusUnauthorized:
		return fail(entity.ErrUnauthorized)
	case resp.status == http.StatusForbidden:
		return fail(entity.ErrForbidden)
	case resp.status == http.StatusNotFound && resp.taskMissing:
		return fail(entity.ErrTaskNotFound)
	case resp.status < 200 || resp.status > 299:
		return fail(&entity.RemoteError{StatusCode: resp.status, Message: strings.TrimSpace(string(resp.body))})
	}

	log.WithField("status", resp.status).Debug("запрос к API задач выполнен")

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fail(fmt.Errorf("%w: %v", entity.ErrMalformedResponse, err))
	}
	return nil
}

// roundTrip возвращает ошибку только для сетевых сбоев и 5xx,
// их и считает circuit breaker
func (g *TaskGateway) roundTrip(ctx context.Context, method, path, token, requestID string, body []byte) (*response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL.String()+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, err
	}

	resp := &response{
		status:      httpResp.StatusCode,
		body:        data,
		taskMissing: httpResp.Header.Get(entity.TaskNotFoundHeader) != "",
	}
	if resp.status >= 500 {
		return nil, &entity.RemoteError{StatusCode: resp.status, Message: strings.TrimSpace(string(data))}
	}
	return resp, nil
}
