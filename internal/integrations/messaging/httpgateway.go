package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const defaultPollInterval = 30 * time.Second

// HTTPTransport клиент HTTP-шлюза мессенджера
//
// Connect проверяет, что сессия шлюза авторизована, и затем периодически
// опрашивает статус. Отрицательный ответ означает потерю соединения.
type HTTPTransport struct {
	baseURL      string
	token        string
	httpClient   *http.Client
	pollInterval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// NewHTTPTransport создает новый экземпляр клиента шлюза
func NewHTTPTransport(baseURL, token string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		pollInterval: defaultPollInterval,
	}
}

// Connect проверяет сессию шлюза
func (t *HTTPTransport) Connect(ctx context.Context) (<-chan error, error) {
	if err := t.checkStatus(ctx); err != nil {
		return nil, err
	}

	stop := make(chan struct{})
	t.mu.Lock()
	if t.stop != nil {
		close(t.stop)
	}
	t.stop = stop
	t.mu.Unlock()

	lost := make(chan error, 1)
	go func() {
		ticker := time.NewTicker(t.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := t.checkStatus(context.Background()); err != nil {
					lost <- fmt.Errorf("%w: %v", ErrConnectionLost, err)
					return
				}
			}
		}
	}()

	return lost, nil
}

// Publish отправляет сообщение через POST {baseURL}/send
func (t *HTTPTransport) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(newPayload(msg))
	if err != nil {
		return fmt.Errorf("%w: failed to marshal message: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	t.setHeaders(req)
	req.Header.Set("X-Request-ID", msg.ID)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusServiceUnavailable:
		return ErrNotReady
	default:
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, readError(resp.Body))
	}
}

// Close останавливает опрос статуса
func (t *HTTPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	return nil
}

func (t *HTTPTransport) checkStatus(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/status", nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	t.setHeaders(req)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, readError(resp.Body))
	}

	var status gatewayStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("%w: failed to decode status: %v", ErrInvalidResponse, err)
	}
	if !status.Ready {
		return fmt.Errorf("%w: gateway state=%s", ErrUnauthorized, status.State)
	}

	return nil
}

func (t *HTTPTransport) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
}

func readError(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, 4096))
	var errResp ErrorResponse
	if json.Unmarshal(data, &errResp) == nil && errResp.Message != "" {
		return errResp.Message
	}
	return string(data)
}
