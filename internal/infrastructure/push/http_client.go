package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"notifier/internal/domain"
)

const (
	userAgent       = "order-notifier/v1"
	maxResponseBody = 1 << 20
)

// SendError is returned when the push gateway rejects a message. Its Error text is the
// gateway's own message so it can be recorded verbatim.
type SendError struct {
	StatusCode int
	Message    string
}

func (e *SendError) Error() string { return e.Message }

type HTTPClientConfig struct {
	Endpoint  string
	AuthToken string
	// Timeout of zero leaves requests bounded only by the caller's context.
	Timeout time.Duration
}

// HTTPClient posts push messages to an FCM-style gateway:
// request {"message": {...}}, response {"name": "<message id>"}.
type HTTPClient struct {
	httpClient *http.Client
	endpoint   string
	authToken  string
	logger     *zap.Logger
}

type sendRequest struct {
	Message *domain.PushMessage `json:"message"`
}

type sendResponse struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func NewHTTPClient(cfg HTTPClientConfig, logger *zap.Logger) (*HTTPClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("push endpoint is required")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid push endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("push endpoint must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("push endpoint must include a host")
	}

	return &HTTPClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		authToken:  cfg.AuthToken,
		logger:     logger,
	}, nil
}

func (c *HTTPClient) Send(ctx context.Context, msg *domain.PushMessage) (string, error) {
	body, err := json.Marshal(sendRequest{Message: msg})
	if err != nil {
		return "", fmt.Errorf("marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("push request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("read push response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		sendErr := &SendError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("push gateway returned HTTP %d", resp.StatusCode)}
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			sendErr.Message = errResp.Error.Message
		}
		c.logger.Debug("Push gateway rejected message",
			zap.Int("status_code", resp.StatusCode),
			zap.String("device_token", RedactToken(msg.Token)),
			zap.String("reason", sendErr.Message))
		return "", sendErr
	}

	var out sendResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode push response: %w", err)
	}
	if out.Name == "" {
		return "", errors.New("push gateway response has no message name")
	}
	return out.Name, nil
}
