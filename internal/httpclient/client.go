// Package httpclient is the asynchronous HTTP collaborator. It attaches the
// stored auth token to every request and delivers results through the
// dispatcher.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ad-mediation/internal/prefs"

	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout = 10 * time.Second
	TokenHeader    = "token"
	contentJSON    = "application/json; charset=utf-8"
)

// Callback получает результат запроса на горутине диспетчера
type Callback interface {
	OnSuccess(response string)
	OnFailure(errMsg string)
}

// CallbackFuncs адаптирует пару функций к Callback
type CallbackFuncs struct {
	Success func(response string)
	Failure func(errMsg string)
}

func (f CallbackFuncs) OnSuccess(response string) {
	if f.Success != nil {
		f.Success(response)
	}
}

func (f CallbackFuncs) OnFailure(errMsg string) {
	if f.Failure != nil {
		f.Failure(errMsg)
	}
}

type Dispatcher interface {
	Run(task func())
}

// StatusError - ответ с кодом вне диапазона 2xx
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed, status code: %d", e.Code)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	http       *http.Client
	dispatcher Dispatcher
	log        logrus.FieldLogger
}

// New создает клиент. Хранилище токенов должно быть готово до первого запроса.
func New(cfg Config, tokens prefs.Store, d Dispatcher, log logrus.FieldLogger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "httpclient")

	var transport http.RoundTripper = http.DefaultTransport
	transport = &tokenTransport{next: transport, tokens: tokens, log: log}
	transport = &loggingTransport{next: transport, log: log}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		http:       &http.Client{Timeout: cfg.Timeout, Transport: transport},
		dispatcher: d,
		log:        log,
	}
}

// resolve дополняет относительный путь базовым адресом
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) Get(ctx context.Context, path string, params map[string]string, cb Callback) {
	target := c.resolve(path)
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + q.Encode()
	}
	c.enqueue(ctx, http.MethodGet, target, nil, "", cb)
}

func (c *Client) PostForm(ctx context.Context, path string, params map[string]string, cb Callback) {
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	c.enqueue(ctx, http.MethodPost, c.resolve(path), []byte(form.Encode()), "application/x-www-form-urlencoded", cb)
}

func (c *Client) PostJSON(ctx context.Context, path, body string, cb Callback) {
	c.enqueue(ctx, http.MethodPost, c.resolve(path), []byte(body), contentJSON, cb)
}

// PostObject сериализует v в JSON и отправляет POST
func (c *Client) PostObject(ctx context.Context, path string, v any, cb Callback) {
	data, err := json.Marshal(v)
	if err != nil {
		c.deliver(cb, "", fmt.Errorf("failed to marshal body: %w", err))
		return
	}
	c.enqueue(ctx, http.MethodPost, c.resolve(path), data, contentJSON, cb)
}

func (c *Client) enqueue(ctx context.Context, method, target string, body []byte, contentType string, cb Callback) {
	go func() {
		resp, err := c.Do(ctx, method, target, body, contentType)
		c.deliver(cb, resp, err)
	}()
}

// Do выполняет запрос синхронно на вызывающей горутине
func (c *Client) Do(ctx context.Context, method, target string, body []byte, contentType string) (string, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.WithError(err).Debug("error closing response body")
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return string(data), &StatusError{Code: resp.StatusCode}
	}
	return string(data), nil
}

func (c *Client) deliver(cb Callback, body string, err error) {
	if cb == nil {
		return
	}
	task := func() {
		if err != nil {
			cb.OnFailure(err.Error())
			return
		}
		cb.OnSuccess(body)
	}
	if c.dispatcher == nil {
		task()
		return
	}
	c.dispatcher.Run(task)
}
