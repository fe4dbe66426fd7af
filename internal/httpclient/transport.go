package httpclient

import (
	"net/http"
	"time"

	"ad-mediation/internal/prefs"

	"github.com/sirupsen/logrus"
)

// tokenTransport добавляет заголовок token, если токен сохранен.
// Отсутствие токена не ошибка: запрос уходит без авторизации.
type tokenTransport struct {
	next   http.RoundTripper
	tokens prefs.Store
	log    logrus.FieldLogger
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens == nil {
		return t.next.RoundTrip(req)
	}
	token, err := t.tokens.GetString(req.Context(), prefs.NamespaceUserInfo, prefs.KeyToken, "")
	if err != nil {
		t.log.WithError(err).Warn("failed to read auth token")
	}
	if token == "" {
		return t.next.RoundTrip(req)
	}

	authorised := req.Clone(req.Context())
	authorised.Header.Set(TokenHeader, token)
	return t.next.RoundTrip(authorised)
}

// loggingTransport пишет метод, адрес, код ответа и длительность
type loggingTransport struct {
	next http.RoundTripper
	log  logrus.FieldLogger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	entry := t.log.WithFields(logrus.Fields{
		"method":   req.Method,
		"url":      req.URL.String(),
		"duration": time.Since(start),
	})
	if err != nil {
		entry.WithError(err).Debug("http request failed")
		return nil, err
	}
	entry.WithField("status", resp.StatusCode).Debug("http request")
	return resp, nil
}
