// Package remote is an ad backend served over HTTP through the shared
// HTTP client collaborator.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"ad-mediation/internal/backend"
	"ad-mediation/internal/httpclient"
	"ad-mediation/internal/placement"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const (
	LoadPath       = "/ads/load"
	ImpressionPath = "/ads/impression"

	defaultDisplay = 5 * time.Second
)

// Creative - ответ сервера на запрос загрузки
type Creative struct {
	Fill          bool    `json:"fill"`
	CreativeID    string  `json:"creative_id"`
	NetworkFirmID int     `json:"network_firm_id"`
	ECPM          float64 `json:"ecpm"`
	DurationMs    int     `json:"duration_ms"`
}

type Requester interface {
	Get(ctx context.Context, path string, params map[string]string, cb httpclient.Callback)
	PostForm(ctx context.Context, path string, params map[string]string, cb httpclient.Callback)
}

type Provider struct {
	client Requester
	clock  clockwork.Clock
	log    logrus.FieldLogger
}

var _ backend.Provider = (*Provider)(nil)

func NewProvider(client Requester, clock clockwork.Clock, log logrus.FieldLogger) *Provider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Provider{client: client, clock: clock, log: log.WithField("component", "remote")}
}

func (p *Provider) NewAd(category placement.Category, placementID string) (backend.Ad, error) {
	if p.client == nil {
		return nil, fmt.Errorf("remote backend has no http client")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Ad{
		provider:    p,
		category:    category,
		placementID: placementID,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

type Ad struct {
	provider    *Provider
	category    placement.Category
	placementID string
	ctx         context.Context
	cancel      context.CancelFunc

	mu       sync.Mutex
	listener backend.Listener
	creative *Creative
}

var _ backend.Ad = (*Ad)(nil)

func (a *Ad) SetListener(l backend.Listener) {
	a.mu.Lock()
	a.listener = l
	a.mu.Unlock()
}

func (a *Ad) Load() {
	params := map[string]string{
		"placement_id": a.placementID,
		"category":     strconv.Itoa(int(a.category)),
	}
	a.provider.client.Get(a.ctx, LoadPath, params, httpclient.CallbackFuncs{
		Success: a.onLoadResponse,
		Failure: func(msg string) {
			a.emit(backend.Event{Kind: backend.EventLoadFailed, Err: &backend.Error{Code: "network", Desc: msg}})
		},
	})
}

func (a *Ad) onLoadResponse(body string) {
	var c Creative
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		a.emit(backend.Event{Kind: backend.EventLoadFailed, Err: &backend.Error{Code: "decode", Desc: err.Error()}})
		return
	}
	if !c.Fill {
		a.emit(backend.Event{Kind: backend.EventLoadFailed, Err: &backend.Error{Code: "no_fill", Desc: "no ad available"}})
		return
	}
	a.mu.Lock()
	a.creative = &c
	a.mu.Unlock()
	a.emit(backend.Event{Kind: backend.EventLoaded, Info: a.info(&c)})
}

// Show отправляет impression; креатив считается закрытым по истечении его длительности
func (a *Ad) Show(ctx context.Context) bool {
	if ctx == nil || ctx.Err() != nil || a.ctx.Err() != nil {
		return false
	}
	a.mu.Lock()
	c := a.creative
	a.mu.Unlock()
	if c == nil {
		return false
	}

	info := a.info(c)
	params := map[string]string{
		"placement_id": a.placementID,
		"creative_id":  c.CreativeID,
	}
	a.provider.client.PostForm(a.ctx, ImpressionPath, params, httpclient.CallbackFuncs{
		Success: func(string) {
			a.emit(backend.Event{Kind: backend.EventShown, Info: info})
			display := time.Duration(c.DurationMs) * time.Millisecond
			if display <= 0 {
				display = defaultDisplay
			}
			a.provider.clock.AfterFunc(display, func() {
				if a.category == placement.CategoryRewardedVideo {
					a.emit(backend.Event{Kind: backend.EventRewarded, Info: info})
				}
				a.emit(backend.Event{Kind: backend.EventClosed, Info: info, Dismiss: backend.DismissTimeOver})
			})
		},
		Failure: func(msg string) {
			a.emit(backend.Event{Kind: backend.EventShowFailed, Err: &backend.Error{Code: "network", Desc: msg}})
		},
	})
	return true
}

// Destroy отменяет незавершенные запросы, дальнейшие события не доставляются
func (a *Ad) Destroy() {
	a.cancel()
	a.SetListener(nil)
}

func (a *Ad) info(c *Creative) backend.Info {
	return backend.Info{NetworkFirmID: c.NetworkFirmID, AdsourceID: c.CreativeID, ECPM: c.ECPM}
}

func (a *Ad) emit(ev backend.Event) {
	a.mu.Lock()
	l := a.listener
	a.mu.Unlock()
	if l == nil || a.ctx.Err() != nil {
		a.provider.log.WithField("event", ev.Kind.String()).Debug("remote ad detached, event dropped")
		return
	}
	l(ev)
}
