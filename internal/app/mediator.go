package app

import (
	"ad-mediation/internal/ad"
	"ad-mediation/internal/backend"
	"ad-mediation/internal/placement"
	"ad-mediation/internal/prefs"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// historyLimit - сколько последних уведомлений хранится на блок
const historyLimit = 50

// MediatorInterface определяет контракт для управления рекламными блоками
type MediatorInterface interface {
	CreateUnit(ctx context.Context, category placement.Category, key string) (UnitStatus, error)
	Load(ctx context.Context, id string) (UnitStatus, error)
	Show(ctx context.Context, id string) (UnitStatus, error)
	Destroy(ctx context.Context, id string) error
	Status(ctx context.Context, id string) (UnitStatus, error)
	List(ctx context.Context) []UnitStatus
	SetToken(ctx context.Context, token string) error
}

var _ MediatorInterface = (*Mediator)(nil)

var (
	ErrUnitNotFound = errors.New("ad unit not found")
	ErrNotReady     = errors.New("ad is not ready to show")
	ErrEmptyToken   = errors.New("token is empty")
)

// UnitStatus - снимок состояния блока
type UnitStatus struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	PlacementID string   `json:"placement_id"`
	State       string   `json:"state"`
	Ready       bool     `json:"ready"`
	History     []string `json:"history"`
}

// Mediator - реестр рекламных блоков приложения
type Mediator struct {
	ctx    context.Context
	env    ad.Env
	tokens prefs.Store
	log    logrus.FieldLogger

	mu    sync.RWMutex
	units map[string]*entry
}

type entry struct {
	unit    ad.Unit
	history *history
}

// NewMediator создает реестр. Блоки живут, пока не отменен ctx.
func NewMediator(ctx context.Context, env ad.Env, tokens prefs.Store, log logrus.FieldLogger) *Mediator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Mediator{
		ctx:    ctx,
		env:    env,
		tokens: tokens,
		log:    log.WithField("component", "mediator"),
		units:  make(map[string]*entry),
	}
}

// CreateUnit создает блок категории и подписывает на него журнал уведомлений
func (m *Mediator) CreateUnit(_ context.Context, category placement.Category, key string) (UnitStatus, error) {
	unit, err := ad.New(m.ctx, m.env, category, key)
	if err != nil {
		return UnitStatus{}, fmt.Errorf("failed to create unit: %w", err)
	}

	h := &history{}
	attach(unit, h)

	m.mu.Lock()
	m.units[unit.ID()] = &entry{unit: unit, history: h}
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{
		"unit":      unit.ID(),
		"category":  category.String(),
		"placement": unit.PlacementID(),
	}).Info("ad unit created")
	return snapshot(unit, h), nil
}

// Load запускает загрузку; отказ охранного условия не ошибка
func (m *Mediator) Load(_ context.Context, id string) (UnitStatus, error) {
	e, err := m.get(id)
	if err != nil {
		return UnitStatus{}, err
	}
	e.unit.LoadAd()
	return snapshot(e.unit, e.history), nil
}

func (m *Mediator) Show(_ context.Context, id string) (UnitStatus, error) {
	e, err := m.get(id)
	if err != nil {
		return UnitStatus{}, err
	}
	if !e.unit.ShowAd() {
		return snapshot(e.unit, e.history), ErrNotReady
	}
	return snapshot(e.unit, e.history), nil
}

func (m *Mediator) Destroy(_ context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.units[id]
	delete(m.units, id)
	m.mu.Unlock()
	if !ok {
		return ErrUnitNotFound
	}

	e.unit.DestroyAd()
	m.log.WithField("unit", id).Info("ad unit destroyed")
	return nil
}

func (m *Mediator) Status(_ context.Context, id string) (UnitStatus, error) {
	e, err := m.get(id)
	if err != nil {
		return UnitStatus{}, err
	}
	return snapshot(e.unit, e.history), nil
}

func (m *Mediator) List(_ context.Context) []UnitStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]UnitStatus, 0, len(m.units))
	for _, e := range m.units {
		out = append(out, snapshot(e.unit, e.history))
	}
	return out
}

// SetToken сохраняет токен, который HTTP клиент прикладывает к запросам
func (m *Mediator) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if m.tokens == nil {
		return errors.New("token store is not configured")
	}
	if err := m.tokens.PutString(ctx, prefs.NamespaceUserInfo, prefs.KeyToken, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Close уничтожает все блоки
func (m *Mediator) Close() {
	m.mu.Lock()
	units := m.units
	m.units = make(map[string]*entry)
	m.mu.Unlock()

	for _, e := range units {
		e.unit.DestroyAd()
	}
}

func (m *Mediator) get(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.units[id]
	if !ok {
		return nil, ErrUnitNotFound
	}
	return e, nil
}

func snapshot(unit ad.Unit, h *history) UnitStatus {
	return UnitStatus{
		ID:          unit.ID(),
		Category:    unit.Category().String(),
		PlacementID: unit.PlacementID(),
		State:       unit.State().String(),
		Ready:       unit.IsAdReady(),
		History:     h.list(),
	}
}

// attach подписывает журнал на уведомления, включая расширенные для категории
func attach(unit ad.Unit, h *history) {
	switch u := unit.(type) {
	case *ad.RewardedVideo:
		u.SetRewardedAdListener(h)
	case *ad.Interstitial:
		u.SetClickListener(h)
	case *ad.Banner:
		u.SetBannerListener(h)
	case *ad.Splash:
		u.SetSplashListener(h)
	case *ad.Native:
		u.SetClickListener(h)
	default:
		unit.SetAdStatusListener(h)
	}
}

// history записывает уведомления блока
type history struct {
	mu     sync.Mutex
	events []string
}

var (
	_ ad.RewardedListener = (*history)(nil)
	_ ad.BannerListener   = (*history)(nil)
	_ ad.SplashListener   = (*history)(nil)
)

func (h *history) add(event string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, event)
	if len(h.events) > historyLimit {
		h.events = h.events[len(h.events)-historyLimit:]
	}
}

func (h *history) list() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.events...)
}

func (h *history) OnAdLoaded()              { h.add("loaded") }
func (h *history) OnAdFailed(reason string) { h.add("failed: " + reason) }
func (h *history) OnAdShown()               { h.add("shown") }
func (h *history) OnAdClosed()              { h.add("closed") }
func (h *history) OnAdClicked()             { h.add("clicked") }
func (h *history) OnRewardGranted()         { h.add("reward") }
func (h *history) OnAdRefreshed()           { h.add("refreshed") }

func (h *history) OnSplashDismissed(reason backend.DismissType) {
	h.add(fmt.Sprintf("dismissed: %d", reason))
}
