// Package backend describes the boundary to third-party ad delivery SDKs.
// Backends deliver typed events from their own goroutines.
package backend

import (
	"context"
	"fmt"

	"ad-mediation/internal/placement"
)

// EventKind - тип события от SDK
type EventKind int

const (
	EventLoaded EventKind = iota
	EventLoadFailed
	EventLoadTimeout
	EventShown
	EventShowFailed
	EventPlayEnd
	EventClicked
	EventRewarded
	EventRefreshed
	EventRefreshFailed
	EventClosed
)

var eventNames = [...]string{
	EventLoaded:        "loaded",
	EventLoadFailed:    "load_failed",
	EventLoadTimeout:   "load_timeout",
	EventShown:         "shown",
	EventShowFailed:    "show_failed",
	EventPlayEnd:       "play_end",
	EventClicked:       "clicked",
	EventRewarded:      "rewarded",
	EventRefreshed:     "refreshed",
	EventRefreshFailed: "refresh_failed",
	EventClosed:        "closed",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// DismissType - причина закрытия splash-рекламы
type DismissType int

const (
	DismissUnknown    DismissType = 0
	DismissNormal     DismissType = 1
	DismissSkip       DismissType = 2
	DismissTimeOver   DismissType = 3
	DismissClickAd    DismissType = 4
	DismissShowFailed DismissType = 99
)

// Идентификаторы рекламных сетей
const (
	NetworkTencentAds  = 8
	NetworkCSJ         = 15
	NetworkBaiduUnion  = 22
	NetworkKuaishouAds = 28
)

// Info - сведения о показанном креативе
type Info struct {
	NetworkFirmID int     `json:"network_firm_id"`
	AdsourceID    string  `json:"adsource_id"`
	ECPM          float64 `json:"ecpm"`
}

// Error - ошибка, сообщенная SDK
type Error struct {
	Code string
	Desc string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Desc
	}
	return fmt.Sprintf("code: %s, desc: %s", e.Code, e.Desc)
}

// Event - событие SDK
type Event struct {
	Kind    EventKind
	Err     *Error
	Info    Info
	Dismiss DismissType
}

// Reason возвращает текст ошибки для уведомления слушателя
func (e Event) Reason() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

// Listener получает события SDK на произвольной горутине
type Listener func(Event)

// Ad - дескриптор рекламного объекта SDK
type Ad interface {
	SetListener(l Listener)
	Load()
	Show(ctx context.Context) bool
	Destroy()
}

// Provider создает рекламные объекты конкретного SDK
type Provider interface {
	NewAd(category placement.Category, placementID string) (Ad, error)
}
