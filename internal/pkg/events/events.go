package events

import "time"

type EventType string

const (
	EventLoading   EventType = "loading"
	EventLoaded    EventType = "loaded"
	EventFailed    EventType = "failed"
	EventShown     EventType = "shown"
	EventClosed    EventType = "closed"
	EventDestroyed EventType = "destroyed"
)

// AdEvent - запись журнала жизненного цикла рекламного блока
type AdEvent struct {
	Type        EventType `json:"type"`
	UnitID      string    `json:"unit_id"`
	Category    string    `json:"category"`
	PlacementID string    `json:"placement_id"`
	State       string    `json:"state"`
	Reason      string    `json:"reason,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
