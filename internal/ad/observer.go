package ad

import (
	"time"

	"ad-mediation/internal/placement"
)

type TransitionKind string

const (
	TransitionLoading   TransitionKind = "loading"
	TransitionLoaded    TransitionKind = "loaded"
	TransitionFailed    TransitionKind = "failed"
	TransitionShown     TransitionKind = "shown"
	TransitionClosed    TransitionKind = "closed"
	TransitionDestroyed TransitionKind = "destroyed"
)

// Transition - смена состояния блока
type Transition struct {
	UnitID      string
	Category    placement.Category
	PlacementID string
	Kind        TransitionKind
	State       State
	Reason      string
	At          time.Time
}

// Observer получает смены состояний. Вызывается с разных горутин и не должен блокироваться.
type Observer interface {
	Observe(t Transition)
}

// Observers рассылает смены состояний нескольким наблюдателям
type Observers []Observer

func (o Observers) Observe(t Transition) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(t)
		}
	}
}
