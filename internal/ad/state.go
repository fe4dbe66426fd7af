package ad

// State - состояние рекламного блока
type State int32

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
	StateShowing
	StateClosed
)

var stateNames = [...]string{
	StateIdle:    "idle",
	StateLoading: "loading",
	StateLoaded:  "loaded",
	StateFailed:  "failed",
	StateShowing: "showing",
	StateClosed:  "closed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// canLoadFrom - состояния, из которых разрешена новая загрузка
func (s State) canLoadFrom() bool {
	switch s {
	case StateIdle, StateFailed, StateClosed:
		return true
	default:
		return false
	}
}
