package contracts

// EventKind identifies the payload carried by an Event.
type EventKind int

const (
	// EventState is published on every cursor state transition.
	EventState EventKind = iota
	// EventProgress carries Current/Total note indexes.
	EventProgress
	// EventTime carries Elapsed/TotalSeconds.
	EventTime
	// EventCountdown carries Remaining seconds before playback begins.
	EventCountdown
)

func (k EventKind) String() string {
	switch k {
	case EventState:
		return "state"
	case EventProgress:
		return "progress"
	case EventTime:
		return "time"
	case EventCountdown:
		return "countdown"
	}
	return "unknown"
}

// Event is a notification from the scheduler to presentation code.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind    EventKind
	Session string

	State State

	Current int
	Total   int

	Elapsed      float64
	TotalSeconds float64

	Remaining int
}
