package sim

// BehaviorState is the closed set of things the agent can be doing. Exactly
// one is current at any time.
type BehaviorState int

const (
	StateWander BehaviorState = iota // roam random traversable points
	StateChase                       // pursue the target's live position
	StateSearch                      // comb the area around the last known position
	StateHide                        // flee and hole up until unseen
	StateStalk                       // creep closer, alternating approach and stare

	stateCount
)

func (s BehaviorState) String() string {
	switch s {
	case StateWander:
		return "wander"
	case StateChase:
		return "chase"
	case StateSearch:
		return "search"
	case StateHide:
		return "hide"
	case StateStalk:
		return "stalk"
	default:
		return "unknown"
	}
}

// Demeanor picks which pursuit state perceiving the target drives the agent
// into. Hunters close in directly; stalkers shadow the target; skulkers run
// and hide.
type Demeanor int

const (
	DemeanorHunter Demeanor = iota
	DemeanorStalker
	DemeanorSkulker
)

func (d Demeanor) String() string {
	switch d {
	case DemeanorHunter:
		return "hunter"
	case DemeanorStalker:
		return "stalker"
	case DemeanorSkulker:
		return "skulker"
	default:
		return "unknown"
	}
}

// pursuitState is the state entered when the target is perceived.
func (d Demeanor) pursuitState() BehaviorState {
	switch d {
	case DemeanorStalker:
		return StateStalk
	case DemeanorSkulker:
		return StateHide
	default:
		return StateChase
	}
}

// stateHandler gives each state an entry function and a per-tick movement
// intent function. Dispatch is by table rather than a switch so a state's
// whole behavior lives in one row.
type stateHandler struct {
	enter func(*Agent)
	tick  func(*Agent, float64)
}

var stateHandlers = [stateCount]stateHandler{
	StateWander: {enter: (*Agent).enterWander, tick: (*Agent).tickWander},
	StateChase:  {enter: (*Agent).enterChase, tick: (*Agent).tickChase},
	StateSearch: {enter: (*Agent).enterSearch, tick: (*Agent).tickSearch},
	StateHide:   {enter: (*Agent).enterHide, tick: nil}, // movement owned by the hide task
	StateStalk:  {enter: (*Agent).enterStalk, tick: nil}, // movement owned by the stalk task
}
