package sim

import "image/color"

// Observer is the visualization/telemetry collaborator: it receives the
// current behavior state (consumed to pick a display color) and the two
// observable perception flags (consumed for debug overlays). The controller
// calls it on change, never reads from it.
type Observer interface {
	StateChanged(s BehaviorState)
	PerceptionChanged(targetVisible, agentVisibleToTarget bool)
}

// NopObserver discards all signals; the default for headless runs.
type NopObserver struct{}

func (NopObserver) StateChanged(BehaviorState)   {}
func (NopObserver) PerceptionChanged(bool, bool) {}

// StateColor maps a behavior state to its display color.
func StateColor(s BehaviorState) color.RGBA {
	switch s {
	case StateWander:
		return color.RGBA{R: 60, G: 200, B: 80, A: 255} // green
	case StateChase:
		return color.RGBA{R: 230, G: 40, B: 40, A: 255} // red
	case StateSearch:
		return color.RGBA{R: 240, G: 200, B: 40, A: 255} // yellow
	case StateHide:
		return color.RGBA{R: 60, G: 110, B: 235, A: 255} // blue
	case StateStalk:
		return color.RGBA{R: 170, G: 60, B: 220, A: 255} // purple
	default:
		return color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}
}
