package domain

// incidentState is the two-state machine behind EmitPerIncident. A batch scan
// starts Idle; crossing the alert threshold opens an incident and emits, and
// the state stays Active until the score falls below the reset threshold.
type incidentState int

const (
	incidentIdle incidentState = iota
	incidentActive
)

// next advances the machine by one chronological sample and reports whether
// that sample opens a new incident. Scores inside [reset, alert] hold the
// current state, so an alert cannot chatter at the boundary.
func (s incidentState) next(risk, alert, reset float64) (incidentState, bool) {
	switch s {
	case incidentActive:
		if risk < reset {
			return incidentIdle, false
		}
		return incidentActive, false
	default:
		if risk > alert {
			return incidentActive, true
		}
		return incidentIdle, false
	}
}
