package generation

import (
	"fmt"
	"strings"
)

// Role names one artifact kind stored under a generation session.
type Role string

const (
	RoleSketch      Role = "sketch"
	RoleFinalDesign Role = "final_design"
	RoleTechFlat    Role = "tech_flat"
	RoleTryOn       Role = "try_on"
)

var filenames = map[Role]string{
	RoleSketch:      "sketch.jpg",
	RoleFinalDesign: "step_1.jpg",
	RoleTechFlat:    "step_2.jpg",
	RoleTryOn:       "step_3.jpg",
}

var generatedRoles = [...]Role{RoleFinalDesign, RoleTechFlat, RoleTryOn}

// GeneratedRoles returns the roles the compute backend produces, in step order.
func GeneratedRoles() []Role {
	out := make([]Role, len(generatedRoles))
	copy(out, generatedRoles[:])
	return out
}

func (r Role) Valid() bool {
	_, ok := filenames[r]
	return ok
}

// Filename panics on an unknown role; roles only come from the constants above
// or from ParseRole.
func (r Role) Filename() string {
	name, ok := filenames[r]
	if !ok {
		panic(fmt.Sprintf("generation: unknown artifact role %q", string(r)))
	}
	return name
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.TrimSpace(s))
	return r, r.Valid()
}

// ArtifactKey is the only place storage keys for session artifacts are built.
func ArtifactKey(sessionID string, role Role) string {
	return sessionID + "/" + role.Filename()
}

// State is derived from artifact presence, never stored.
type State string

const (
	StatePending    State = "pending"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// StateFor maps the number of generated artifacts present to a State.
func StateFor(present int) State {
	switch {
	case present >= len(generatedRoles):
		return StateCompleted
	case present > 0:
		return StateInProgress
	default:
		return StatePending
	}
}

// DispatchState is the advisory lifecycle recorded around a backend call.
type DispatchState string

const (
	DispatchDispatched DispatchState = "dispatched"
	DispatchSucceeded  DispatchState = "succeeded"
	DispatchFailed     DispatchState = "failed"
)

const DefaultStyle = "casual"

// Parameters is one generation request as received from the caller.
type Parameters struct {
	ImageData string
	Category  string
	Gender    string
	Type      string
	Style     string
}

// Result pairs the minted session id with the backend's artifact references.
type Result struct {
	SessionID string
	Step1     string
	Step2     string
	Step3     string
	SpecsLog  []byte
}

type SessionStatus struct {
	SessionID      string
	State          State
	CompletedFiles []string
	Progress       float64
	Dispatch       DispatchState
}
