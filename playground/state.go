package playground

import "time"

// State is the stage a run reached.
type State int

const (
	StateStarted State = iota
	StateCompiling
	StateDecoding
	StateBuildingEnv
	StateInstantiating
	StateRunning
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateStarted:       "started",
	StateCompiling:     "compiling",
	StateDecoding:      "decoding",
	StateBuildingEnv:   "building_env",
	StateInstantiating: "instantiating",
	StateRunning:       "running",
	StateDone:          "done",
	StateFailed:        "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// SourcePair is the user's input: a WAT module and a Starlark host script.
type SourcePair struct {
	WAT  string
	Host string
}

// Result describes how a run ended.
type Result struct {
	Err error
	// FailedAt is the stage that failed; meaningful only when State is
	// StateFailed.
	FailedAt State
	// Returned holds main's results when the run reached StateDone by
	// calling it.
	Returned []string
	Token    Token
	State    State
	Duration time.Duration
}
