package pipeline

import "fmt"

// State is a step of one analysis run.
type State string

const (
	StateIdle                State = "idle"
	StateExtractingAudio     State = "extracting_audio"
	StateTranscribing        State = "transcribing"
	StateSamplingFrames      State = "sampling_frames"
	StateAnalyzingVisual     State = "analyzing_visual"
	StateAnalyzingTranscript State = "analyzing_transcript"
	StateResolving           State = "resolving"
	StateCompleted           State = "completed"
	StateFailed              State = "failed"
)

// transitions lists the legal successors of every state. Sampling and
// visual analysis are skipped in local mode.
var transitions = map[State][]State{
	StateIdle:                {StateExtractingAudio, StateFailed},
	StateExtractingAudio:     {StateTranscribing, StateFailed},
	StateTranscribing:        {StateSamplingFrames, StateAnalyzingTranscript, StateFailed},
	StateSamplingFrames:      {StateAnalyzingVisual, StateFailed},
	StateAnalyzingVisual:     {StateAnalyzingTranscript, StateFailed},
	StateAnalyzingTranscript: {StateResolving, StateFailed},
	StateResolving:           {StateCompleted, StateFailed},
}

// CanTransition reports whether to may follow from.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type machine struct {
	state   State
	history []State
	onEnter func(State)
}

func newMachine(onEnter func(State)) *machine {
	return &machine{state: StateIdle, history: []State{StateIdle}, onEnter: onEnter}
}

// mustTransition advances the machine. An illegal edge is a programming
// error in the orchestrator.
func (m *machine) mustTransition(to State) {
	if !CanTransition(m.state, to) {
		panic(fmt.Sprintf("pipeline: illegal transition %s -> %s", m.state, to))
	}
	m.state = to
	m.history = append(m.history, to)
	if m.onEnter != nil {
		m.onEnter(to)
	}
}

// fail moves to Failed from any non-terminal state.
func (m *machine) fail() {
	if m.state == StateCompleted || m.state == StateFailed {
		return
	}
	m.mustTransition(StateFailed)
}
