package domain

import "fmt"

// Stage is a state of one ingest run.
type Stage string

const (
	StageIdle                Stage = "idle"
	StageClearing            Stage = "clearing"
	StageRegisteringEntities Stage = "registering_entities"
	StagePersistingEntities  Stage = "persisting_entities"
	StagePersistingInvoices  Stage = "persisting_invoices"
	StageDone                Stage = "done"
	StageFailed              Stage = "failed"
)

var transitions = map[Stage][]Stage{
	StageIdle:                {StageClearing, StageFailed},
	StageClearing:            {StageRegisteringEntities, StageFailed},
	StageRegisteringEntities: {StagePersistingEntities},
	StagePersistingEntities:  {StagePersistingInvoices},
	StagePersistingInvoices:  {StageDone},
}

// CanTransition reports whether a run may move from s to next.
func (s Stage) CanTransition(next Stage) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool {
	return len(transitions[s]) == 0
}

// StageMachine tracks the stage of a single run.
type StageMachine struct {
	current Stage
	history []Stage
}

func NewStageMachine() *StageMachine {
	return &StageMachine{current: StageIdle, history: []Stage{StageIdle}}
}

func (m *StageMachine) Current() Stage {
	return m.current
}

// History lists every stage entered, starting with StageIdle.
func (m *StageMachine) History() []Stage {
	out := make([]Stage, len(m.history))
	copy(out, m.history)
	return out
}

// Transition moves to next or returns ErrIllegalTransition.
func (m *StageMachine) Transition(next Stage) error {
	if !m.current.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.current, next)
	}
	m.current = next
	m.history = append(m.history, next)
	return nil
}
