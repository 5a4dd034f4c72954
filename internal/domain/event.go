package domain

const (
	EventNameSolveRecorded    = "solve.recorded"
	EventNameGameStateChanged = "game.state_changed"
)

// EventSolveRecorded is published after a solve row is committed.
// TotalScore is the solver's score including the new solve. The event
// feeds the redis scoreboard mirror; the in-process standings cache is
// invalidated synchronously by the recorder before the event goes out.
type EventSolveRecorded struct {
	Solve      Solve
	Challenge  Challenge
	TotalScore int
}

func (EventSolveRecorded) Name() string { return EventNameSolveRecorded }

type EventGameStateChanged struct {
	Session GameSession
}

func (EventGameStateChanged) Name() string { return EventNameGameStateChanged }
