package domain

import "time"

// Sample is one observation of the remote document count.
type Sample struct {
	ObservedAt time.Time `json:"observed_at"`
	Count      int64     `json:"count"`
}

// Rate is an ingestion rate estimate in documents per second.
// A zero Rate (Available == false) means no baseline exists yet.
type Rate struct {
	PerSecond float64 `json:"per_second"`
	Available bool    `json:"available"`
}

// EventKind tells reporters what a poll cycle produced.
type EventKind string

const (
	// EventSample is published after a successful poll.
	EventSample EventKind = "sample"
	// EventFailure is published when a poll fails and the cycle is skipped.
	EventFailure EventKind = "failure"
	// EventStopped is published once, when monitoring is interrupted.
	EventStopped EventKind = "stopped"
)

// Event is what the monitor hands to its reporters.
type Event struct {
	ObservedAt time.Time     `json:"observed_at"`
	Kind       EventKind     `json:"kind"`
	Resource   string        `json:"resource"`
	Error      string        `json:"error,omitempty"`
	Count      int64         `json:"count"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	Rate       Rate          `json:"rate"`
}
