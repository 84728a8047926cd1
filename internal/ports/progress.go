package ports

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageFetch covers a source's fetch-and-parse task.
	StageFetch Stage = "fetch"
	// StageAggregate covers popularity aggregation and reconciliation.
	StageAggregate Stage = "aggregate"
	// StageScore covers performance scoring.
	StageScore Stage = "score"
	// StageRank covers candidate selection and the consensus ranking.
	StageRank Stage = "rank"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for one source task, or for a run-wide stage when
// Source is empty.
type Event struct {
	Source  string
	Stage   Stage
	Status  Status
	Err     error
	Rows    int
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must tolerate
// concurrent calls; source tasks emit from separate goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
