package pipeline

// Observer is told about stage transitions as they happen.
type Observer interface {
	StageStarted(stage Stage)
	StageCompleted(stage Stage, detail string)
	StageSkipped(stage Stage, reason string)
	StageFailed(stage Stage, err error)
	// Warn reports a problem that does not stop the run.
	Warn(stage Stage, message string)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) StageStarted(Stage)           {}
func (NopObserver) StageCompleted(Stage, string) {}
func (NopObserver) StageSkipped(Stage, string)   {}
func (NopObserver) StageFailed(Stage, error)     {}
func (NopObserver) Warn(Stage, string)           {}
