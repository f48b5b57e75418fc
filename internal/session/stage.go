package session

// Stage is the screen a session is on.
type Stage string

const (
	StageLanding     Stage = "landing"
	StageDashboard   Stage = "dashboard"
	StageHistory     Stage = "history"
	StageUpload      Stage = "upload"
	StageAnalyzing   Stage = "analyzing"
	StageResults     Stage = "results"
	StageGenerating  Stage = "generating"
	StageEditPreview Stage = "editPreview"
)

var stages = map[Stage]bool{
	StageLanding:     true,
	StageDashboard:   true,
	StageHistory:     true,
	StageUpload:      true,
	StageAnalyzing:   true,
	StageResults:     true,
	StageGenerating:  true,
	StageEditPreview: true,
}

// ParseStage maps a stage name to a Stage.
func ParseStage(name string) (Stage, bool) {
	s := Stage(name)
	return s, stages[s]
}

// Busy reports whether a model call is in flight in this stage.
func (s Stage) Busy() bool {
	return s == StageAnalyzing || s == StageGenerating
}
