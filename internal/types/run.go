package types

type RunStatus string

const (
	RunQueued    RunStatus = "queued"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is one pipeline invocation as kept in the history store.
type Run struct {
	Id           uint      `json:"-" gorm:"primaryKey"`
	RunId        string    `json:"run_id" gorm:"uniqueIndex;size:64"`
	Fact         string    `json:"fact"`
	Narration    string    `json:"narration"`
	OutputPath   string    `json:"output_path"`
	Status       RunStatus `json:"status" gorm:"index;size:16"`
	FailStage    string    `json:"fail_stage,omitempty" gorm:"size:16"`
	FailReason   string    `json:"fail_reason,omitempty"`
	SegmentCount int       `json:"segment_count"`
	Duration     float64   `json:"duration"`
	CreateTime   int64     `json:"create_time" gorm:"autoCreateTime:milli;index"`
	UpdateTime   int64     `json:"update_time" gorm:"autoUpdateTime:milli"`
}

func (r *Run) Finished() bool {
	return r.Status == RunSucceeded || r.Status == RunFailed
}
