package dto

type SubmitRunReq struct {
	Fact string `json:"fact"`
}

type SubmitRunResData struct {
	RunId string `json:"run_id"`
}

type ListRunsReq struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

type RunResData struct {
	RunId        string  `json:"run_id"`
	Status       string  `json:"status"`
	Fact         string  `json:"fact"`
	Narration    string  `json:"narration,omitempty"`
	OutputPath   string  `json:"output_path,omitempty"`
	DownloadPath string  `json:"download_path,omitempty"`
	FailStage    string  `json:"fail_stage,omitempty"`
	FailReason   string  `json:"fail_reason,omitempty"`
	SegmentCount int     `json:"segment_count"`
	Duration     float64 `json:"duration"`
	CreateTime   int64   `json:"create_time"`
}
