package types

// TextChunk is a bounded run of words taken from one sentence of narration.
type TextChunk struct {
	Text     string
	Sentence int // index of the source sentence
	Index    int // position in the full chunk sequence
}

// TimingSegment binds one caption to its place on the narration timeline.
type TimingSegment struct {
	Text     string   `json:"text"`
	Start    float64  `json:"start"`
	End      float64  `json:"end"`
	Keywords []string `json:"keywords"`
}

func (s TimingSegment) Duration() float64 {
	return s.End - s.Start
}

// SpeechInterval is a non-silent span of narration audio, in seconds.
type SpeechInterval struct {
	Start float64
	End   float64
}

type AssetKind string

const (
	AssetLocal       AssetKind = "local"
	AssetRemote      AssetKind = "remote"
	AssetPlaceholder AssetKind = "placeholder"
)

// BackgroundAsset is the clip chosen for a segment. Remote assets are
// downloaded into the run workspace before composition, so Path is always
// set except for placeholders.
type BackgroundAsset struct {
	Kind     AssetKind
	Path     string
	URL      string
	Source   string
	Keywords []string
}
