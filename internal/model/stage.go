package model

// Stage is one phase of the per-item pipeline.
type Stage int

const (
	StageResolving Stage = iota
	StageDownloading
	StageTranscoding
	StageFetchingArt
	StageNormalizing
	StageEmbedding
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageResolving:
		return "resolve"
	case StageDownloading:
		return "download"
	case StageTranscoding:
		return "transcode"
	case StageFetchingArt:
		return "artwork"
	case StageNormalizing:
		return "normalize"
	case StageEmbedding:
		return "embed"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	}
	return "unknown"
}

// Degrading reports whether a failure in this stage lets the item carry on
// without artwork instead of failing it.
func (s Stage) Degrading() bool {
	return s == StageFetchingArt || s == StageNormalizing
}

// Terminal reports whether the state machine stops at this stage.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// ItemState is the payload carried between pipeline stages for one item.
//
// Fields are filled as stages succeed. A zero ArtworkPath means the item
// has no artwork, either because fetching it degraded or because it was
// never attempted.
type ItemState struct {
	Item  SourceItem
	Stage Stage

	Descriptor   *StreamDescriptor
	DownloadPath string
	AudioPath    string
	ArtworkPath  string

	// ArtworkEmbedded is set once the embedder wrote a cover frame.
	ArtworkEmbedded bool

	// Failure is set when Stage is StageFailed.
	Failure *StageError

	// Warnings collects degrading failures, in order.
	Warnings []*StageError
}

// NewItemState returns the clean starting state for an item.
func NewItemState(item SourceItem) *ItemState {
	return &ItemState{Item: item, Stage: StageResolving}
}

// Label is the best human-readable name for the item so far: the resolved
// title once known, the raw identifier before.
func (s *ItemState) Label() string {
	if s.Descriptor != nil && s.Descriptor.Title != "" {
		return s.Descriptor.Title
	}
	return s.Item.Identifier
}
