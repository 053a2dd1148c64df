package reader

// State is the playback state of a Reader.
type State int

const (
	Idle State = iota
	Ready
	Playing
	Paused
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Reasons passed to Play and carried by restart events.
const (
	ReasonStart       = "start"
	ReasonResumeChunk = "resume-chunk-mode"
	ReasonNextChunk   = "next-chunk-start"
	ReasonSettings    = "settings-change"
	ReasonChunkMode   = "chunks-mode-change"
	ReasonSeek        = "seek"
)
