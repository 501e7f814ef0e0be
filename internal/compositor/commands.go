package compositor

// Command is a typed request payload. Implementations are thin structs whose
// fields serialize into the generic {type, params} envelope the child reads.
type Command interface {
	// CommandType is the wire type tag for this command.
	CommandType() string
}

// StartLongRunningProcess is the start command handed to the child as its
// sole command-line argument. It is never sent over stdin.
type StartLongRunningProcess struct {
	// Concurrency is the number of parallel render lanes the child opens.
	Concurrency int `json:"concurrency"`

	// MaxFrameCacheItems caps the child's internal frame cache. Zero is
	// replaced during bootstrap with the free-memory heuristic.
	MaxFrameCacheItems int `json:"max_frame_cache_items"`

	// Verbose makes the child emit diagnostic frames on the reserved nonce.
	Verbose bool `json:"verbose"`
}

// CommandType implements Command.
func (StartLongRunningProcess) CommandType() string { return "StartLongRunningProcess" }

// ExtractFrame renders a single video frame to raw image bytes.
type ExtractFrame struct {
	// Src is the resolved path of the video asset.
	Src string `json:"src"`

	// OriginalSrc is the path as authored, used in error messages.
	OriginalSrc string `json:"original_src"`

	// Time is the timestamp in seconds to extract.
	Time float64 `json:"time"`

	// Transparent requests an alpha channel when the codec carries one.
	Transparent bool `json:"transparent"`
}

// CommandType implements Command.
func (ExtractFrame) CommandType() string { return "ExtractFrame" }

// GetVideoMetadata probes a video asset for duration, dimensions and codec.
type GetVideoMetadata struct {
	Src string `json:"src"`
}

// CommandType implements Command.
func (GetVideoMetadata) CommandType() string { return "GetVideoMetadata" }

// Echo round-trips a message through the child. Used for healthchecks.
type Echo struct {
	Message string `json:"message"`
}

// CommandType implements Command.
func (Echo) CommandType() string { return "Echo" }

// FreeUpMemory asks the child to evict cached frames until its cache is at
// or below the given byte size.
type FreeUpMemory struct {
	RemainingBytes uint64 `json:"remaining_bytes"`
}

// CommandType implements Command.
func (FreeUpMemory) CommandType() string { return "FreeUpMemory" }

// CloseAllVideos releases every decoder the child holds open.
type CloseAllVideos struct{}

// CommandType implements Command.
func (CloseAllVideos) CommandType() string { return "CloseAllVideos" }
