package web

// Type is the first byte of every message sent to clients.
type Type = uint8

const (
	// Frame carries a full frame: cache index (uint16), then
	// the RGBA pixels, brotli compressed if enabled.
	Frame Type = iota
	// FramePatch carries the pixels that changed since the last
	// frame, with every unchanged pixel left transparent.
	FramePatch
	// FrameSkip carries the number of identical frames skipped.
	FrameSkip
	// ClientInfo carries the hub settings, sent on connection.
	ClientInfo
	// PatchCache replays the cached patch at the given index.
	PatchCache
	// FrameCache replays the cached frame at the given index.
	FrameCache
	// ServerInfo carries the id and latency of every client.
	ServerInfo
	// PlayerInfo carries changes to the emulator, such as pause.
	PlayerInfo
)

// Event is the second byte of a control message (10) sent by
// clients.
type Event = uint8

const (
	_ Event = iota
	Compression
	CompressionLevel
	FramePatching
	FrameSkipping
	FramePatchingRatio
)

// PlayerEvent is the second byte of a PlayerInfo message.
type PlayerEvent = uint8

const (
	PausePlay PlayerEvent = iota
	Reset
)

// message prefixes sent by clients
const (
	// 9, 0 to pause and 1 to resume
	pauseMessage = 9
	// 10, Event, value
	controlMessage = 10
	// 11, resets the emulator
	resetMessage = 11
	// 255, the client is closing
	closingMessage = 255
)
