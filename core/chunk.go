package core

// ChunkType classifies a caller-facing output fragment.
type ChunkType int

const (
	// ChunkText marks a fragment of the agent's visible reply.
	ChunkText ChunkType = iota
	// ChunkThinking marks a fragment of the secondary reasoning trace.
	ChunkThinking
)

// String returns the wire name of the chunk type.
func (t ChunkType) String() string {
	switch t {
	case ChunkText:
		return "text"
	case ChunkThinking:
		return "thinking"
	default:
		return "unknown"
	}
}

// Chunk is one unit of the progressive output stream handed to the caller
// while the graph runs. Chunks are immutable once created and delivered in
// the exact order their source events occurred.
type Chunk struct {
	Type    ChunkType `json:"type"`
	Content string    `json:"content"`
}

// IsText reports whether the chunk belongs to the agent's visible reply.
func (c Chunk) IsText() bool { return c.Type == ChunkText }

// IsThinking reports whether the chunk belongs to the reasoning trace.
func (c Chunk) IsThinking() bool { return c.Type == ChunkThinking }
