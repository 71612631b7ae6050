package ai

import "context"

type Message struct {
	Role    string
	Content string
}

// GroundingChunk is one citation extracted from a grounded response.
type GroundingChunk struct {
	Title string
	URI   string
}

type Result struct {
	Text      string
	Grounding []GroundingChunk
}

type Options struct {
	Temperature  float64
	EnableSearch bool
}

type Provider interface {
	Generate(ctx context.Context, messages []Message, opts Options) (*Result, error)
}
