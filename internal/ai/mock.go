package ai

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// MockProvider synthesizes replies locally so the product stays usable
// without a real API key. Latency is uniformly distributed between MinDelay
// and MaxDelay; replies are selected by keyword matching on the last message.
type MockProvider struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

func NewMockProvider(minDelay, maxDelay time.Duration) *MockProvider {
	if minDelay < 0 {
		minDelay = 0
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &MockProvider{MinDelay: minDelay, MaxDelay: maxDelay}
}

func (p *MockProvider) Generate(ctx context.Context, messages []Message, _ Options) (*Result, error) {
	if len(messages) == 0 {
		return nil, errors.New("mock: empty conversation")
	}
	if err := p.simulateLatency(ctx); err != nil {
		return nil, err
	}
	return &Result{Text: mockReply(messages[len(messages)-1].Content)}, nil
}

func (p *MockProvider) simulateLatency(ctx context.Context) error {
	delay := p.MinDelay
	if span := p.MaxDelay - p.MinDelay; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func mockReply(input string) string {
	lower := strings.ToLower(input)

	if strings.Contains(lower, "hello") || strings.Contains(lower, "hi") {
		return "Hello! I am running in **Mock Mode**. I don't have a real brain connected right now, but I can pretend to listen! How can I help you simulate a task today?"
	}

	if strings.Contains(lower, "plan") || strings.Contains(lower, "subscription") || strings.Contains(lower, "pro") {
		return "You can upgrade to the **Pro Plan** in this demo app. Go to the sidebar and click 'Upgrade' to see the dummy payment flow!"
	}

	if strings.Contains(lower, "code") || strings.Contains(lower, "javascript") || strings.Contains(lower, "python") {
		return "Here is a mock code snippet for you:\n\n```go\n// This is a dummy function\nfunc simulateAI() string {\n\treturn \"This is not real generated code!\"\n}\n```\n\nIn Mock Mode, I cannot execute or generate real code logic, but I can show you how it looks!"
	}

	return fmt.Sprintf("This is a **dummy response** for your query: _\"%s\"_.\n\n"+
		"Currently, **Mock API Mode** is enabled. No real data is being sent to Google Gemini.\n\n"+
		"### Why am I seeing this?\n"+
		"- You are testing the UI without an API key.\n"+
		"- Or you have explicitly enabled Mock Mode in the sidebar.\n\n"+
		"To use the real model, ensure you have an API key configured and disable Mock Mode.", input)
}
