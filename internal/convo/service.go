package convo

import (
	"context"
	"errors"

	"github.com/gopherchat/gopherchat/internal/ai"
	"github.com/gopherchat/gopherchat/internal/models"
)

// ErrAPIKeyMissing signals misconfiguration: the real provider was requested
// but no credential is available. It is distinct from any business failure;
// callers should direct the user toward mock mode.
var ErrAPIKeyMissing = errors.New("Gemini API key is missing. Please configure an API key or enable Mock Mode")

const (
	mockProviderName = "mock"
	realProviderName = "gemini"

	samplingTemperature = 0.7
)

type Service struct {
	registry *ai.Registry
}

func NewService(registry *ai.Registry) *Service {
	return &Service{registry: registry}
}

// Converse produces the assistant reply to newMessage given the prior
// transcript. The mock path never returns sources. Provider failures are
// returned unchanged; nothing is retried here.
func (s *Service) Converse(ctx context.Context, history []models.Message, newMessage string, useMock bool) (string, []models.Source, error) {
	if useMock {
		provider, err := s.registry.Get(ctx, mockProviderName)
		if err != nil {
			return "", nil, err
		}
		res, err := provider.Generate(ctx, []ai.Message{{Role: models.RoleUser, Content: newMessage}}, ai.Options{})
		if err != nil {
			return "", nil, err
		}
		return res.Text, nil, nil
	}

	if !s.registry.Has(realProviderName) {
		return "", nil, ErrAPIKeyMissing
	}
	provider, err := s.registry.Get(ctx, realProviderName)
	if err != nil {
		return "", nil, err
	}

	contents := make([]ai.Message, 0, len(history)+1)
	for _, m := range history {
		role := models.RoleUser
		if m.Role != models.RoleUser {
			role = models.RoleModel
		}
		contents = append(contents, ai.Message{Role: role, Content: m.Content})
	}
	contents = append(contents, ai.Message{Role: models.RoleUser, Content: newMessage})

	res, err := provider.Generate(ctx, contents, ai.Options{
		Temperature:  samplingTemperature,
		EnableSearch: true,
	})
	if err != nil {
		return "", nil, err
	}

	var sources []models.Source
	for _, g := range res.Grounding {
		sources = append(sources, models.Source{Title: g.Title, URI: g.URI})
	}
	return res.Text, sources, nil
}
