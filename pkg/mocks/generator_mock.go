// Package mocks provides testify mocks for external collaborators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/generator"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

// MockGenerator is a mock implementation of generator.Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt, platform string, opts generator.Options) (*generator.GenerationResult, error) {
	args := m.Called(ctx, prompt, platform, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*generator.GenerationResult), args.Error(1)
}

func (m *MockGenerator) Plan(ctx context.Context, prompt string, maxArtifacts int) (*models.BatchPlan, error) {
	args := m.Called(ctx, prompt, maxArtifacts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.BatchPlan), args.Error(1)
}

func (m *MockGenerator) GenerateArtifact(ctx context.Context, item models.PlannedArtifact, shared generator.SharedContext) (map[string]any, error) {
	args := m.Called(ctx, item, shared)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockGenerator) Fix(ctx context.Context, doc *models.Document, issues []string, userError string) (*generator.FixResult, error) {
	args := m.Called(ctx, doc, issues, userError)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*generator.FixResult), args.Error(1)
}
