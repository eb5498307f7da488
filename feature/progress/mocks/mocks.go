package mocks

import (
	"context"
	"time"

	"catalog-bootstrapper/core/database"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"

	"github.com/stretchr/testify/mock"
)

// Journal is a mock implementation of progress.Journal
type Journal struct {
	mock.Mock
}

func (m *Journal) StartRun(ctx context.Context, instance, specKey string) (*database.Run, error) {
	args := m.Called(ctx, instance, specKey)
	if run, ok := args.Get(0).(*database.Run); ok {
		return run, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Journal) RecordSnapshot(ctx context.Context, runID string, snap status.Snapshot) error {
	args := m.Called(ctx, runID, snap)
	return args.Error(0)
}

func (m *Journal) FinishRun(ctx context.Context, runID string, finishedAt time.Time, duration time.Duration, runErr error) error {
	args := m.Called(ctx, runID, finishedAt, duration, runErr)
	return args.Error(0)
}

func (m *Journal) ListRuns(ctx context.Context, limit int) ([]database.Run, error) {
	args := m.Called(ctx, limit)
	if runs, ok := args.Get(0).([]database.Run); ok {
		return runs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Journal) GetRun(ctx context.Context, runID string) (*database.Run, error) {
	args := m.Called(ctx, runID)
	if run, ok := args.Get(0).(*database.Run); ok {
		return run, args.Error(1)
	}
	return nil, args.Error(1)
}

// Documents is a mock implementation of progress.Documents
type Documents struct {
	mock.Mock
}

func (m *Documents) ReadSpec(ctx context.Context, key string) (*spec.Spec, error) {
	args := m.Called(ctx, key)
	if s, ok := args.Get(0).(*spec.Spec); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Documents) WriteReport(ctx context.Context, key string, v any) error {
	args := m.Called(ctx, key, v)
	return args.Error(0)
}

func (m *Documents) ListSpecs(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if keys, ok := args.Get(0).([]string); ok {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}
