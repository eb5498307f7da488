package progress

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"catalog-bootstrapper/core/database"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"
	"catalog-bootstrapper/core/transport"
	transportmocks "catalog-bootstrapper/core/transport/mocks"
	"catalog-bootstrapper/feature/bootstrap"
	"catalog-bootstrapper/feature/progress/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	instanceFound = `{"instance":{"get":{"id":"inst-1","identifier":"shop","staticAuthToken":"static","rootItemId":"root"}}}`
	instanceNull  = `{"instance":{"get":null}}`
	languagesEN   = `{"instance":{"get":{"defaults":{"language":"en"},"availableLanguages":[{"code":"en","name":"English"}]}}}`
)

func operation(name string) any {
	return mock.MatchedBy(func(req transport.Request) bool {
		return strings.Contains(req.Query, name+"(") || strings.Contains(req.Query, name+" ")
	})
}

// newCaller answers the instance and language lookups and an empty document for the rest.
func newCaller(instance string) *transportmocks.Caller {
	c := new(transportmocks.Caller)
	c.On("Push", mock.Anything, operation("GET_INSTANCE")).Return(transportmocks.JSON(instance), nil)
	c.On("Push", mock.Anything, operation("GET_INSTANCE_LANGUAGES")).Return(transportmocks.JSON(languagesEN), nil)
	c.On("Push", mock.Anything, mock.Anything).Return(transportmocks.JSON(`{}`), nil)
	return c
}

func newTestService(caller transport.Caller, opts Options) *Service {
	opts.Bootstrap = bootstrap.Options{
		API: bootstrap.APIConfig{
			ManagementURL:     "http://management",
			BaseURL:           "http://api",
			AccessTokenID:     "id",
			AccessTokenSecret: "secret",
		},
		NewCaller: func(transport.Config) transport.Caller { return caller },
	}
	return NewService(opts)
}

func TestService_RunSucceeds(t *testing.T) {
	svc := newTestService(newCaller(instanceFound), Options{})
	defer svc.Close()

	view, err := svc.Start(context.Background(), RunRequest{Instance: "shop", Spec: &spec.Spec{}})
	require.NoError(t, err)
	assert.Equal(t, "shop", view.Instance)
	assert.NotEmpty(t, view.ID)

	svc.Wait()

	got, err := svc.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, database.RunDone, got.Status)
	require.NotNil(t, got.FinishedAt)
	assert.Equal(t, 1.0, got.Areas[status.Languages].Progress)
	assert.Empty(t, got.Error)
}

func TestService_RunFailsOnUnknownInstance(t *testing.T) {
	journal := new(mocks.Journal)
	journal.On("StartRun", mock.Anything, "ghost", "").
		Return(&database.Run{ID: "run-1", Instance: "ghost", StartedAt: time.Now()}, nil)
	journal.On("RecordSnapshot", mock.Anything, "run-1", mock.Anything).Return(nil)
	journal.On("FinishRun", mock.Anything, "run-1", mock.Anything, mock.Anything,
		mock.MatchedBy(func(err error) bool { return errors.Is(err, bootstrap.ErrInstanceNotFound) })).
		Return(nil)

	docs := new(mocks.Documents)
	docs.On("WriteReport", mock.Anything, "reports/run-1.json", mock.MatchedBy(func(v RunView) bool {
		return v.Status == database.RunFailed && v.Error != ""
	})).Return(nil)

	svc := newTestService(newCaller(instanceNull), Options{Journal: journal, Documents: docs, ReportPrefix: "reports"})
	defer svc.Close()

	view, err := svc.Start(context.Background(), RunRequest{Instance: "ghost", Spec: &spec.Spec{}})
	require.NoError(t, err)
	assert.Equal(t, "run-1", view.ID)

	svc.Wait()

	got, err := svc.Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, database.RunFailed, got.Status)
	assert.Contains(t, got.Error, "instance not found")

	journal.AssertExpectations(t)
	docs.AssertExpectations(t)
}

func TestService_StartValidation(t *testing.T) {
	docs := new(mocks.Documents)
	docs.On("ReadSpec", mock.Anything, "missing.yaml").Return(nil, errors.New("missing.yaml: document not found"))

	tests := []struct {
		name    string
		docs    Documents
		req     RunRequest
		wantErr error
	}{
		{name: "no instance", req: RunRequest{Spec: &spec.Spec{}}, wantErr: ErrNoInstance},
		{name: "no spec", req: RunRequest{Instance: "shop"}, wantErr: ErrNoSpec},
		{name: "no document store", req: RunRequest{Instance: "shop", SpecKey: "a.yaml"}, wantErr: ErrNoDocuments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newCaller(instanceFound), Options{Documents: tt.docs})
			defer svc.Close()
			_, err := svc.Start(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("document error", func(t *testing.T) {
		svc := newTestService(newCaller(instanceFound), Options{Documents: docs})
		defer svc.Close()
		_, err := svc.Start(context.Background(), RunRequest{Instance: "shop", SpecKey: "missing.yaml"})
		assert.EqualError(t, err, "missing.yaml: document not found")
	})
}

func TestService_RunSlots(t *testing.T) {
	release := make(chan time.Time)
	caller := new(transportmocks.Caller)
	caller.On("Push", mock.Anything, operation("GET_INSTANCE")).WaitUntil(release).Return(transportmocks.JSON(instanceNull), nil)

	svc := newTestService(caller, Options{MaxRuns: 1})
	defer svc.Close()

	_, err := svc.Start(context.Background(), RunRequest{Instance: "shop", Spec: &spec.Spec{}})
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), RunRequest{Instance: "shop", Spec: &spec.Spec{}})
	assert.ErrorIs(t, err, ErrTooManyRuns)

	close(release)
	svc.Wait()

	_, err = svc.Start(context.Background(), RunRequest{Instance: "shop", Spec: &spec.Spec{}})
	assert.NoError(t, err)
	svc.Wait()
}

func TestService_ListMergesJournal(t *testing.T) {
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	journal := new(mocks.Journal)
	journal.On("ListRuns", mock.Anything, 10).Return([]database.Run{
		{ID: "old", Instance: "shop", Status: database.RunDone, StartedAt: old},
	}, nil)

	svc := newTestService(newCaller(instanceFound), Options{Journal: journal})
	defer svc.Close()

	runs, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "old", runs[0].ID)
	assert.Nil(t, runs[0].Areas)
}

func TestService_GetFromJournal(t *testing.T) {
	journal := new(mocks.Journal)
	journal.On("GetRun", mock.Anything, "run-9").Return(&database.Run{
		ID:     "run-9",
		Status: database.RunDone,
		Areas: []database.AreaProgress{
			{Area: "languages", Progress: 1},
			{Area: "items", Progress: 0.5},
		},
		Warnings: []database.AreaWarning{{Area: "items", Message: "Chair: error", Cause: "boom"}},
	}, nil)
	journal.On("GetRun", mock.Anything, "nope").Return(nil, database.ErrRunNotFound)

	svc := newTestService(newCaller(instanceFound), Options{Journal: journal})
	defer svc.Close()

	view, err := svc.Get(context.Background(), "run-9")
	require.NoError(t, err)
	assert.Equal(t, 1.0, view.Areas[status.Languages].Progress)
	assert.Equal(t, []status.Warning{{Message: "Chair: error", Cause: "boom"}}, view.Areas[status.Items].Warnings)

	_, err = svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, database.ErrRunNotFound)
}

func TestService_FinishedRunsAreRetired(t *testing.T) {
	svc := newTestService(newCaller(instanceFound), Options{KeepFinished: 1})
	defer svc.Close()

	first, err := svc.Start(context.Background(), RunRequest{Instance: "shop", Spec: &spec.Spec{}})
	require.NoError(t, err)
	svc.Wait()

	second, err := svc.Start(context.Background(), RunRequest{Instance: "shop", Spec: &spec.Spec{}})
	require.NoError(t, err)
	svc.Wait()

	svc.mu.Lock()
	assert.Empty(t, svc.runs)
	assert.Len(t, svc.finished, 1)
	svc.mu.Unlock()

	_, err = svc.Get(context.Background(), first.ID)
	assert.ErrorIs(t, err, database.ErrRunNotFound)

	got, err := svc.Get(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, database.RunDone, got.Status)
	assert.Equal(t, 1.0, got.Areas[status.Languages].Progress)

	list, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
}
