package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog-bootstrapper/core/status"
	"catalog-bootstrapper/core/storage"
	"catalog-bootstrapper/feature/progress/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupApp(svc *Service) *fiber.App {
	app := fiber.New()
	feature := NewFeature(svc, zap.NewNop())
	_ = feature.Load(app)
	return app
}

func TestFeature(t *testing.T) {
	svc := newTestService(newCaller(instanceFound), Options{})
	defer svc.Close()

	feature := NewFeature(svc, zap.NewNop())
	assert.Equal(t, "progress", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.Same(t, svc, feature.Service())
	assert.NoError(t, feature.Load(fiber.New()))
}

func TestHandleStartRun_ThenPoll(t *testing.T) {
	svc := newTestService(newCaller(instanceFound), Options{})
	defer svc.Close()
	app := setupApp(svc)

	req := httptest.NewRequest("POST", "/runs", strings.NewReader(`{"instance":"shop","spec":{}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var started RunView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	require.NotEmpty(t, started.ID)

	svc.Wait()

	resp, err = app.Test(httptest.NewRequest("GET", "/runs/"+started.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var polled RunView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&polled))
	assert.Equal(t, "done", polled.Status)
	assert.Contains(t, polled.Areas, status.Items)

	resp, err = app.Test(httptest.NewRequest("GET", "/runs", nil))
	require.NoError(t, err)
	var list []RunView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 1)
}

func TestHandleStartRun_Errors(t *testing.T) {
	docs := new(mocks.Documents)
	docs.On("ReadSpec", mock.Anything, "gone.yaml").Return(nil, fmt.Errorf("gone.yaml: %w", storage.ErrDocumentNotFound))

	svc := newTestService(newCaller(instanceFound), Options{Documents: docs})
	defer svc.Close()
	app := setupApp(svc)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "invalid body", body: `{`, want: fiber.StatusBadRequest},
		{name: "no spec", body: `{"instance":"shop"}`, want: fiber.StatusBadRequest},
		{name: "no instance", body: `{"spec":{}}`, want: fiber.StatusBadRequest},
		{name: "unknown spec key", body: `{"instance":"shop","specKey":"gone.yaml"}`, want: fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/runs", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestHandleGetRun_NotFound(t *testing.T) {
	svc := newTestService(newCaller(instanceFound), Options{})
	defer svc.Close()
	app := setupApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/runs/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleListRuns_JournalError(t *testing.T) {
	journal := new(mocks.Journal)
	journal.On("ListRuns", mock.Anything, 5).Return(nil, assert.AnError)

	svc := newTestService(newCaller(instanceFound), Options{Journal: journal})
	defer svc.Close()
	app := setupApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/runs?limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHandleListSpecs(t *testing.T) {
	t.Run("Listed", func(t *testing.T) {
		docs := new(mocks.Documents)
		docs.On("ListSpecs", mock.Anything, "shops/").Return([]string{"shops/a.yaml", "shops/b.json"}, nil)

		svc := newTestService(newCaller(instanceFound), Options{Documents: docs})
		defer svc.Close()

		resp, err := setupApp(svc).Test(httptest.NewRequest("GET", "/specs?prefix=shops/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var keys []string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&keys))
		assert.Equal(t, []string{"shops/a.yaml", "shops/b.json"}, keys)
	})

	t.Run("No Storage", func(t *testing.T) {
		svc := newTestService(newCaller(instanceFound), Options{})
		defer svc.Close()

		resp, err := setupApp(svc).Test(httptest.NewRequest("GET", "/specs", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestMetricsRoute(t *testing.T) {
	svc := newTestService(newCaller(instanceFound), Options{})
	defer svc.Close()

	resp, err := setupApp(svc).Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "catalog_bootstrapper_runs_active")
}
