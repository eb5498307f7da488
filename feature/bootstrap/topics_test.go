package bootstrap

import (
	"context"
	"errors"
	"testing"

	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTopics_CreatesMissingLevelByLevel(t *testing.T) {
	c := newCatalogFake()
	c.on("GET_TOPICS", func(map[string]any) (any, error) {
		return map[string]any{"topic": map[string]any{"getMany": []map[string]any{
			{"id": "t-furniture", "name": "Furniture", "path": "/furniture"},
		}}}, nil
	})
	b := newTestBootstrapper(c.fakeAPI, Config{})
	b.SetSpec(&spec.Spec{Topics: ptr([]spec.Topic{
		{Name: "Furniture", Children: []spec.Topic{{Name: "Chairs"}, {Name: "Tables"}}},
		{Name: "Outdoor", PathIdentifier: "garden"},
	})})

	events, cancel := b.Subscribe(1024)
	require.NoError(t, b.SetTopics(context.Background()))
	cancel()

	creates := c.callsTo("CREATE_TOPIC")
	require.Len(t, creates, 3)
	parents := map[string]any{}
	for _, vars := range creates {
		parents[input(vars)["pathIdentifier"].(string)] = input(vars)["parentId"]
	}
	assert.Equal(t, map[string]any{
		"chairs": "t-furniture",
		"tables": "t-furniture",
		"garden": nil,
	}, parents)

	id, ok := b.Resolver().ResolveTopic("en", "/furniture/chairs")
	assert.True(t, ok)
	assert.NotEmpty(t, id)

	var progress []float64
	for _, ev := range collect(events) {
		if ev.Type == UpdateEvent(status.Topics) && ev.Progress != nil {
			progress = append(progress, *ev.Progress)
		}
	}
	require.Len(t, progress, 4)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
	assert.Equal(t, 1.0, progress[3])
}

func TestSetTopics_FailedParentSkipsChildren(t *testing.T) {
	c := newCatalogFake()
	c.on("CREATE_TOPIC", func(map[string]any) (any, error) {
		return nil, errors.New("denied")
	})
	b := newTestBootstrapper(c.fakeAPI, Config{})
	b.SetSpec(&spec.Spec{Topics: ptr([]spec.Topic{
		{Name: "Furniture", Children: []spec.Topic{{Name: "Chairs"}}},
	})})

	require.NoError(t, b.SetTopics(context.Background()))

	assert.Len(t, c.callsTo("CREATE_TOPIC"), 1)
	st := b.Status().Area(status.Topics)
	assert.Equal(t, 1.0, st.Progress)
	require.Len(t, st.Warnings, 2)
	assert.Equal(t, "Chairs: error", st.Warnings[1].Message)
}

func TestSetTopics_SiblingsSharingAPathAreCreatedOnce(t *testing.T) {
	c := newCatalogFake()
	b := newTestBootstrapper(c.fakeAPI, Config{})
	b.SetSpec(&spec.Spec{Topics: ptr([]spec.Topic{
		{Name: "Shoes", Children: []spec.Topic{{Name: "Boots"}}},
		{Name: "shoes", Children: []spec.Topic{{Name: "Sandals"}}},
	})})

	require.NoError(t, b.SetTopics(context.Background()))

	creates := c.callsTo("CREATE_TOPIC")
	require.Len(t, creates, 3)
	segments := make([]string, 0, len(creates))
	for _, vars := range creates {
		segments = append(segments, input(vars)["pathIdentifier"].(string))
	}
	assert.ElementsMatch(t, []string{"shoes", "boots", "sandals"}, segments)

	st := b.Status().Area(status.Topics)
	assert.Equal(t, 1.0, st.Progress)
	assert.Empty(t, st.Warnings)
	_, ok := b.Resolver().ResolveTopic("en", "/shoes/sandals")
	assert.True(t, ok)
}

func TestEnsureTopicPath_SharesConcurrentCreation(t *testing.T) {
	c := newCatalogFake()
	b := newTestBootstrapper(c.fakeAPI, Config{})
	sess, err := b.ResolveInstance(context.Background())
	require.NoError(t, err)

	ids := make(chan string, 8)
	for i := 0; i < 8; i++ {
		go func() {
			id, err := b.ensureTopicPath(context.Background(), sess, "en", "/rooms/kitchen")
			assert.NoError(t, err)
			ids <- id
		}()
	}
	first := <-ids
	for i := 1; i < 8; i++ {
		assert.Equal(t, first, <-ids)
	}
	assert.Len(t, c.callsTo("CREATE_TOPIC"), 2)
}

func TestTopicTree(t *testing.T) {
	tree := TopicTree([]RemoteTopic{
		{ID: "1", Name: "Furniture", Path: "/furniture"},
		{ID: "2", Name: "Chairs", ParentID: "1", Path: "/furniture/chairs"},
		{ID: "3", Name: "Orphan", ParentID: "missing", Path: "/orphan"},
	})

	assert.Equal(t, []spec.Topic{
		{Name: "Furniture", PathIdentifier: "furniture", Children: []spec.Topic{
			{Name: "Chairs", PathIdentifier: "chairs", Children: []spec.Topic{}},
		}},
		{Name: "Orphan", PathIdentifier: "orphan", Children: []spec.Topic{}},
	}, tree)
}
