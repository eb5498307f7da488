package bootstrap

import (
	"context"
	"testing"

	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frontpage() *[]spec.Grid {
	return ptr([]spec.Grid{{
		Name: "Frontpage",
		Rows: []spec.GridRow{{Columns: []spec.GridColumn{
			{Layout: &spec.GridLayout{Rowspan: 1, Colspan: 2}, Item: &spec.ItemReference{ExternalReference: "chair-1"}},
		}}},
	}})
}

func TestGrids_SecondPassFillsItems(t *testing.T) {
	c := newCatalogFake()
	b := newTestBootstrapper(c.fakeAPI, Config{})
	b.SetSpec(&spec.Spec{Grids: frontpage()})

	require.NoError(t, b.SetGrids(context.Background()))

	creates := c.callsTo("CREATE_GRID")
	require.Len(t, creates, 1)
	rows := input(creates[0])["rows"].([]map[string]any)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0]["columns"])
	assert.Empty(t, b.Status().Area(status.Grids).Warnings)

	c.existing["chair-1"] = "p-1"
	c.on("GET_GRIDS", func(map[string]any) (any, error) {
		return map[string]any{"grid": map[string]any{"getMany": []map[string]any{
			{"id": "g-1", "name": "Frontpage"},
		}}}, nil
	})

	require.NoError(t, b.UpdateGrids(context.Background()))

	updates := c.callsTo("UPDATE_GRID")
	require.Len(t, updates, 1)
	assert.Equal(t, "g-1", updates[0]["id"])
	columns := input(updates[0])["rows"].([]map[string]any)[0]["columns"].([]map[string]any)
	require.Len(t, columns, 1)
	assert.Equal(t, "p-1", columns[0]["itemId"])
	assert.Equal(t, map[string]any{"rowspan": 1, "colspan": 2}, columns[0]["layout"])

	st := b.Status().Area(status.Grids)
	assert.Equal(t, 1.0, st.Progress)
	assert.Empty(t, st.Warnings)
}

func TestUpdateGrids_WarnsOnUnresolvedItems(t *testing.T) {
	c := newCatalogFake()
	c.on("GET_GRIDS", func(map[string]any) (any, error) {
		return map[string]any{"grid": map[string]any{"getMany": []map[string]any{
			{"id": "g-1", "name": "Frontpage"},
		}}}, nil
	})
	b := newTestBootstrapper(c.fakeAPI, Config{})
	b.SetSpec(&spec.Spec{Grids: ptr(append(*frontpage(), spec.Grid{Name: "Campaign"}))})

	require.NoError(t, b.UpdateGrids(context.Background()))

	assert.Len(t, c.callsTo("UPDATE_GRID"), 1)
	st := b.Status().Area(status.Grids)
	assert.Equal(t, 1.0, st.Progress)

	var messages []string
	for _, w := range st.Warnings {
		messages = append(messages, w.Message)
	}
	assert.ElementsMatch(t, []string{"Frontpage: item chair-1 not found", "Campaign: error"}, messages)
}

func TestRemoteGrid_Grid(t *testing.T) {
	g := RemoteGrid{
		Name: "Frontpage",
		Rows: []RemoteGridRow{{Columns: []RemoteGridColumn{
			{Item: &RemoteGridItem{ID: "p-1", Path: "/shop/chair"}},
			{Item: &RemoteGridItem{ID: "p-2", ExternalReference: "table-1", Path: "/shop/table"}},
			{Layout: &spec.GridLayout{Rowspan: 2, Colspan: 1}},
		}}},
	}

	got := g.Grid()
	require.Len(t, got.Rows, 1)
	columns := got.Rows[0].Columns
	require.Len(t, columns, 3)
	assert.Equal(t, &spec.ItemReference{CatalogPath: "/shop/chair"}, columns[0].Item)
	assert.Equal(t, &spec.ItemReference{ExternalReference: "table-1"}, columns[1].Item)
	assert.Nil(t, columns[2].Item)
	assert.Equal(t, 2, columns[2].Layout.Rowspan)
}
