package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"catalog-bootstrapper/core/reconcile"
	"catalog-bootstrapper/core/reference"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"
)

const queryGrids = `query GET_GRIDS($instanceId: ID!, $language: String!) {
  grid {
    getMany(instanceId: $instanceId, language: $language) {
      id
      name
      rows {
        columns {
          layout { rowspan colspan }
          item { id externalReference path }
        }
      }
    }
  }
}`

const mutationCreateGrid = `mutation CREATE_GRID($input: CreateGridInput!, $language: String!) {
  grid {
    create(input: $input, language: $language) { id }
  }
}`

const mutationUpdateGrid = `mutation UPDATE_GRID($id: ID!, $input: UpdateGridInput!, $language: String!) {
  grid {
    update(id: $id, input: $input, language: $language) { id }
  }
}`

var errGridNotFound = errors.New("grid not found")

// RemoteGrid is a grid as stored on the instance.
type RemoteGrid struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Rows []RemoteGridRow `json:"rows"`
}

type RemoteGridRow struct {
	Columns []RemoteGridColumn `json:"columns"`
}

type RemoteGridColumn struct {
	Layout *spec.GridLayout `json:"layout"`
	Item   *RemoteGridItem  `json:"item"`
}

type RemoteGridItem struct {
	ID                string `json:"id"`
	ExternalReference string `json:"externalReference"`
	Path              string `json:"path"`
}

// Grid converts the remote grid into a spec grid referencing items by
// external reference when they have one, by path otherwise.
func (g RemoteGrid) Grid() spec.Grid {
	out := spec.Grid{Name: g.Name}
	for _, r := range g.Rows {
		row := spec.GridRow{Columns: make([]spec.GridColumn, 0, len(r.Columns))}
		for _, c := range r.Columns {
			col := spec.GridColumn{Layout: c.Layout}
			if c.Item != nil {
				ref := &spec.ItemReference{ExternalReference: c.Item.ExternalReference}
				if ref.ExternalReference == "" {
					ref.CatalogPath = c.Item.Path
				}
				col.Item = ref
			}
			row.Columns = append(row.Columns, col)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// FetchGrids reads the grids of the instance in one language.
func (s *Session) FetchGrids(ctx context.Context, language string) ([]RemoteGrid, error) {
	data, err := query[struct {
		Grid struct {
			GetMany []RemoteGrid `json:"getMany"`
		} `json:"grid"`
	}](ctx, s.Management, queryGrids, map[string]any{
		"instanceId": s.InstanceID,
		"language":   language,
	})
	return data.Grid.GetMany, err
}

// gridArea reconciles grids by name. warn receives unresolved item references;
// when nil they are dropped silently, since items may not exist yet.
func gridArea(sess *Session, warn func(string, error)) reconcile.Area[spec.Grid] {
	language := sess.DefaultLanguage.Code
	return reconcile.Area[spec.Grid]{
		Name: string(status.Grids),
		Fetch: func(ctx context.Context) ([]spec.Grid, error) {
			remote, err := sess.FetchGrids(ctx, language)
			if err != nil {
				return nil, err
			}
			out := make([]spec.Grid, 0, len(remote))
			for _, g := range remote {
				out = append(out, g.Grid())
			}
			return out, nil
		},
		Create: func(ctx context.Context, g spec.Grid) (spec.Grid, error) {
			rows, err := gridRows(ctx, sess, g, warn)
			if err != nil {
				return g, err
			}
			_, err = query[struct{}](ctx, sess.Management, mutationCreateGrid, map[string]any{
				"input": map[string]any{
					"instanceId": sess.InstanceID,
					"name":       g.Name,
					"rows":       rows,
				},
				"language": language,
			})
			return g, err
		},
		Key:   func(g spec.Grid) string { return g.Name },
		Label: func(g spec.Grid) string { return g.Name },
	}
}

// gridRows resolves the item references of g into grid row input.
func gridRows(ctx context.Context, sess *Session, g spec.Grid, warn func(string, error)) ([]map[string]any, error) {
	rows := make([]map[string]any, 0, len(g.Rows))
	for _, r := range g.Rows {
		columns := make([]map[string]any, 0, len(r.Columns))
		for _, c := range r.Columns {
			col := map[string]any{}
			if c.Layout != nil {
				col["layout"] = map[string]any{"rowspan": c.Layout.Rowspan, "colspan": c.Layout.Colspan}
			}
			if c.Item != nil {
				res, err := sess.Resolver.Resolve(ctx, reference.Lookup{
					ExternalReference: c.Item.ExternalReference,
					CatalogPath:       normalizedPath(c.Item.CatalogPath),
					Language:          sess.DefaultLanguage.Code,
					InstanceID:        sess.InstanceID,
				})
				if err != nil {
					return nil, err
				}
				if !res.Found() {
					if warn != nil {
						warn(fmt.Sprintf("%s: item %s not found", g.Name, describeReference(c.Item)), nil)
					}
					continue
				}
				col["itemId"] = res.ItemID
			}
			columns = append(columns, col)
		}
		rows = append(rows, map[string]any{"columns": columns})
	}
	return rows, nil
}

func normalizedPath(path string) string {
	if path == "" {
		return ""
	}
	return reference.NormalizePath(path)
}

func describeReference(ref *spec.ItemReference) string {
	if ref.ExternalReference != "" {
		return ref.ExternalReference
	}
	return ref.CatalogPath
}

// SetGrids creates missing grids. Item references that do not resolve yet are left
// for UpdateGrids.
func (b *Bootstrapper) SetGrids(ctx context.Context) error {
	desired := b.currentSpec().Grids
	return b.runArea(ctx, status.Grids, func(ctx context.Context, sess *Session, rep *areaReporter) error {
		_, err := reconcile.Reconcile(ctx, gridArea(sess, nil), desired, rep)
		return err
	})
}

// UpdateGrids writes the rows of every managed grid again, now that items exist.
// Unresolved item references are reported as warnings.
func (b *Bootstrapper) UpdateGrids(ctx context.Context) error {
	desired := b.currentSpec().Grids
	return b.runArea(ctx, status.Grids, func(ctx context.Context, sess *Session, rep *areaReporter) error {
		if desired == nil {
			reconcile.NewTracker(0, rep).Complete()
			return nil
		}

		remote, err := sess.FetchGrids(ctx, sess.DefaultLanguage.Code)
		if err != nil {
			return fmt.Errorf("fetch grids: %w", err)
		}
		ids := make(map[string]string, len(remote))
		for _, g := range remote {
			ids[g.Name] = g.ID
		}

		grids := reconcile.Diff(gridArea(sess, nil), nil, desired).Missing
		tracker := reconcile.NewTracker(len(grids), rep)

		var wg sync.WaitGroup
		for _, g := range grids {
			wg.Add(1)
			go func(g spec.Grid) {
				defer wg.Done()
				id, ok := ids[g.Name]
				if !ok {
					tracker.Record(g.Name, "updated", errGridNotFound)
					return
				}
				rows, err := gridRows(ctx, sess, g, rep.Warn)
				if err == nil {
					_, err = query[struct{}](ctx, sess.Management, mutationUpdateGrid, map[string]any{
						"id":       id,
						"input":    map[string]any{"rows": rows},
						"language": sess.DefaultLanguage.Code,
					})
				}
				tracker.Record(g.Name, "updated", err)
			}(g)
		}
		wg.Wait()

		tracker.Complete()
		return nil
	})
}
