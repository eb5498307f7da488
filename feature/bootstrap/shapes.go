package bootstrap

import (
	"context"

	"catalog-bootstrapper/core/reconcile"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"
)

const queryShapes = `query GET_SHAPES($instanceId: ID!) {
  shape {
    getMany(instanceId: $instanceId) {
      identifier
      name
      type
      components { id name type config }
    }
  }
}`

const mutationCreateShape = `mutation CREATE_SHAPE($input: CreateShapeInput!) {
  shape {
    create(input: $input) { identifier name type }
  }
}`

// FetchShapes reads the shapes of the instance.
func (s *Session) FetchShapes(ctx context.Context) ([]spec.Shape, error) {
	data, err := query[struct {
		Shape struct {
			GetMany []spec.Shape `json:"getMany"`
		} `json:"shape"`
	}](ctx, s.Management, queryShapes, map[string]any{"instanceId": s.InstanceID})
	return data.Shape.GetMany, err
}

func shapeArea(sess *Session) reconcile.Area[spec.Shape] {
	return reconcile.Area[spec.Shape]{
		Name:  string(status.Shapes),
		Fetch: sess.FetchShapes,
		Create: func(ctx context.Context, sh spec.Shape) (spec.Shape, error) {
			components := make([]map[string]any, 0, len(sh.Components))
			for _, c := range sh.Components {
				comp := map[string]any{"id": c.ID, "name": c.Name, "type": c.Type}
				if c.Config != nil {
					comp["config"] = c.Config
				}
				components = append(components, comp)
			}
			_, err := query[struct{}](ctx, sess.Management, mutationCreateShape, map[string]any{
				"input": map[string]any{
					"instanceId": sess.InstanceID,
					"identifier": sh.Identifier,
					"name":       sh.Name,
					"type":       sh.Type,
					"components": components,
				},
			})
			return sh, err
		},
		Key:   func(sh spec.Shape) string { return sh.Identifier },
		Label: func(sh spec.Shape) string { return sh.Name },
	}
}

// SetShapes creates missing shapes.
func (b *Bootstrapper) SetShapes(ctx context.Context) ([]spec.Shape, error) {
	desired := b.currentSpec().Shapes
	var out []spec.Shape
	err := b.runArea(ctx, status.Shapes, func(ctx context.Context, sess *Session, rep *areaReporter) error {
		all, err := reconcile.Reconcile(ctx, shapeArea(sess), desired, rep)
		if err != nil {
			return err
		}
		sess.Shapes = all
		out = all
		return nil
	})
	return out, err
}
