package bootstrap

import (
	"context"

	"catalog-bootstrapper/core/reconcile"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"
)

const queryStockLocations = `query GET_INSTANCE_STOCK_LOCATIONS($instanceId: ID!) {
  stockLocation {
    getMany(instanceId: $instanceId) {
      identifier
      name
      settings { minimum }
    }
  }
}`

const mutationCreateStockLocation = `mutation CREATE_STOCK_LOCATION($input: CreateStockLocationInput!) {
  stockLocation {
    create(input: $input) { identifier }
  }
}`

type remoteStockLocation struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Settings   *struct {
		Minimum *int `json:"minimum"`
	} `json:"settings"`
}

// FetchStockLocations reads the stock locations of the instance.
func (s *Session) FetchStockLocations(ctx context.Context) ([]spec.StockLocation, error) {
	data, err := query[struct {
		StockLocation struct {
			GetMany []remoteStockLocation `json:"getMany"`
		} `json:"stockLocation"`
	}](ctx, s.Management, queryStockLocations, map[string]any{"instanceId": s.InstanceID})
	if err != nil {
		return nil, err
	}

	out := make([]spec.StockLocation, 0, len(data.StockLocation.GetMany))
	for _, r := range data.StockLocation.GetMany {
		sl := spec.StockLocation{Identifier: r.Identifier, Name: r.Name}
		if r.Settings != nil {
			sl.Minimum = r.Settings.Minimum
		}
		out = append(out, sl)
	}
	return out, nil
}

func stockLocationArea(sess *Session) reconcile.Area[spec.StockLocation] {
	return reconcile.Area[spec.StockLocation]{
		Name:  string(status.StockLocations),
		Fetch: sess.FetchStockLocations,
		Create: func(ctx context.Context, sl spec.StockLocation) (spec.StockLocation, error) {
			input := map[string]any{
				"instanceId": sess.InstanceID,
				"identifier": sl.Identifier,
				"name":       sl.Name,
			}
			if sl.Minimum != nil {
				input["settings"] = map[string]any{"minimum": *sl.Minimum}
			}
			_, err := query[struct{}](ctx, sess.Management, mutationCreateStockLocation, map[string]any{"input": input})
			return sl, err
		},
		Key:   func(sl spec.StockLocation) string { return sl.Identifier },
		Label: func(sl spec.StockLocation) string { return sl.Name },
	}
}

// SetStockLocations creates missing stock locations.
func (b *Bootstrapper) SetStockLocations(ctx context.Context) ([]spec.StockLocation, error) {
	desired := b.currentSpec().StockLocations
	var out []spec.StockLocation
	err := b.runArea(ctx, status.StockLocations, func(ctx context.Context, sess *Session, rep *areaReporter) error {
		all, err := reconcile.Reconcile(ctx, stockLocationArea(sess), desired, rep)
		if err != nil {
			return err
		}
		sess.StockLocations = all
		out = all
		return nil
	})
	return out, err
}
