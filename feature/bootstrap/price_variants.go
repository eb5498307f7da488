package bootstrap

import (
	"context"

	"catalog-bootstrapper/core/reconcile"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"
)

const queryPriceVariants = `query GET_INSTANCE_PRICE_VARIANTS($instanceId: ID!) {
  priceVariant {
    getMany(instanceId: $instanceId) { identifier name currency }
  }
}`

const mutationCreatePriceVariant = `mutation CREATE_PRICE_VARIANT($input: CreatePriceVariantInput!) {
  priceVariant {
    create(input: $input) { identifier name currency }
  }
}`

// FetchPriceVariants reads the price variants of the instance.
func (s *Session) FetchPriceVariants(ctx context.Context) ([]spec.PriceVariant, error) {
	data, err := query[struct {
		PriceVariant struct {
			GetMany []spec.PriceVariant `json:"getMany"`
		} `json:"priceVariant"`
	}](ctx, s.Management, queryPriceVariants, map[string]any{"instanceId": s.InstanceID})
	return data.PriceVariant.GetMany, err
}

func priceVariantArea(sess *Session) reconcile.Area[spec.PriceVariant] {
	return reconcile.Area[spec.PriceVariant]{
		Name:  string(status.PriceVariants),
		Fetch: sess.FetchPriceVariants,
		Create: func(ctx context.Context, v spec.PriceVariant) (spec.PriceVariant, error) {
			data, err := query[struct {
				PriceVariant struct {
					Create *spec.PriceVariant `json:"create"`
				} `json:"priceVariant"`
			}](ctx, sess.Management, mutationCreatePriceVariant, map[string]any{
				"input": map[string]any{
					"instanceId": sess.InstanceID,
					"identifier": v.Identifier,
					"name":       v.Name,
					"currency":   v.Currency,
				},
			})
			if err != nil {
				return v, err
			}
			if created := data.PriceVariant.Create; created != nil && created.Identifier != "" {
				return *created, nil
			}
			return v, nil
		},
		Key:   func(v spec.PriceVariant) string { return v.Identifier },
		Label: func(v spec.PriceVariant) string { return v.Name },
	}
}

// SetPriceVariants creates missing price variants.
func (b *Bootstrapper) SetPriceVariants(ctx context.Context) ([]spec.PriceVariant, error) {
	desired := b.currentSpec().PriceVariants
	var out []spec.PriceVariant
	err := b.runArea(ctx, status.PriceVariants, func(ctx context.Context, sess *Session, rep *areaReporter) error {
		all, err := reconcile.Reconcile(ctx, priceVariantArea(sess), desired, rep)
		if err != nil {
			return err
		}
		sess.PriceVariants = all
		out = all
		return nil
	})
	return out, err
}
