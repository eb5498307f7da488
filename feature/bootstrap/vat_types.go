package bootstrap

import (
	"context"

	"catalog-bootstrapper/core/reconcile"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"
)

const queryVatTypes = `query GET_INSTANCE_VAT_TYPES($instanceId: ID!) {
  instance {
    get(id: $instanceId) {
      vatTypes { id name percent }
    }
  }
}`

const mutationCreateVatType = `mutation CREATE_VAT_TYPE($input: CreateVatTypeInput!) {
  vatType {
    create(input: $input) { id name percent }
  }
}`

// FetchVatTypes reads the vat types of the instance.
func (s *Session) FetchVatTypes(ctx context.Context) ([]spec.VatType, error) {
	data, err := query[struct {
		Instance struct {
			Get struct {
				VatTypes []spec.VatType `json:"vatTypes"`
			} `json:"get"`
		} `json:"instance"`
	}](ctx, s.Management, queryVatTypes, map[string]any{"instanceId": s.InstanceID})
	return data.Instance.Get.VatTypes, err
}

func vatTypeArea(sess *Session) reconcile.Area[spec.VatType] {
	return reconcile.Area[spec.VatType]{
		Name:  string(status.VatTypes),
		Fetch: sess.FetchVatTypes,
		Create: func(ctx context.Context, v spec.VatType) (spec.VatType, error) {
			_, err := query[struct{}](ctx, sess.Management, mutationCreateVatType, map[string]any{
				"input": map[string]any{
					"instanceId": sess.InstanceID,
					"name":       v.Name,
					"percent":    v.Percent,
				},
			})
			return v, err
		},
		Key:     func(v spec.VatType) string { return v.Name },
		Refetch: true,
	}
}

// SetVatTypes creates missing vat types.
func (b *Bootstrapper) SetVatTypes(ctx context.Context) ([]spec.VatType, error) {
	desired := b.currentSpec().VatTypes
	var out []spec.VatType
	err := b.runArea(ctx, status.VatTypes, func(ctx context.Context, sess *Session, rep *areaReporter) error {
		all, err := reconcile.Reconcile(ctx, vatTypeArea(sess), desired, rep)
		if err != nil {
			return err
		}
		sess.VatTypes = all
		out = all
		return nil
	})
	return out, err
}
