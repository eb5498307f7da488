package bootstrap

import (
	"context"
	"fmt"

	"catalog-bootstrapper/core/reconcile"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"
)

const queryOrders = `query GET_ORDERS($instanceId: ID!) {
  order {
    getMany(instanceId: $instanceId) {
      externalReference
      customer { identifier }
    }
  }
}`

const mutationCreateOrder = `mutation CREATE_ORDER($input: CreateOrderInput!) {
  order {
    create(input: $input) { id }
  }
}`

// FetchOrders reads the orders of the instance. Only identity fields are filled.
func (s *Session) FetchOrders(ctx context.Context) ([]spec.Order, error) {
	data, err := query[struct {
		Order struct {
			GetMany []struct {
				ExternalReference string `json:"externalReference"`
				Customer          *struct {
					Identifier string `json:"identifier"`
				} `json:"customer"`
			} `json:"getMany"`
		} `json:"order"`
	}](ctx, s.Orders, queryOrders, map[string]any{"instanceId": s.InstanceID})
	if err != nil {
		return nil, err
	}

	out := make([]spec.Order, 0, len(data.Order.GetMany))
	for _, o := range data.Order.GetMany {
		order := spec.Order{ExternalReference: o.ExternalReference}
		if o.Customer != nil {
			order.CustomerIdentifier = o.Customer.Identifier
		}
		out = append(out, order)
	}
	return out, nil
}

// orderArea keys orders by external reference; orders without one are always created.
func orderArea(sess *Session) reconcile.Area[spec.Order] {
	return reconcile.Area[spec.Order]{
		Name:  string(status.Orders),
		Fetch: sess.FetchOrders,
		Create: func(ctx context.Context, o spec.Order) (spec.Order, error) {
			cart := make([]map[string]any, 0, len(o.Cart))
			for _, line := range o.Cart {
				item := map[string]any{
					"sku":      line.SKU,
					"name":     line.Name,
					"quantity": line.Quantity,
				}
				if line.Price != nil {
					item["price"] = line.Price
				}
				cart = append(cart, item)
			}
			input := map[string]any{
				"instanceId": sess.InstanceID,
				"customer":   map[string]any{"identifier": o.CustomerIdentifier},
				"cart":       cart,
			}
			if o.ExternalReference != "" {
				input["externalReference"] = o.ExternalReference
			}
			if o.Total != nil {
				input["total"] = o.Total
			}
			_, err := query[struct{}](ctx, sess.Orders, mutationCreateOrder, map[string]any{"input": input})
			return o, err
		},
		Key: func(o spec.Order) string { return o.ExternalReference },
		Label: func(o spec.Order) string {
			if o.ExternalReference != "" {
				return o.ExternalReference
			}
			return fmt.Sprintf("order for %s", o.CustomerIdentifier)
		},
	}
}

// SetOrders creates missing orders. Orders without an external reference cannot be
// matched and are created again on every run; each one is reported as a warning.
func (b *Bootstrapper) SetOrders(ctx context.Context) error {
	desired := b.currentSpec().Orders
	return b.runArea(ctx, status.Orders, func(ctx context.Context, sess *Session, rep *areaReporter) error {
		area := orderArea(sess)
		if desired != nil {
			for _, o := range *desired {
				if o.ExternalReference == "" {
					rep.Warn(fmt.Sprintf("%s: no external reference, created on every run", area.Label(o)), nil)
				}
			}
		}
		_, err := reconcile.Reconcile(ctx, area, desired, rep)
		return err
	})
}
