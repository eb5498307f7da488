package bootstrap

import (
	"context"
	"strings"

	"catalog-bootstrapper/core/reconcile"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"
)

const queryCustomers = `query GET_CUSTOMERS($instanceId: ID!) {
  customer {
    getMany(instanceId: $instanceId) {
      identifier
      firstName
      lastName
      email
      externalReferences { key value }
    }
  }
}`

const mutationCreateCustomer = `mutation CREATE_CUSTOMER($input: CreateCustomerInput!) {
  customer {
    create(input: $input) { identifier }
  }
}`

// FetchCustomers reads the customers of the instance.
func (s *Session) FetchCustomers(ctx context.Context) ([]spec.Customer, error) {
	data, err := query[struct {
		Customer struct {
			GetMany []spec.Customer `json:"getMany"`
		} `json:"customer"`
	}](ctx, s.Orders, queryCustomers, map[string]any{"instanceId": s.InstanceID})
	return data.Customer.GetMany, err
}

func customerArea(sess *Session) reconcile.Area[spec.Customer] {
	return reconcile.Area[spec.Customer]{
		Name:  string(status.Customers),
		Fetch: sess.FetchCustomers,
		Create: func(ctx context.Context, c spec.Customer) (spec.Customer, error) {
			input := map[string]any{
				"instanceId": sess.InstanceID,
				"identifier": c.Identifier,
				"firstName":  c.FirstName,
				"lastName":   c.LastName,
				"email":      c.Email,
			}
			if len(c.ExternalReferences) > 0 {
				input["externalReferences"] = c.ExternalReferences
			}
			_, err := query[struct{}](ctx, sess.Orders, mutationCreateCustomer, map[string]any{"input": input})
			return c, err
		},
		Key: func(c spec.Customer) string { return c.Identifier },
		Label: func(c spec.Customer) string {
			if name := strings.TrimSpace(c.FirstName + " " + c.LastName); name != "" {
				return name
			}
			return c.Identifier
		},
	}
}

// SetCustomers creates missing customers.
func (b *Bootstrapper) SetCustomers(ctx context.Context) error {
	desired := b.currentSpec().Customers
	return b.runArea(ctx, status.Customers, func(ctx context.Context, sess *Session, rep *areaReporter) error {
		_, err := reconcile.Reconcile(ctx, customerArea(sess), desired, rep)
		return err
	})
}
