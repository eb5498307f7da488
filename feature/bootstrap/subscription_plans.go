package bootstrap

import (
	"context"

	"catalog-bootstrapper/core/reconcile"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"
)

const querySubscriptionPlans = `query GET_INSTANCE_SUBSCRIPTION_PLANS($instanceId: ID!) {
  subscriptionPlan {
    getMany(instanceId: $instanceId) {
      identifier
      name
      meteredVariables { identifier name unit }
      periods {
        name
        initial { period unit }
        recurring { period unit }
      }
    }
  }
}`

const mutationCreateSubscriptionPlan = `mutation CREATE_SUBSCRIPTION_PLAN($input: CreateSubscriptionPlanInput!) {
  subscriptionPlan {
    create(input: $input) { identifier }
  }
}`

// FetchSubscriptionPlans reads the subscription plans of the instance.
func (s *Session) FetchSubscriptionPlans(ctx context.Context) ([]spec.SubscriptionPlan, error) {
	data, err := query[struct {
		SubscriptionPlan struct {
			GetMany []spec.SubscriptionPlan `json:"getMany"`
		} `json:"subscriptionPlan"`
	}](ctx, s.Management, querySubscriptionPlans, map[string]any{"instanceId": s.InstanceID})
	if err != nil {
		return nil, err
	}
	plans := data.SubscriptionPlan.GetMany
	for i := range plans {
		if plans[i].MeteredVariables == nil {
			plans[i].MeteredVariables = []spec.MeteredVariable{}
		}
		if plans[i].Periods == nil {
			plans[i].Periods = []spec.PlanPeriod{}
		}
	}
	return plans, nil
}

// subscriptionPlanArea re-reads plans after creation to pick up server-side ids.
func subscriptionPlanArea(sess *Session) reconcile.Area[spec.SubscriptionPlan] {
	return reconcile.Area[spec.SubscriptionPlan]{
		Name:  string(status.SubscriptionPlans),
		Fetch: sess.FetchSubscriptionPlans,
		Create: func(ctx context.Context, p spec.SubscriptionPlan) (spec.SubscriptionPlan, error) {
			_, err := query[struct{}](ctx, sess.Management, mutationCreateSubscriptionPlan, map[string]any{
				"input": map[string]any{
					"instanceId":       sess.InstanceID,
					"identifier":       p.Identifier,
					"name":             p.Name,
					"meteredVariables": p.MeteredVariables,
					"periods":          p.Periods,
				},
			})
			return p, err
		},
		Key:     func(p spec.SubscriptionPlan) string { return p.Identifier },
		Label:   func(p spec.SubscriptionPlan) string { return p.Name },
		Refetch: true,
	}
}

// SetSubscriptionPlans creates missing subscription plans.
func (b *Bootstrapper) SetSubscriptionPlans(ctx context.Context) ([]spec.SubscriptionPlan, error) {
	desired := b.currentSpec().SubscriptionPlans
	var out []spec.SubscriptionPlan
	err := b.runArea(ctx, status.SubscriptionPlans, func(ctx context.Context, sess *Session, rep *areaReporter) error {
		all, err := reconcile.Reconcile(ctx, subscriptionPlanArea(sess), desired, rep)
		if err != nil {
			return err
		}
		sess.SubscriptionPlans = all
		out = all
		return nil
	})
	return out, err
}
