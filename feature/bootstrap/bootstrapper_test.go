package bootstrap

import (
	"context"
	"errors"
	"sync"
	"testing"

	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveInstance_RunsOnceWhateverTheSetterOrder(t *testing.T) {
	f := newFakeAPI()
	b := New(Options{NewCaller: f.factory, Run: Config{GraceWindowMs: 1000}})

	var wg sync.WaitGroup
	sessions := make([]*Session, 5)
	errs := make([]error, 5)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i], errs[i] = b.ResolveInstance(context.Background())
		}(i)
	}

	b.SetInstanceIdentifier("shop")
	b.SetAccessToken("id", "secret")
	wg.Wait()

	for i := range sessions {
		require.NoError(t, errs[i])
		assert.Same(t, sessions[0], sessions[i])
	}
	assert.Equal(t, "inst-1", sessions[0].InstanceID)
	assert.Equal(t, "root", sessions[0].RootItemID)
	assert.Len(t, f.callsTo("GET_INSTANCE"), 1)
	assert.Equal(t, "shop", f.callsTo("GET_INSTANCE")[0]["identifier"])
}

func TestResolveInstance_EndpointCredentials(t *testing.T) {
	f := newFakeAPI()
	b := newTestBootstrapper(f, Config{})

	_, err := b.ResolveInstance(context.Background())
	require.NoError(t, err)

	byName := map[string]int{}
	for i, cfg := range f.configs {
		byName[cfg.Name] = i
	}
	require.Len(t, f.configs, 3)

	management := f.configs[byName["management"]]
	assert.Equal(t, "http://management", management.URL)
	assert.Equal(t, "id", management.Credentials.AccessTokenID)
	assert.Empty(t, management.Credentials.StaticAuthToken)

	catalog := f.configs[byName["catalog"]]
	assert.Equal(t, "http://api/shop/catalog", catalog.URL)
	assert.Equal(t, "static", catalog.Credentials.StaticAuthToken)
	assert.Empty(t, catalog.Credentials.AccessTokenID)

	orders := f.configs[byName["orders"]]
	assert.Equal(t, "http://api/shop/orders", orders.URL)
	assert.Equal(t, "static", orders.Credentials.StaticAuthToken)
	assert.Equal(t, "secret", orders.Credentials.AccessTokenSecret)
}

func TestResolveInstance_MissingSettings(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *Bootstrapper)
		want  error
	}{
		{name: "no token", setup: func(b *Bootstrapper) { b.SetInstanceIdentifier("shop") }, want: ErrMissingCredentials},
		{name: "no identifier", setup: func(b *Bootstrapper) { b.SetAccessToken("id", "secret") }, want: ErrMissingIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeAPI()
			b := New(Options{NewCaller: f.factory, Run: Config{GraceWindowMs: 5}})
			tt.setup(b)

			_, err := b.ResolveInstance(context.Background())
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, StateFailed, b.State())
			assert.Empty(t, f.callsTo("GET_INSTANCE"))
		})
	}
}

func TestMultilingualForcesOneWorker(t *testing.T) {
	f := newFakeAPI()
	newTestBootstrapper(f, Config{MaxWorkers: 8, Multilingual: true})

	require.NotEmpty(t, f.configs)
	assert.Equal(t, 1, f.configs[0].MaxWorkers)

	f = newFakeAPI()
	newTestBootstrapper(f, Config{MaxWorkers: 8})
	assert.Equal(t, 8, f.configs[0].MaxWorkers)
}

func TestStart_InstanceNotFoundFailsBeforeAnyArea(t *testing.T) {
	f := newFakeAPI()
	f.on("GET_INSTANCE", func(map[string]any) (any, error) {
		return map[string]any{"instance": map[string]any{"get": nil}}, nil
	})
	b := newTestBootstrapper(f, Config{})
	b.SetSpec(&spec.Spec{PriceVariants: ptr([]spec.PriceVariant{{Identifier: "eur"}})})

	events, cancel := b.Subscribe(1024)
	err := b.Start(context.Background())
	cancel()

	require.ErrorIs(t, err, ErrInstanceNotFound)
	assert.Equal(t, StateFailed, b.State())
	assert.Equal(t, []string{"GET_INSTANCE"}, f.operations())

	var types []EventType
	for _, ev := range collect(events) {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []EventType{EventError}, types)
}

func TestStart_AreasRunInOrder(t *testing.T) {
	f := newFakeAPI()
	b := newTestBootstrapper(f, Config{})
	b.SetSpec(&spec.Spec{})

	events, cancel := b.Subscribe(4096)
	require.NoError(t, b.Start(context.Background()))
	cancel()

	var lifecycle []EventType
	var done *Event
	for _, ev := range collect(events) {
		if ev.lifecycle() {
			lifecycle = append(lifecycle, ev.Type)
		}
		if ev.Type == EventDone {
			ev := ev
			done = &ev
		}
	}

	assert.Equal(t, []EventType{
		"languages-done",
		"price-variants-done",
		"stock-locations-done",
		"subscription-plans-done",
		"vat-types-done",
		"shapes-done",
		"topics-done",
		"grids-done",
		"items-done",
		"customers-done",
		"orders-done",
		"grids-done",
		EventDone,
	}, lifecycle)
	require.NotNil(t, done)
	assert.False(t, done.End.Before(done.Start))
	assert.Equal(t, done.End.Sub(done.Start), done.Duration)
	assert.Equal(t, StateDone, b.State())

	for _, a := range status.Areas() {
		assert.Equal(t, 1.0, b.Status().Area(a).Progress, a)
	}
}

func TestStart_AreaErrorDoesNotStopTheRun(t *testing.T) {
	f := newFakeAPI()
	f.on("GET_INSTANCE_PRICE_VARIANTS", func(map[string]any) (any, error) {
		return nil, errors.New("boom")
	})
	b := newTestBootstrapper(f, Config{})
	b.SetSpec(&spec.Spec{
		PriceVariants: ptr([]spec.PriceVariant{{Identifier: "eur", Name: "Euro", Currency: "EUR"}}),
		VatTypes:      ptr([]spec.VatType{{Name: "Standard", Percent: 25}}),
	})

	events, cancel := b.Subscribe(4096)
	require.NoError(t, b.Start(context.Background()))
	cancel()

	var errs []Event
	sawDone := false
	for _, ev := range collect(events) {
		switch ev.Type {
		case EventError:
			errs = append(errs, ev)
		case EventDone:
			sawDone = true
		}
	}
	require.Len(t, errs, 1)
	assert.Equal(t, status.PriceVariants, errs[0].Area)
	assert.Contains(t, errs[0].Message, "boom")
	assert.True(t, sawDone)
	assert.Len(t, f.callsTo("CREATE_VAT_TYPE"), 1)
	assert.Empty(t, f.callsTo("CREATE_PRICE_VARIANT"))
}

func TestStart_EntityFailureBecomesWarning(t *testing.T) {
	f := newFakeAPI()
	f.on("CREATE_PRICE_VARIANT", func(vars map[string]any) (any, error) {
		input := vars["input"].(map[string]any)
		if input["identifier"] == "usd" {
			return nil, errors.New("currency not supported")
		}
		return map[string]any{"priceVariant": map[string]any{"create": input}}, nil
	})
	b := newTestBootstrapper(f, Config{})
	b.SetSpec(&spec.Spec{PriceVariants: ptr([]spec.PriceVariant{
		{Identifier: "eur", Name: "Euro", Currency: "EUR"},
		{Identifier: "usd", Name: "Dollar", Currency: "USD"},
	})})

	require.NoError(t, b.Start(context.Background()))

	st := b.Status().Area(status.PriceVariants)
	assert.Equal(t, 1.0, st.Progress)
	require.Len(t, st.Warnings, 1)
	assert.Equal(t, "Dollar: error", st.Warnings[0].Message)
	assert.Contains(t, st.Warnings[0].Cause, "currency not supported")
	assert.Len(t, b.Session().PriceVariants, 1)
}

func TestSetPriceVariants_Scenario(t *testing.T) {
	f := newFakeAPI()
	f.on("CREATE_PRICE_VARIANT", func(vars map[string]any) (any, error) {
		return map[string]any{"priceVariant": map[string]any{"create": vars["input"]}}, nil
	})
	b := newTestBootstrapper(f, Config{})
	b.SetSpec(&spec.Spec{PriceVariants: ptr([]spec.PriceVariant{{Identifier: "eur", Name: "Euro", Currency: "EUR"}})})

	events, cancel := b.Subscribe(1024)
	got, err := b.SetPriceVariants(context.Background())
	cancel()
	require.NoError(t, err)

	assert.Equal(t, []spec.PriceVariant{{Identifier: "eur", Name: "Euro", Currency: "EUR"}}, got)
	assert.Len(t, f.callsTo("CREATE_PRICE_VARIANT"), 1)

	var progress []float64
	for _, ev := range collect(events) {
		if ev.Type == UpdateEvent(status.PriceVariants) && ev.Progress != nil {
			progress = append(progress, *ev.Progress)
		}
	}
	assert.Equal(t, []float64{1, 1}, progress)
}

func TestPlan_ReportsMissingWithoutWriting(t *testing.T) {
	f := newFakeAPI()
	f.on("GET_INSTANCE_PRICE_VARIANTS", func(map[string]any) (any, error) {
		return map[string]any{"priceVariant": map[string]any{"getMany": []map[string]any{
			{"identifier": "eur", "name": "Euro", "currency": "EUR"},
		}}}, nil
	})
	b := newTestBootstrapper(f, Config{})
	b.SetSpec(&spec.Spec{
		Languages: ptr([]spec.Language{{Code: "en", Name: "English"}, {Code: "no", Name: "Norsk"}}),
		PriceVariants: ptr([]spec.PriceVariant{
			{Identifier: "eur", Name: "Euro"},
			{Identifier: "usd", Name: "Dollar"},
		}),
	})

	plans, err := b.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 9)

	assert.Equal(t, "languages", plans[0].Area)
	assert.Equal(t, []string{"Norsk"}, plans[0].Missing)

	assert.Equal(t, "priceVariants", plans[1].Area)
	assert.True(t, plans[1].Managed)
	assert.Equal(t, 1, plans[1].Existing)
	assert.Equal(t, []string{"Dollar"}, plans[1].Missing)

	assert.False(t, plans[2].Managed)

	for _, op := range f.operations() {
		assert.NotContains(t, op, "CREATE", op)
		assert.NotContains(t, op, "ADD_", op)
	}
}
