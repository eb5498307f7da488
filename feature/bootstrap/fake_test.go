package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/transport"
	"catalog-bootstrapper/core/transport/mocks"
)

var operationPattern = regexp.MustCompile(`^\s*(?:query|mutation)\s+(\w+)`)

func operationName(document string) string {
	m := operationPattern.FindStringSubmatch(document)
	if m == nil {
		return ""
	}
	return m[1]
}

type call struct {
	operation string
	variables map[string]any
}

type handler func(vars map[string]any) (any, error)

// fakeAPI answers GraphQL documents by operation name. Every endpoint of a run shares it.
type fakeAPI struct {
	mu       sync.Mutex
	calls    []call
	handlers map[string]handler
	configs  []transport.Config
}

func newFakeAPI() *fakeAPI {
	f := &fakeAPI{handlers: make(map[string]handler)}
	f.on("GET_INSTANCE", func(map[string]any) (any, error) {
		return map[string]any{"instance": map[string]any{"get": map[string]any{
			"id":              "inst-1",
			"identifier":      "shop",
			"staticAuthToken": "static",
			"rootItemId":      "root",
		}}}, nil
	})
	f.languages([]spec.Language{{Code: "en", Name: "English"}}, "en")
	return f
}

func (f *fakeAPI) on(operation string, h handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[operation] = h
}

// languages installs a stateful language setup.
func (f *fakeAPI) languages(available []spec.Language, def string) {
	var mu sync.Mutex
	list := append([]spec.Language(nil), available...)

	f.on("GET_INSTANCE_LANGUAGES", func(map[string]any) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		langs := make([]map[string]any, 0, len(list))
		for _, l := range list {
			langs = append(langs, map[string]any{"code": l.Code, "name": l.Name})
		}
		return map[string]any{"instance": map[string]any{"get": map[string]any{
			"defaults":           map[string]any{"language": def},
			"availableLanguages": langs,
		}}}, nil
	})
	f.on("ADD_LANGUAGE", func(vars map[string]any) (any, error) {
		input := vars["input"].(map[string]any)
		mu.Lock()
		list = append(list, spec.Language{Code: input["code"].(string), Name: input["name"].(string)})
		mu.Unlock()
		return map[string]any{}, nil
	})
	f.on("SET_DEFAULT_LANGUAGE", func(vars map[string]any) (any, error) {
		mu.Lock()
		def = vars["language"].(string)
		mu.Unlock()
		return map[string]any{}, nil
	})
}

func (f *fakeAPI) factory(cfg transport.Config) transport.Caller {
	f.mu.Lock()
	f.configs = append(f.configs, cfg)
	f.mu.Unlock()
	return f
}

func (f *fakeAPI) Push(ctx context.Context, req transport.Request) (*transport.Response, error) {
	op := operationName(req.Query)

	f.mu.Lock()
	f.calls = append(f.calls, call{operation: op, variables: req.Variables})
	h := f.handlers[op]
	f.mu.Unlock()

	if h == nil {
		return mocks.JSON(`{}`), nil
	}
	data, err := h(req.Variables)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("fake %s: %w", op, err)
	}
	return mocks.JSON(string(raw)), nil
}

// callsTo returns the variables of every call of one operation.
func (f *fakeAPI) callsTo(operation string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]any
	for _, c := range f.calls {
		if c.operation == operation {
			out = append(out, c.variables)
		}
	}
	return out
}

func (f *fakeAPI) operations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.operation)
	}
	return out
}

func newTestBootstrapper(f *fakeAPI, run Config) *Bootstrapper {
	return New(Options{
		Run: run,
		API: APIConfig{
			ManagementURL:     "http://management",
			BaseURL:           "http://api",
			AccessTokenID:     "id",
			AccessTokenSecret: "secret",
			Instance:          "shop",
		},
		NewCaller: f.factory,
	})
}

func ptr[T any](v []T) *[]T { return &v }

// collect drains events until the channel closes.
func collect(ch <-chan Event) []Event {
	var out []Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}
