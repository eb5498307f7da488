package bootstrap

import (
	"context"
	"fmt"

	"catalog-bootstrapper/core/reconcile"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"
)

const queryLanguages = `query GET_INSTANCE_LANGUAGES($instanceId: ID!) {
  instance {
    get(id: $instanceId) {
      defaults { language }
      availableLanguages { code name }
    }
  }
}`

const mutationAddLanguage = `mutation ADD_LANGUAGE($instanceId: ID!, $input: AddLanguageInput!) {
  instance {
    addLanguage(instanceId: $instanceId, input: $input) { id }
  }
}`

const mutationSetDefaultLanguage = `mutation SET_DEFAULT_LANGUAGE($instanceId: ID!, $language: String!) {
  instance {
    update(id: $instanceId, input: { defaults: { language: $language } }) { id }
  }
}`

// InstanceLanguages is the language setup of an instance.
type InstanceLanguages struct {
	Available []spec.Language
	Default   string
}

// FetchLanguages reads the available languages and marks the default. When the
// instance declares no default, the first available language is the default.
func (s *Session) FetchLanguages(ctx context.Context) (InstanceLanguages, error) {
	data, err := query[struct {
		Instance struct {
			Get struct {
				Defaults *struct {
					Language string `json:"language"`
				} `json:"defaults"`
				AvailableLanguages []spec.Language `json:"availableLanguages"`
			} `json:"get"`
		} `json:"instance"`
	}](ctx, s.Management, queryLanguages, map[string]any{"instanceId": s.InstanceID})
	if err != nil {
		return InstanceLanguages{}, err
	}

	get := data.Instance.Get
	out := InstanceLanguages{Available: get.AvailableLanguages}
	if get.Defaults != nil {
		out.Default = get.Defaults.Language
	}
	if out.Default == "" && len(out.Available) > 0 {
		out.Default = out.Available[0].Code
	}
	markDefault(out.Available, out.Default)
	return out, nil
}

func markDefault(languages []spec.Language, code string) {
	for i := range languages {
		languages[i].IsDefault = languages[i].Code == code
	}
}

func languageArea(sess *Session) reconcile.Area[spec.Language] {
	return reconcile.Area[spec.Language]{
		Name: string(status.Languages),
		Fetch: func(ctx context.Context) ([]spec.Language, error) {
			settings, err := sess.FetchLanguages(ctx)
			return settings.Available, err
		},
		Create: func(ctx context.Context, l spec.Language) (spec.Language, error) {
			_, err := query[struct{}](ctx, sess.Management, mutationAddLanguage, map[string]any{
				"instanceId": sess.InstanceID,
				"input":      map[string]any{"code": l.Code, "name": l.Name},
			})
			return spec.Language{Code: l.Code, Name: l.Name}, err
		},
		Key:   func(l spec.Language) string { return l.Code },
		Label: func(l spec.Language) string { return l.Name },
	}
}

// SetLanguages adds missing languages, settles the default language and returns
// every language of the instance. A failure aborts the run.
func (b *Bootstrapper) SetLanguages(ctx context.Context) ([]spec.Language, error) {
	desired := b.currentSpec().Languages

	err := b.runArea(ctx, status.Languages, func(ctx context.Context, sess *Session, rep *areaReporter) error {
		settings, err := sess.FetchLanguages(ctx)
		if err != nil {
			return fmt.Errorf("fetch languages: %w", err)
		}

		area := languageArea(sess)
		area.Finalize = func(ctx context.Context, all []spec.Language, _ reconcile.Reporter) []spec.Language {
			fallback := settings.Default
			if !hasLanguage(all, fallback) && len(all) > 0 {
				fallback = all[0].Code
			}

			wanted := declaredDefault(desired)
			if wanted != "" && !hasLanguage(all, wanted) {
				rep.Warn(fmt.Sprintf("Default language %q is not available", wanted), nil)
				wanted = ""
			}
			if wanted == "" {
				wanted = fallback
			}
			if wanted == "" || wanted == settings.Default {
				markDefault(all, wanted)
				return all
			}

			_, err := query[struct{}](ctx, sess.Management, mutationSetDefaultLanguage, map[string]any{
				"instanceId": sess.InstanceID,
				"language":   wanted,
			})
			if err != nil {
				rep.Warn(fmt.Sprintf("Setting default language to %q: error", wanted), err)
				markDefault(all, fallback)
				return all
			}
			markDefault(all, wanted)
			rep.Message(fmt.Sprintf("Setting default language to %q: success", wanted))
			return all
		}

		plan := reconcile.Diff(area, settings.Available, desired)
		if len(plan.Missing) > 0 {
			rep.Message(fmt.Sprintf("Adding %d language(s)...", len(plan.Missing)))
		}
		languages := reconcile.Apply(ctx, area, plan, rep)

		return settleLanguages(sess, languages)
	})
	if err != nil {
		return nil, fatal(err)
	}
	return b.Session().AvailableLanguages, nil
}

// loadLanguages settles the session languages from the instance without writing.
func loadLanguages(ctx context.Context, sess *Session) error {
	settings, err := sess.FetchLanguages(ctx)
	if err != nil {
		return fmt.Errorf("fetch languages: %w", err)
	}
	return settleLanguages(sess, settings.Available)
}

func settleLanguages(sess *Session, languages []spec.Language) error {
	if len(languages) == 0 {
		return ErrNoLanguages
	}

	var def *spec.Language
	for i := range languages {
		if languages[i].IsDefault {
			def = &languages[i]
			break
		}
	}
	if def == nil {
		return ErrNoDefaultLanguage
	}

	sess.DefaultLanguage = *def
	sess.AvailableLanguages = languages
	sess.Languages = languages
	if !sess.Config.Multilingual {
		sess.Languages = []spec.Language{*def}
	}
	return nil
}

func hasLanguage(languages []spec.Language, code string) bool {
	if code == "" {
		return false
	}
	for _, l := range languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

func declaredDefault(desired *[]spec.Language) string {
	if desired == nil {
		return ""
	}
	for _, l := range *desired {
		if l.IsDefault {
			return l.Code
		}
	}
	return ""
}
