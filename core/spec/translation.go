package spec

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// AnyLanguage keys a translation given as a plain string.
const AnyLanguage = "*"

// Translation holds a text per language code. A document may give a plain string,
// which applies to every language.
type Translation map[string]string

// Text wraps a plain string into a Translation.
func Text(s string) Translation {
	return Translation{AnyLanguage: s}
}

// In returns the text for language, falling back to the plain string and then to
// fallback language.
func (t Translation) In(language, fallback string) string {
	if v, ok := t[language]; ok {
		return v
	}
	if v, ok := t[AnyLanguage]; ok {
		return v
	}
	return t[fallback]
}

// Languages returns the explicit language codes, sorted.
func (t Translation) Languages() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		if k != AnyLanguage {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// MarshalJSON writes a plain string when the translation applies to every language.
func (t Translation) MarshalJSON() ([]byte, error) {
	if v, ok := t[AnyLanguage]; ok && len(t) == 1 {
		return json.Marshal(v)
	}
	return json.Marshal(map[string]string(t))
}

func (t *Translation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("translation must be a string or an object of strings: %w", err)
	}
	*t = m
	return nil
}

func (t Translation) MarshalYAML() (any, error) {
	if v, ok := t[AnyLanguage]; ok && len(t) == 1 {
		return v, nil
	}
	return map[string]string(t), nil
}

func (t *Translation) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*t = Text(value.Value)
		return nil
	}
	var m map[string]string
	if err := value.Decode(&m); err != nil {
		return fmt.Errorf("translation must be a string or a mapping of strings: %w", err)
	}
	*t = m
	return nil
}
