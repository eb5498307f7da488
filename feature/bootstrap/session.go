package bootstrap

import (
	"catalog-bootstrapper/core/reference"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/transport"
)

// Session is the instance-level state of one run. It is the only source of remote
// access for area reconcilers.
type Session struct {
	InstanceID         string
	InstanceIdentifier string
	RootItemID         string

	DefaultLanguage spec.Language

	// AvailableLanguages are all languages of the instance.
	AvailableLanguages []spec.Language

	// Languages are the languages written by this run: all of them in multilingual
	// runs, the default language only otherwise.
	Languages []spec.Language

	Management transport.Caller
	Catalog    transport.Caller
	Orders     transport.Caller

	Resolver *reference.Resolver
	Config   Config

	PriceVariants     []spec.PriceVariant
	StockLocations    []spec.StockLocation
	SubscriptionPlans []spec.SubscriptionPlan
	VatTypes          []spec.VatType
	Shapes            []spec.Shape
}

// LanguageCodes returns the codes of the session languages.
func (s *Session) LanguageCodes() []string {
	out := make([]string, 0, len(s.Languages))
	for _, l := range s.Languages {
		out = append(out, l.Code)
	}
	return out
}

func (s *Session) shapeType(identifier string) (spec.ShapeType, bool) {
	for _, sh := range s.Shapes {
		if sh.Identifier == identifier {
			return sh.Type, true
		}
	}
	return "", false
}

func (s *Session) vatTypeID(name string) string {
	for _, v := range s.VatTypes {
		if v.Name == name {
			return v.ID
		}
	}
	if name == "" && len(s.VatTypes) > 0 {
		return s.VatTypes[0].ID
	}
	return ""
}
