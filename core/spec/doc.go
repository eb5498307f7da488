// Package spec models the declarative catalog document.
//
// Every area is a pointer to a slice: nil means "leave this area alone", a non-nil
// empty slice means "reconcile this area to empty". Documents are read from JSON or
// YAML; both formats share the same field names.
package spec
