// Package export writes the spec document of a live instance.
//
// Export reads languages (the default one flagged), VAT types, subscription plans,
// price variants, topic maps, shapes, grids and stock locations, drops remote ids and
// returns a spec that can seed another instance. Topics and grids are read in one
// language, the default language unless the request names another.
//
// The result is returned by GET /export, stored in the bucket by POST /export, or
// written to a local file by the export command.
package export
