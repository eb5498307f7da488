// Package reference resolves human-meaningful references to remote item ids.
//
// A reference is an external reference, a catalog path, or both. Resolution tries,
// in order:
//
//  1. the external reference against the management API, optionally filtered to
//     one shape;
//  2. the catalog path against the read-optimized catalog API;
//  3. the local map of paths remembered earlier in the same run, which covers
//     items created by this run but not yet visible through the catalog API.
//
// Not finding anything is a normal outcome and yields an empty Resolution. Only
// transport failures are returned as errors.
//
// Results are memoized in a Cache owned by the caller, and only when cache reuse is
// enabled. Creation runs leave it disabled because the catalog they mutate would
// make cached entries stale.
package reference
