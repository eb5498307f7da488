// Package transport executes GraphQL calls against one remote endpoint.
//
// A Manager owns a single endpoint (management, catalog or orders API) and enforces
// everything a caller should not have to think about:
//   - Worker budget: at most MaxWorkers calls are in flight at once. The bootstrap
//     session builds its managers with a budget of 1 for multilingual runs.
//   - Request rate: an optional token bucket (golang.org/x/time/rate).
//   - Credentials: the access-token pair and/or the static auth token are attached
//     as headers on every request.
//   - Retries: queries are retried with exponential backoff on network failures, 429
//     and 5xx responses. Mutations are retried only on 429 and failed dials, so a
//     create the server may already have applied is never sent twice.
//   - Error capture: transport failures and remote-reported GraphQL errors are passed
//     to the configured ErrorNotifier and returned as typed errors.
//
// # Usage
//
//	m := transport.New(transport.Config{
//	    Name:        "management",
//	    URL:         "https://pim.ossgroup.com/graphql",
//	    Credentials: transport.Credentials{AccessTokenID: id, AccessTokenSecret: secret},
//	    MaxWorkers:  5,
//	})
//	resp, err := m.Push(ctx, transport.Request{Query: q, Variables: vars})
//
// Reconcilers never hold a Manager directly; they receive the Caller interface
// through the bootstrap session.
package transport
