// Package progress runs bootstraps behind the HTTP API and exposes their progress.
//
// A POST to /runs starts a run in the background and answers 202 with the run id.
// Dashboards then poll GET /runs/{id}, which returns the progress fraction and the
// warnings of every area. Runs of the current process are served from memory; older
// runs come from the database journal when one is configured.
//
// # Endpoints
//
//   - POST /runs: start a run of an inline spec or a stored spec key.
//   - GET /runs: latest runs, newest first.
//   - GET /runs/{id}: one run.
//   - GET /specs: spec documents in the storage bucket.
//   - GET /metrics: Prometheus metrics of runs and remote calls.
//
// The number of concurrent runs is bounded; extra requests get 429.
// Finished runs are written as JSON reports to the storage bucket.
package progress
