// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface, so storage interactions can
// be mocked in unit tests (see core/storage/mocks). Both AWS S3 and self-hosted MinIO work.
//
// # Documents
//
// Documents builds on Client to keep the files of the bootstrapper in one bucket:
//
//   - ReadSpec / WriteSpec: spec documents, JSON or YAML depending on the key extension.
//   - WriteReport: JSON reports of finished runs.
//   - ListSpecs: keys of the spec documents under a prefix.
//
// # Usage
//
//	docs, err := storage.Open(cfg.Storage)
//	s, err := docs.ReadSpec(ctx, "shops/demo.yaml")
package storage
