// Package storage persists encoded datasets.
//
// Store is the interface for reading and writing named result blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local file system, reads are memory mapped
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 (package storage/s3)
//   - minio.Store: MinIO and S3-compatible services (package storage/minio)
//
// Names are slash separated and relative to the store root.
package storage
