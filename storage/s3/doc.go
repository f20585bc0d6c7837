// Package s3 provides an S3 implementation of the storage.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("feeddown/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
// # Features
//
//   - Multipart uploads for large datasets
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
