// Package minio provides a storage.Store implementation using the MinIO client.
//
// MinIO is an S3-compatible object storage system. The official MinIO Go
// client also works with other S3-compatible services such as Ceph,
// SeaweedFS and Garage.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := miniostore.NewStore(client, "analysis", "feeddown/")
package minio
