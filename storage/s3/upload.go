package s3

import "github.com/aws/aws-sdk-go-v2/feature/s3/manager"

// UploadConfig tunes how encoded datasets are written to the bucket. The
// multipart fields only apply to datasets larger than PartSize.
type UploadConfig struct {
	PartSize    int64 // bytes per multipart chunk, 8 MiB by default
	Concurrency int   // parts in flight per dataset, 5 by default

	// EnableChecksum asks S3 to verify each stored dataset with CRC32C.
	EnableChecksum bool
	// LeavePartsOnError keeps the parts of a failed dataset upload in the
	// bucket instead of aborting the multipart upload.
	LeavePartsOnError bool
}

// DefaultUploadConfig returns the settings used unless WithUploadConfig is
// given.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:       8 << 20,
		Concurrency:    5,
		EnableChecksum: true,
	}
}

func newUploader(client manager.UploadAPIClient, cfg UploadConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		if cfg.PartSize > 0 {
			u.PartSize = cfg.PartSize
		}
		if cfg.Concurrency > 0 {
			u.Concurrency = cfg.Concurrency
		}
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})
}
