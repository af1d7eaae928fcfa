// Package s3 provides an S3-backed blobstore.BlobStore for catalog
// snapshots, plus a DynamoDB-coordinated commit store for an atomic CURRENT
// snapshot pointer.
package s3
