// Package minio provides a MinIO-backed blobstore.BlobStore for catalog
// snapshots, for self-hosted object storage.
package minio
