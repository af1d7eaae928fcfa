package snapshot

import (
	"context"
	"fmt"

	"github.com/hupe1980/streamflux/blobstore"
	"github.com/hupe1980/streamflux/catalog"
	"github.com/hupe1980/streamflux/resource"
)

// StoreOptions configures blobstore-backed snapshot transfer.
type StoreOptions struct {
	// Compression selects the payload compression. Defaults to ZSTD.
	Compression Compression

	// Controller, when set, bounds transfer concurrency and throughput.
	Controller *resource.Controller

	// Catalog options applied when rebuilding the catalog on load.
	Catalog []func(o *catalog.Options)
}

func applyStoreOptions(optFns []func(o *StoreOptions)) StoreOptions {
	opts := StoreOptions{Compression: CompressionZSTD}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// SaveTo encodes the catalog and writes it to the blob store under name.
func SaveTo(ctx context.Context, bs blobstore.BlobStore, name string, cat *catalog.Catalog, optFns ...func(o *StoreOptions)) error {
	opts := applyStoreOptions(optFns)

	if opts.Controller != nil {
		if err := opts.Controller.AcquireTransfer(ctx); err != nil {
			return fmt.Errorf("snapshot: acquire transfer slot: %w", err)
		}
		defer opts.Controller.ReleaseTransfer()
	}

	wb, err := bs.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("snapshot: create blob %q: %w", name, err)
	}

	if err := Write(resource.NewLimitedWriter(ctx, wb, opts.Controller), cat, opts.Compression); err != nil {
		_ = wb.Close()
		return err
	}
	if err := wb.Close(); err != nil {
		return fmt.Errorf("snapshot: finalize blob %q: %w", name, err)
	}
	return nil
}

// LoadFrom reads the named snapshot from the blob store and rebuilds the
// catalog.
func LoadFrom(ctx context.Context, bs blobstore.BlobStore, name string, optFns ...func(o *StoreOptions)) (*catalog.Catalog, error) {
	opts := applyStoreOptions(optFns)

	if opts.Controller != nil {
		if err := opts.Controller.AcquireTransfer(ctx); err != nil {
			return nil, fmt.Errorf("snapshot: acquire transfer slot: %w", err)
		}
		defer opts.Controller.ReleaseTransfer()
	}

	blob, err := bs.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open blob %q: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read blob %q: %w", name, err)
	}
	if opts.Controller != nil {
		if err := opts.Controller.AcquireIO(ctx, len(data)); err != nil {
			return nil, err
		}
	}

	return Decode(data, opts.Catalog...)
}
