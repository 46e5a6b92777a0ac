package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Store implementations for missing keys.
var ErrObjectNotFound = errors.New("object not found")

// PutOptions describes upload options for object storage.
type PutOptions struct {
	ContentType string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	ObjectName  string
	Size        int64
	ContentType string
}

// CopySource describes a source object for a server-side copy.
type CopySource struct {
	Bucket string
	Object string
}

// CopyDest describes a destination object for a server-side copy.
type CopyDest struct {
	Bucket string
	Object string
}

// Store abstracts the remote media storage the CDN serves from.
type Store interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error
	StatObject(ctx context.Context, bucket, object string) (ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, object string) error
	CopyObject(ctx context.Context, dest CopyDest, src CopySource) error
}

// Default is the main object store instance.
var Default Store

// RenameObject moves bucket/from to bucket/to with a copy followed by a
// remove. When the remove fails the copy is removed again so the remote side
// stays in its pre-rename state.
func RenameObject(ctx context.Context, s Store, bucket, from, to string) error {
	if from == to {
		return nil
	}
	if err := s.CopyObject(ctx,
		CopyDest{Bucket: bucket, Object: to},
		CopySource{Bucket: bucket, Object: from},
	); err != nil {
		return err
	}
	if err := s.RemoveObject(ctx, bucket, from); err != nil {
		_ = s.RemoveObject(context.WithoutCancel(ctx), bucket, to)
		return err
	}
	return nil
}
