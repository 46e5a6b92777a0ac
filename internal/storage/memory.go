package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemoryStore is an in-process Store used when STORAGE_DRIVER=memory and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func memoryKey(bucket, object string) string {
	return bucket + "/" + object
}

// PutObject stores the reader contents.
func (m *MemoryStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[memoryKey(bucket, object)] = memoryObject{data: buf.Bytes(), contentType: opts.ContentType}
	return nil
}

// StatObject describes a stored object.
func (m *MemoryStore) StatObject(ctx context.Context, bucket, object string) (ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[memoryKey(bucket, object)]
	if !ok {
		return ObjectInfo{}, ErrObjectNotFound
	}
	return ObjectInfo{ObjectName: object, Size: int64(len(obj.data)), ContentType: obj.contentType}, nil
}

// RemoveObject deletes an object. Removing a missing object is not an error.
func (m *MemoryStore) RemoveObject(ctx context.Context, bucket, object string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, memoryKey(bucket, object))
	return nil
}

// CopyObject duplicates src into dest.
func (m *MemoryStore) CopyObject(ctx context.Context, dest CopyDest, src CopySource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[memoryKey(src.Bucket, src.Object)]
	if !ok {
		return ErrObjectNotFound
	}
	m.objects[memoryKey(dest.Bucket, dest.Object)] = obj
	return nil
}

// Has reports whether bucket/object exists.
func (m *MemoryStore) Has(bucket, object string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[memoryKey(bucket, object)]
	return ok
}
