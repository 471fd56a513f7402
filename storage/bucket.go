package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// BucketStats summarises the objects under a prefix.
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
	ETag         string
}

// ListObjects lists objects under prefix, sorted by key.
func (m *MinioStore) ListObjects(ctx context.Context, prefix string, recursive bool) ([]ObjectInfo, *BucketStats, error) {
	stats := &BucketStats{}
	var objects []ObjectInfo

	objectCh := m.client.ListObjects(ctx, m.bucketName, minio.ListObjectsOptions{
		Prefix:    normalizePrefix(prefix),
		Recursive: recursive,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, nil, fmt.Errorf("list objects: %w", object.Err)
		}

		stats.TotalObjects++
		stats.TotalSize += object.Size
		if object.LastModified.After(stats.LastModified) {
			stats.LastModified = object.LastModified
		}

		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
			ETag:         object.ETag,
		})
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].Key < objects[j].Key
	})

	return objects, stats, nil
}

// DeletePrefix removes every object under prefix and returns how many were removed.
func (m *MinioStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	prefix = normalizePrefix(prefix)
	if prefix == "" {
		return 0, fmt.Errorf("refusing to delete the whole bucket")
	}

	objectsCh := make(chan minio.ObjectInfo)
	listed := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(objectsCh)
		for object := range m.client.ListObjects(ctx, m.bucketName, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: true,
		}) {
			if object.Err != nil {
				return
			}
			listed++
			objectsCh <- object
		}
	}()

	failed := 0
	var firstErr error
	for rErr := range m.client.RemoveObjects(ctx, m.bucketName, objectsCh, minio.RemoveObjectsOptions{}) {
		if firstErr == nil {
			firstErr = fmt.Errorf("remove %s: %w", rErr.ObjectName, rErr.Err)
		}
		failed++
	}
	<-done

	return listed - failed, firstErr
}

// normalizePrefix turns "songs", "/songs" and "songs/" into "songs/".
func normalizePrefix(prefix string) string {
	prefix = strings.TrimPrefix(strings.TrimSpace(prefix), "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
