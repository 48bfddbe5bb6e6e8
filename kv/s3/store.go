// Package s3 implements kv.Store on an S3 compatible object storage.
// Every item is one msgpack encoded object.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mwantia/agentfs/kv"
)

type S3Store struct {
	client *minio.Client
	config *S3StoreConfig
}

type S3StoreConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// Prefix for every object name (default: "agentfs")
	Prefix string
	// CreateBucket creates the bucket if it does not exist yet.
	CreateBucket bool
}

func NewS3Store(ctx context.Context, config *S3StoreConfig) (*S3Store, error) {
	if config.Prefix == "" {
		config.Prefix = "agentfs"
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, err
	}

	if !exists {
		if !config.CreateBucket {
			return nil, fmt.Errorf("kv: bucket '%s' does not exist", config.Bucket)
		}
		if err := client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &S3Store{
		client: client,
		config: config,
	}, nil
}

func (ss *S3Store) Get(ctx context.Context, namespace []string, key string) (*kv.Item, error) {
	return ss.getObject(ctx, kv.PathKey(ss.config.Prefix, namespace, key))
}

func (ss *S3Store) Put(ctx context.Context, namespace []string, key string, value map[string]any) error {
	name := kv.PathKey(ss.config.Prefix, namespace, key)

	previous, err := ss.getObject(ctx, name)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return err
	}

	buf, err := kv.Marshal(kv.NewItem(namespace, key, value, previous))
	if err != nil {
		return err
	}

	_, err = ss.client.PutObject(ctx, ss.config.Bucket, name, bytes.NewReader(buf), int64(len(buf)), minio.PutObjectOptions{
		ContentType: "application/msgpack",
	})
	return err
}

func (ss *S3Store) Search(ctx context.Context, prefix []string, filter map[string]any, limit, offset int) ([]*kv.Item, error) {
	objects := ss.client.ListObjects(ctx, ss.config.Bucket, minio.ListObjectsOptions{
		Prefix:    kv.PathPrefix(ss.config.Prefix, prefix),
		Recursive: true,
	})

	items := make([]*kv.Item, 0)
	for object := range objects {
		if object.Err != nil {
			return nil, object.Err
		}

		item, err := ss.getObject(ctx, object.Key)
		if err != nil {
			return nil, err
		}

		if kv.HasNamespacePrefix(item.Namespace, prefix) && kv.MatchesFilter(item.Value, filter) {
			items = append(items, item)
		}
	}

	kv.SortItems(items)
	return kv.Paginate(items, limit, offset), nil
}

// Truncate removes every object below the configured prefix.
func (ss *S3Store) Truncate(ctx context.Context) error {
	objects := ss.client.ListObjects(ctx, ss.config.Bucket, minio.ListObjectsOptions{
		Prefix:    kv.PathPrefix(ss.config.Prefix, nil),
		Recursive: true,
	})

	var errs []error
	for result := range ss.client.RemoveObjects(ctx, ss.config.Bucket, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, result.Err)
	}

	return errors.Join(errs...)
}

func (ss *S3Store) Close() error {
	return nil
}

func (ss *S3Store) getObject(ctx context.Context, name string) (*kv.Item, error) {
	object, err := ss.client.GetObject(ctx, ss.config.Bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateError(err)
	}
	defer object.Close()

	buf, err := io.ReadAll(object)
	if err != nil {
		return nil, translateError(err)
	}

	return kv.Unmarshal(buf)
}

func translateError(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return kv.ErrNotFound
	}

	return err
}
