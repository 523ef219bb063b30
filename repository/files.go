package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	log "github.com/sirupsen/logrus"

	"hrtracker/model"
)

const FilesCollection = "Files"

// FileStore resolves attachment metadata from Firestore and removes the blobs
// from the Firebase storage bucket.
type FileStore struct {
	client *firestore.Client
	bucket *storage.BucketHandle
}

// NewFileStore returns a store that only touches metadata when bucket is nil.
func NewFileStore(client *firestore.Client, bucket *storage.BucketHandle) *FileStore {
	return &FileStore{client: client, bucket: bucket}
}

func (f *FileStore) Resolve(ctx context.Context, fileIDs []string) ([]model.FileRef, error) {
	return getAll[model.FileRef](ctx, f.client, FilesCollection, fileIDs)
}

// Delete removes every listed file and reports all failures together.
func (f *FileStore) Delete(ctx context.Context, fileIDs []string) error {
	refs, err := f.Resolve(ctx, fileIDs)
	if err != nil {
		return err
	}
	var errs []error
	for _, ref := range refs {
		if f.bucket != nil && ref.Path != "" {
			err := f.bucket.Object(ref.Path).Delete(ctx)
			if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
				errs = append(errs, fmt.Errorf("delete object %s: %w", ref.Path, err))
				continue
			}
		}
		if _, err := f.client.Collection(FilesCollection).Doc(ref.FileID).Delete(ctx); err != nil {
			errs = append(errs, fmt.Errorf("delete file %s: %w", ref.FileID, err))
			continue
		}
		log.WithField("file", ref.FileID).Debug("attachment deleted")
	}
	return errors.Join(errs...)
}
