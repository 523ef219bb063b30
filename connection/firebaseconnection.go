package connection

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// FBConnection opens Firestore and, when a bucket is configured, the
// attachment bucket of the same Firebase app.
func FBConnection(ctx context.Context, cfg Config) (*firestore.Client, *storage.BucketHandle, error) {
	var conf *firebase.Config
	if cfg.StorageBucket != "" {
		conf = &firebase.Config{StorageBucket: cfg.StorageBucket}
	}
	app, err := firebase.NewApp(ctx, conf, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, nil, fmt.Errorf("initializing app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("getting Firestore client: %w", err)
	}

	var bucket *storage.BucketHandle
	if cfg.StorageBucket != "" {
		sc, err := app.Storage(ctx)
		if err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("getting Storage client: %w", err)
		}
		if bucket, err = sc.DefaultBucket(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("opening bucket %s: %w", cfg.StorageBucket, err)
		}
	}

	log.Info("Firestore connection successful")
	return client, bucket, nil
}
