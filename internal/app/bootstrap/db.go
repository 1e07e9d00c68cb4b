// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/aiesociety/aiesweb/internal/app/system/assist"
	"github.com/aiesociety/aiesweb/internal/app/system/blobstore"
	"github.com/aiesociety/aiesweb/internal/app/system/indexes"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and opens the other backends: the blob
// store and, when configured, the generative model.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().ApplyURI(appCfg.MongoURI)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	deps.Blobs, deps.closeBlobs, err = openBlobStore(ctx, appCfg)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}
	logger.Info("blob store ready", zap.String("type", appCfg.StorageType))

	if appCfg.GeminiAPIKey != "" {
		model, err := assist.NewGemini(ctx, appCfg.GeminiAPIKey, appCfg.GeminiModel)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return DBDeps{}, fmt.Errorf("generative model: %w", err)
		}
		deps.TextModel = model
	}

	return deps, nil
}

func openBlobStore(ctx context.Context, appCfg AppConfig) (blobstore.Store, func() error, error) {
	switch appCfg.StorageType {
	case StorageGCS:
		g, err := blobstore.NewGCS(ctx, appCfg.StorageGCSBucket, appCfg.StorageGCSCredentialsFile, appCfg.StoragePublicURL)
		if err != nil {
			return nil, nil, fmt.Errorf("gcs storage: %w", err)
		}
		return g, g.Close, nil
	default:
		l, err := blobstore.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
		if err != nil {
			return nil, nil, fmt.Errorf("local storage: %w", err)
		}
		return l, func() error { return nil }, nil
	}
}

// EnsureSchema sets up indexes.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.EnsureAll(ctx, deps.MongoDatabase, logger)
}
