// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/aiesociety/aiesweb/internal/app/system/assist"
	"github.com/aiesociety/aiesweb/internal/app/system/blobstore"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Blobs is the configured object store; closeBlobs releases it.
	Blobs      blobstore.Store
	closeBlobs func() error

	// TextModel is nil when no generative model key is configured.
	TextModel assist.TextModel
}
