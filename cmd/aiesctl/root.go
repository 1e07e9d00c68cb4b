package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type globalOpts struct {
	mongoURI string
	database string
	timeout  time.Duration
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}
	root := &cobra.Command{
		Use:   "aiesctl",
		Short: "Maintenance tasks for the AI education society site",
		Long: `aiesctl runs one-off maintenance tasks against the site database:
bulk paper imports, counter settings and administrator password hashes.

Connection settings default to the server's AIES_MONGO_URI and
AIES_MONGO_DATABASE environment variables.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.mongoURI, "mongo-uri", envOr("AIES_MONGO_URI", "mongodb://localhost:27017"),
		"MongoDB connection URI")
	root.PersistentFlags().StringVar(&opts.database, "database", envOr("AIES_MONGO_DATABASE", "aies"),
		"MongoDB database name")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute,
		"overall time limit for the command")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"log progress to stderr")

	root.AddCommand(
		newImportPapersCmd(opts),
		newHashPasswordCmd(),
		newCountersCmd(opts),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (o *globalOpts) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// connect opens the database and returns it with a function that
// disconnects the client.
func (o *globalOpts) connect(ctx context.Context) (*mongo.Database, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(o.mongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client.Database(o.database), func() { _ = client.Disconnect(context.Background()) }, nil
}
