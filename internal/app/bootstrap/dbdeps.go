// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"github.com/dalemusser/learnportal/internal/app/system/workers"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis is nil when redis_addr is blank.
	Redis redis.UniversalClient

	// API is the unauthenticated REST client; handlers derive per-user
	// copies with WithToken.
	API *apiclient.Client

	// Allocated in ConnectDB, filled by BuildHandler, drained by Shutdown.
	bg *background
}

// background holds the long-running goroutines started by BuildHandler.
type background struct {
	sessionCleanup *workers.SessionCleanup
	cancel         context.CancelFunc
}

func (b *background) stop() {
	if b == nil {
		return
	}
	if b.sessionCleanup != nil {
		b.sessionCleanup.Stop()
	}
	if b.cancel != nil {
		b.cancel()
	}
}
