package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/tenanthub/internal/app/system/indexes"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoURIEnv points tests at an existing server instead of a container.
const MongoURIEnv = "TENANTHUB_TEST_MONGO_URI"

var (
	serverOnce sync.Once
	serverURI  string
	serverErr  error
)

// mongoURI returns the shared test server, starting a container the first
// time it is needed. The container lives for the test binary.
func mongoURI() (string, error) {
	serverOnce.Do(func() {
		if uri := os.Getenv(MongoURIEnv); uri != "" {
			serverURI = uri
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		c, err := mongodb.Run(ctx, "mongo:7")
		if err != nil {
			serverErr = fmt.Errorf("start mongo container: %w", err)
			return
		}
		serverURI, serverErr = c.ConnectionString(ctx)
	})
	return serverURI, serverErr
}

// SetupTestDB returns a fresh, indexed database unique to this test. It
// is dropped when the test ends. The test is skipped when no MongoDB is
// reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB test in -short mode")
	}

	uri, err := mongoURI()
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	ctx, cancel := TestContext()
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		t.Skipf("MongoDB not available: %v", err)
	}

	db := client.Database(fmt.Sprintf("tenanthub_test_%d", time.Now().UnixNano()))
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

// TestContext returns a context bounded for a single test step.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
