package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/gigwork/internal/infrastructure/mongodb"
)

// MongoDB test configuration constants
const (
	mongoCtxTimeout                = 10 * time.Second
	mongoContainerStartupTimeout   = 120 * time.Second
	mongoContainerTerminateTimeout = 5 * time.Second
	mongoPingTimeout               = 2 * time.Second
	mongoPingRetryDelay            = 500 * time.Millisecond
	mongoReplicaSetWaitTimeout     = 30 * time.Second
	// MongoDB database names are limited to 63 characters.
	maxTestNameLength = 40
)

// sharedMongoContainer holds the singleton MongoDB container
var (
	sharedMongoContainer   *SharedMongoContainer
	sharedMongoContainerMu sync.Mutex
)

// SharedMongoContainer represents a reusable MongoDB container for tests.
// It runs as a single-node replica set so multi-document transactions work.
type SharedMongoContainer struct {
	Container testcontainers.Container
	URI       string
}

// GetSharedMongoContainer returns a singleton MongoDB container.
// The container is started once and reused across all tests in the binary.
func GetSharedMongoContainer(ctx context.Context) (*SharedMongoContainer, error) {
	sharedMongoContainerMu.Lock()
	defer sharedMongoContainerMu.Unlock()

	if sharedMongoContainer != nil {
		running, err := isMongoContainerRunning(ctx, sharedMongoContainer.Container)
		if err == nil && running {
			return sharedMongoContainer, nil
		}
		cleanupCrashedMongoContainer()
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), mongoContainerStartupTimeout)
	defer cancel()

	cont, err := startMongoContainer(startupCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB container: %w", err)
	}
	sharedMongoContainer = cont

	return sharedMongoContainer, nil
}

// isMongoContainerRunning checks if the container is still running
func isMongoContainerRunning(ctx context.Context, cont testcontainers.Container) (bool, error) {
	if cont == nil {
		return false, nil
	}
	state, err := cont.State(ctx)
	if err != nil {
		return false, err
	}
	return state.Running, nil
}

// cleanupCrashedMongoContainer terminates a crashed container
func cleanupCrashedMongoContainer() {
	if sharedMongoContainer == nil {
		return
	}
	if sharedMongoContainer.Container != nil {
		terminateCtx, cancel := context.WithTimeout(context.Background(), mongoContainerTerminateTimeout)
		_ = sharedMongoContainer.Container.Terminate(terminateCtx)
		cancel()
	}
	sharedMongoContainer = nil
}

// startMongoContainer starts a MongoDB container as a single-node replica
// set and waits until it is a writable primary.
func startMongoContainer(ctx context.Context) (*SharedMongoContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "mongo:8",
		Cmd:          []string{"--replSet", "rs0", "--bind_ip_all"},
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Waiting for connections").WithStartupTimeout(mongoContainerStartupTimeout),
			wait.ForListeningPort("27017/tcp").WithStartupTimeout(mongoContainerStartupTimeout),
		),
	}

	cont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
		Reuse:            false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB container: %w", err)
	}

	if _, _, err = cont.Exec(ctx, []string{
		"mongosh", "--quiet", "--eval", "try { rs.status() } catch (e) { rs.initiate() }",
	}); err != nil {
		return nil, fmt.Errorf("failed to initiate replica set: %w", err)
	}

	host, err := cont.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := cont.MappedPort(ctx, "27017")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	// directConnection skips replica set discovery, which would otherwise
	// resolve to the container-internal hostname.
	uri := fmt.Sprintf("mongodb://%s/?directConnection=true", net.JoinHostPort(host, port.Port()))

	if err := waitForPrimary(ctx, uri); err != nil {
		return nil, err
	}

	return &SharedMongoContainer{
		Container: cont,
		URI:       uri,
	}, nil
}

// waitForPrimary polls the hello command until the node reports itself as a
// writable primary. Transactions fail until the replica set has elected one.
func waitForPrimary(ctx context.Context, uri string) error {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), mongoCtxTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	deadline := time.Now().Add(mongoReplicaSetWaitTimeout)
	for {
		helloCtx, cancel := context.WithTimeout(ctx, mongoPingTimeout)
		var hello struct {
			IsWritablePrimary bool `bson:"isWritablePrimary"`
		}
		err = client.Database("admin").
			RunCommand(helloCtx, bson.D{{Key: "hello", Value: 1}}).
			Decode(&hello)
		cancel()
		if err == nil && hello.IsWritablePrimary {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("MongoDB did not become primary within %v: %w", mongoReplicaSetWaitTimeout, err)
		}
		time.Sleep(mongoPingRetryDelay)
	}
}

// SetupTestMongoDB creates an isolated test database on the shared MongoDB
// container with all production indexes in place.
func SetupTestMongoDB(t *testing.T) *mongo.Database {
	t.Helper()

	_, db := SetupTestMongoDBWithClient(t)
	return db
}

// SetupTestMongoDBWithClient creates an isolated test database and returns
// both the client and the database. The client is needed for transaction
// tests, which start sessions on it.
func SetupTestMongoDBWithClient(t *testing.T) (*mongo.Client, *mongo.Database) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), mongoCtxTimeout)
	defer cancel()

	cont, err := GetSharedMongoContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to get shared MongoDB container: %v", err)
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cont.URI))
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	maxRetries := 5
	for i := range maxRetries {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), mongoPingTimeout)
		err = client.Ping(pingCtx, nil)
		pingCancel()
		if err == nil {
			break
		}
		if i < maxRetries-1 {
			time.Sleep(mongoPingRetryDelay)
		}
	}
	if err != nil {
		t.Fatalf("Failed to ping MongoDB after %d retries: %v", maxRetries, err)
	}

	db := client.Database(generateTestDBName(t.Name()))

	if err := mongodb.CreateAllIndexes(ctx, db); err != nil {
		t.Fatalf("Failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), mongoCtxTimeout)
		defer cleanupCancel()
		_ = db.Drop(cleanupCtx)
		_ = client.Disconnect(cleanupCtx)
	})

	return client, db
}

// generateTestDBName creates a unique database name from the test name
func generateTestDBName(testName string) string {
	name := ""
	for _, ch := range testName {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			name += string(ch)
		} else {
			name += "_"
		}
	}
	if len(name) > maxTestNameLength {
		hash := sha256.Sum256([]byte(name))
		name = name[:20] + "_" + hex.EncodeToString(hash[:])[:12]
	}
	return "gigwork_test_" + name
}

// CleanupSharedMongoContainer terminates the shared container.
// This is typically called from TestMain or when all tests are done.
func CleanupSharedMongoContainer() {
	sharedMongoContainerMu.Lock()
	defer sharedMongoContainerMu.Unlock()

	if sharedMongoContainer != nil {
		if sharedMongoContainer.Container != nil {
			ctx, cancel := context.WithTimeout(context.Background(), mongoContainerTerminateTimeout)
			defer cancel()
			_ = sharedMongoContainer.Container.Terminate(ctx)
		}
		sharedMongoContainer = nil
	}
}
