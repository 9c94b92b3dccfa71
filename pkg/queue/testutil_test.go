package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestStore starts a Postgres testcontainer, applies the queue schema
// via NewStore, and returns a cleanup function that terminates the container.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("queue_test"),
		postgres.WithUsername("queue_test"),
		postgres.WithPassword("queue_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		t.Fatalf("failed to get container port: %v", err)
	}

	connString := fmt.Sprintf("host=%s port=%d user=queue_test password=queue_test dbname=queue_test sslmode=disable",
		host, port.Int())

	var store *Store
	for i := 0; i < 10; i++ {
		store, err = NewStore(connString, nil)
		if err == nil {
			break
		}
		time.Sleep(time.Duration(100*(1<<uint(i))) * time.Millisecond)
	}
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		t.Fatalf("failed to connect to test queue store: %v", err)
	}

	cleanup := func() {
		store.Stop()
		_ = store.Close()
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return store, cleanup
}
