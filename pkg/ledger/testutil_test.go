package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestStore starts a Postgres testcontainer, applies the ledger schema
// via NewStore, and returns a cleanup function that terminates the container.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("ledger_test"),
		postgres.WithUsername("ledger_test"),
		postgres.WithPassword("ledger_test"),
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

	connString := fmt.Sprintf("postgres://ledger_test:ledger_test@%s:%d/ledger_test?sslmode=disable",
		host, port.Int())

	var store *Store
	for i := 0; i < 10; i++ {
		store, err = NewStore(connString, 300*time.Second, nil)
		if err == nil {
			break
		}
		time.Sleep(time.Duration(100*(1<<uint(i))) * time.Millisecond)
	}
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		t.Fatalf("failed to connect to test ledger store: %v", err)
	}

	cleanup := func() {
		_ = store.Close()
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return store, cleanup
}
