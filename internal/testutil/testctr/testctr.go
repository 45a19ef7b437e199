// Package testctr contains testcontainers helpers shared by integration tests.
package testctr

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/log"
	tcneo4j "github.com/testcontainers/testcontainers-go/modules/neo4j"
)

// Neo4jImage is the server image used by integration tests. 5.15 is the first
// release with vector index DDL and db.create.setNodeVectorProperty.
const Neo4jImage = "neo4j:5.15.0"

// SkipIfDockerNotAvailable skips the test when no container provider is reachable.
func SkipIfDockerNotAvailable(t *testing.T) {
	t.Helper()
	if os.Getenv("TESTCONTAINERS_SKIP") != "" {
		t.Skip("TESTCONTAINERS_SKIP is set")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// Neo4j holds connection details for a test database.
type Neo4j struct {
	URI      string
	Username string
	Password string
}

// SetupNeo4j returns a Neo4j server for the test. NEO4J_URL, NEO4J_USERNAME and
// NEO4J_PASSWORD point the tests at an existing server; otherwise a container is
// started and terminated on cleanup. The test is skipped in short mode or
// without Docker.
func SetupNeo4j(t *testing.T) Neo4j {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping test in short mode")
	}

	if uri := os.Getenv("NEO4J_URL"); uri != "" {
		username := os.Getenv("NEO4J_USERNAME")
		if username == "" {
			username = "neo4j"
		}
		password := os.Getenv("NEO4J_PASSWORD")
		if password == "" {
			password = "password"
		}
		return Neo4j{URI: uri, Username: username, Password: password}
	}

	SkipIfDockerNotAvailable(t)

	ctx := context.Background()
	container, err := tcneo4j.Run(ctx,
		Neo4jImage,
		tcneo4j.WithAdminPassword("testpassword"),
		testcontainers.WithLogger(log.TestLogger(t)),
	)
	if err != nil && strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
		t.Skip("Docker not available")
	}
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Neo4j container: %v", err)
		}
	})

	uri, err := container.BoltUrl(ctx)
	require.NoError(t, err)

	return Neo4j{URI: uri, Username: "neo4j", Password: "testpassword"}
}
