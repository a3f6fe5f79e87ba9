package testutil

import (
	"fmt"
	"os"
	"testing"
)

// TestEnv describes the externally running stack the integration tests hit.
// The server under test should run with RATE_LIMIT_REQUESTS raised well
// above the default, otherwise the per-IP limiter trips mid-suite.
type TestEnv struct {
	MongoURI      string
	DatabaseName  string
	ServerURL     string
	AdminUsername string
	AdminPassword string
}

func NewTestEnv() *TestEnv {
	serverPort := getEnv("TEST_SERVER_PORT", "8080")

	return &TestEnv{
		MongoURI:      getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName:  getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:     getEnv("TEST_SERVER_URL", fmt.Sprintf("http://localhost:%s", serverPort)),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// RequireIntegration skips the test unless TEST_INTEGRATION is set, so the
// suite stays out of plain `go test ./...` runs that have no live stack.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("set TEST_INTEGRATION=1 to run against a live server")
	}
}

func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Client) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanCollections(t)

	client := NewClient(e.ServerURL)
	client.WaitForHealthy(t, DefaultHealthCheckTimeout)

	return mongo, client
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanCollections(t)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

const DefaultHealthCheckTimeout = 30 * ConnectionTimeout
