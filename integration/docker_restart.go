//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// composeFile is the stack definition at the module root that
// E2E_RESTART_CATALOG restarts.
var composeFile = filepath.Join("..", "docker-compose.yml")

func restartCatalogContainer(t *testing.T, ctx context.Context) {
	t.Helper()

	if _, err := os.Stat(composeFile); err != nil {
		t.Skipf("restart needs %s: %v", composeFile, err)
	}

	cmd := exec.CommandContext(ctx, "docker", "compose", "-f", composeFile, "restart", "catalog")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("docker compose restart catalog failed: %v\n%s", err, string(out))
	}
}
