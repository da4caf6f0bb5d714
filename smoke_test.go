package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sitesage/internal/testutils"
)

func TestSmoke_Startup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping smoke test in short mode")
	}

	suite := testutils.NewIntegrationSuite(t)
	suite.Setup()
	defer suite.Teardown()

	cfg := suite.GetAppConfig()
	cfg.ServerPort = 8081

	_, b, _, _ := runtime.Caller(0)
	basepath := filepath.Dir(b)
	cfg.MigrationPath = fmt.Sprintf("file://%s/migrations", basepath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := run(ctx, cfg)
		if err != nil && err != context.Canceled && err.Error() != "http: Server closed" {
			t.Logf("app run exited: %v", err)
		}
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://localhost:8081/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 500*time.Millisecond)
}
