package apicontract_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/hk1947/apicontract"
	"github.com/hk1947/apicontract/internal/config"
	"github.com/hk1947/apicontract/internal/demoapi"
)

// liveEnv switches the scenarios from the in-process double to the
// configured live API.
const liveEnv = "APICONTRACT_LIVE"

var (
	suite *apicontract.Suite
	live  bool
)

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	live = os.Getenv(liveEnv) == "1"

	cfg := config.New()
	if err := cfg.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	opts := []apicontract.SuiteOption{apicontract.WithConfig(cfg)}
	if !live {
		api := demoapi.New(demoapi.Options{APIKey: cfg.APIKey(), APIKeyHeader: cfg.APIKeyHeader()})
		srv := httptest.NewServer(api.Handler())
		defer srv.Close()
		opts = append(opts, apicontract.WithBaseURL(srv.URL+api.BasePath()))
	}

	s, err := apicontract.NewSuite(context.Background(), opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build suite: %v\n", err)
		return 1
	}
	suite = s
	return m.Run()
}

func offlineOnly(t *testing.T) {
	t.Helper()
	if live {
		t.Skip("relies on the in-process API")
	}
}
