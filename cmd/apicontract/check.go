package main

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"time"

	"github.com/fatih/color"
	"github.com/hk1947/apicontract"
	"github.com/hk1947/apicontract/internal/demoapi"
	"github.com/hk1947/apicontract/internal/expect"
	"github.com/hk1947/apicontract/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// probe is one smoke call and its expectations.
type probe struct {
	name string
	run  func(ctx context.Context, s *apicontract.Suite) error
}

type probeResult struct {
	name    string
	elapsed time.Duration
	err     error
}

var probes = []probe{
	{"list users", func(ctx context.Context, s *apicontract.Suite) error {
		resp, err := s.Client.Get(ctx, "/users", apicontract.QueryParam("page", 1))
		if err != nil {
			return err
		}
		return s.Check(resp, expect.OK().And(expect.HasField("data"), s.Within()), "users-list-schema")
	}},
	{"single user", func(ctx context.Context, s *apicontract.Suite) error {
		resp, err := s.Client.Get(ctx, "/users/{id}", apicontract.PathParam("id", 2))
		if err != nil {
			return err
		}
		return s.Check(resp, expect.OK(), "single-user-schema")
	}},
	{"unknown user", func(ctx context.Context, s *apicontract.Suite) error {
		resp, err := s.Client.Get(ctx, "/users/{id}", apicontract.PathParam("id", 99999))
		if err != nil {
			return err
		}
		return resp.Expect(expect.NotFound())
	}},
	{"login", func(ctx context.Context, s *apicontract.Suite) error {
		resp, err := s.Client.Post(ctx, "/login", s.Data.ValidLogin())
		if err != nil {
			return err
		}
		return s.Check(resp, expect.OK(), "login-success-schema")
	}},
	{"login without password", func(ctx context.Context, s *apicontract.Suite) error {
		resp, err := s.Client.Post(ctx, "/login", s.Data.LoginWithoutPassword())
		if err != nil {
			return err
		}
		if err := s.Check(resp, expect.BadRequest(), "error-schema"); err != nil {
			return err
		}
		if got := resp.Path("error").String(); got != demoapi.ErrMissingPassword {
			return fmt.Errorf("error body %q, want %q", got, demoapi.ErrMissingPassword)
		}
		return nil
	}},
	{"create user", func(ctx context.Context, s *apicontract.Suite) error {
		resp, err := s.Client.Post(ctx, "/users", s.Data.User())
		if err != nil {
			return err
		}
		if err := s.Check(resp, expect.Created(), "create-user-schema"); err != nil {
			return err
		}
		_, err = apicontract.As[model.User](resp)
		return err
	}},
}

func runProbes(ctx context.Context, s *apicontract.Suite, list []probe) []probeResult {
	out := make([]probeResult, 0, len(list))
	for _, p := range list {
		start := time.Now()
		err := p.run(ctx, s)
		out = append(out, probeResult{name: p.name, elapsed: time.Since(start), err: err})
	}
	return out
}

func printResults(w io.Writer, results []probeResult) int {
	pass := color.New(color.FgGreen, color.Bold).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			_, _ = fmt.Fprintf(w, "%s  %-24s %6s\n      %v\n", fail("FAIL"), r.name, r.elapsed.Round(time.Millisecond), r.err)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s  %-24s %6s\n", pass("PASS"), r.name, r.elapsed.Round(time.Millisecond))
	}
	_, _ = fmt.Fprintf(w, "\n%d/%d probes passed\n", len(results)-failed, len(results))
	return failed
}

func newCheckCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run smoke probes against the configured API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			p := newProvider(v)
			if err := p.Load(); err != nil {
				return err
			}

			opts := []apicontract.SuiteOption{apicontract.WithConfig(p)}
			if v.GetBool("check_mock") {
				api := demoapi.New(demoapi.Options{APIKey: p.APIKey(), APIKeyHeader: p.APIKeyHeader()})
				srv := httptest.NewServer(api.Handler())
				defer srv.Close()
				opts = append(opts, apicontract.WithBaseURL(srv.URL+api.BasePath()))
			}
			if seed := v.GetUint64("check_seed"); seed != 0 {
				opts = append(opts, apicontract.WithSeed(seed))
			}

			s, err := apicontract.NewSuite(ctx, opts...)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "env %s, %s\n\n", p.Environment(), s.Client.Spec().BaseURL())

			results := runProbes(ctx, s, probes)
			if failed := printResults(cmd.OutOrStdout(), results); failed > 0 {
				return fmt.Errorf("check: %d of %d probes failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().Bool("mock", false, "run against an in-process copy of the demo API")
	cmd.Flags().Uint64("seed", 0, "seed for generated request data (0 = random)")
	_ = v.BindPFlag("check_mock", cmd.Flags().Lookup("mock"))
	_ = v.BindPFlag("check_seed", cmd.Flags().Lookup("seed"))
	return cmd
}
