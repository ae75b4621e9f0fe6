package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hk1947/apicontract/internal/common"
	"github.com/hk1947/apicontract/internal/demoapi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newMockCmd(v *viper.Viper) *cobra.Command {
	v.SetDefault("mock_addr", "127.0.0.1:8080")

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve an in-process copy of the demo API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := demoapi.Options{
				BasePath:  v.GetString("mock_base_path"),
				JWTSecret: v.GetString("mock_jwt_secret"),
				Logger:    common.GetLogger(),
			}
			if v.GetBool("mock_require_key") {
				p := newProvider(v)
				if err := p.Load(); err != nil {
					return err
				}
				opts.APIKey = p.APIKey()
				opts.APIKeyHeader = p.APIKeyHeader()
			}
			return demoapi.New(opts).ListenAndServe(ctx, v.GetString("mock_addr"))
		},
	}
	f := cmd.Flags()
	f.String("addr", v.GetString("mock_addr"), "listen address")
	f.String("base-path", "/api", "route prefix")
	f.String("jwt-secret", "", "issue HS256 tokens from /login and require them on mutating routes")
	f.Bool("require-key", false, "require the configured api key header")
	_ = v.BindPFlag("mock_addr", f.Lookup("addr"))
	_ = v.BindPFlag("mock_base_path", f.Lookup("base-path"))
	_ = v.BindPFlag("mock_jwt_secret", f.Lookup("jwt-secret"))
	_ = v.BindPFlag("mock_require_key", f.Lookup("require-key"))
	return cmd
}
