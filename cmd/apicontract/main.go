package main

import (
	"github.com/hk1947/apicontract/internal/common"
	"github.com/hk1947/apicontract/internal/config"
	"github.com/hk1947/apicontract/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newRootCmd builds the command tree around its own viper instance so tests
// can run commands in isolation.
func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "apicontract",
		Short:         "Contract checks for the reqres demo API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging(v)
		},
	}

	// Defaults
	v.SetDefault("env", "")
	v.SetDefault("config_dir", "")
	v.SetDefault("base_url", "")
	v.SetDefault("log_level", "")
	v.SetDefault("log_format", "")

	// Environment variables support: APICONTRACT_ENV, APICONTRACT_CONFIG_DIR, ...
	v.SetEnvPrefix(constants.DefaultEnvPrefix)
	v.AutomaticEnv()

	pf := root.PersistentFlags()
	pf.String("env", v.GetString("env"), "config environment (dev, qa, prod); defaults to $ENV or dev")
	pf.String("config-dir", v.GetString("config_dir"), "directory holding api-config*.yaml (default: embedded documents)")
	pf.String("base-url", v.GetString("base_url"), "override api.baseUrl")
	pf.String("log-level", v.GetString("log_level"), "error, warn, info or debug (default from config)")
	pf.String("log-format", v.GetString("log_format"), "text, json or color (default from config)")

	_ = v.BindPFlag("env", pf.Lookup("env"))
	_ = v.BindPFlag("config_dir", pf.Lookup("config-dir"))
	_ = v.BindPFlag("base_url", pf.Lookup("base-url"))
	_ = v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log_format", pf.Lookup("log-format"))

	root.AddCommand(newCheckCmd(v))
	root.AddCommand(newConfigCmd(v))
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newMockCmd(v))
	return root
}

// newProvider builds the config provider the flags describe.
func newProvider(v *viper.Viper) *config.Provider {
	var opts []config.Option
	if dir := v.GetString("config_dir"); dir != "" {
		opts = append(opts, config.WithDir(dir))
	}
	if env := v.GetString("env"); env != "" {
		opts = append(opts, config.WithEnvironment(env))
	}
	if u := v.GetString("base_url"); u != "" {
		opts = append(opts, config.WithOverrides(map[string]string{"api.baseUrl": u}))
	}
	return config.New(opts...)
}

// configureLogging installs the global logger from config, with flag overrides.
func configureLogging(v *viper.Viper) error {
	p := newProvider(v)
	st, err := p.Settings()
	if err != nil {
		// logging still gets configured from flags so the error is reported
		_ = common.Configure(v.GetString("log_level"), v.GetString("log_format"), nil, true)
		return err
	}
	level := st.Logging.Level
	if l := v.GetString("log_level"); l != "" {
		level = l
	}
	format := st.Logging.Format
	if f := v.GetString("log_format"); f != "" {
		format = f
	}
	return common.Configure(level, format, st.Logging.Color, st.Logging.MaskEnabled())
}

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		exitHandler.LogFatalError(err, "command execution failed")
	}
}
