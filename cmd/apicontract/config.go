package main

import (
	"fmt"
	"sort"

	"github.com/hk1947/apicontract/internal/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// maskSettings returns a copy of m with credential values masked. A leaf is
// sensitive when its own key or its key joined to the parent's is, so
// api.key is treated as api_key.
func maskSettings(m map[string]any, parent string, masker *common.Masker) map[string]any {
	out := make(map[string]any, len(m))
	for k, val := range m {
		if sub, ok := val.(map[string]any); ok {
			out[k] = maskSettings(sub, k, masker)
			continue
		}
		if masker.IsSensitiveKey(k) || (parent != "" && masker.IsSensitiveKey(parent+"_"+k)) {
			if s, isStr := val.(string); isStr && s == "" {
				out[k] = val
				continue
			}
			out[k] = "***MASKED***"
			continue
		}
		out[k] = masker.MaskValue(k, val)
	}
	return out
}

func newConfigCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newProvider(v)
			if err := p.Load(); err != nil {
				return err
			}
			settings := p.AllSettings()
			if !v.GetBool("config_unmask") {
				settings = maskSettings(settings, "", common.NewMasker())
			}
			out, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("config: encode: %w", err)
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "# env: %s\n", p.Environment())
			_, err = w.Write(out)
			return err
		},
	}
	cmd.Flags().Bool("unmask", false, "print credential values")
	_ = v.BindPFlag("config_unmask", cmd.Flags().Lookup("unmask"))

	cmd.AddCommand(&cobra.Command{
		Use:   "get KEY",
		Short: "Print one dotted config key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newProvider(v)
			if err := p.Load(); err != nil {
				return err
			}
			val, ok := p.Get(args[0])
			if !ok {
				return fmt.Errorf("config: key %q is not set", args[0])
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), val)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "List every dotted config key",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newProvider(v)
			if err := p.Load(); err != nil {
				return err
			}
			keys := p.Keys()
			sort.Strings(keys)
			for _, k := range keys {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), k); err != nil {
					return err
				}
			}
			return nil
		},
	})
	return cmd
}
