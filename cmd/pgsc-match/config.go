package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pgsc-match configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/.pgsc-match.yaml.
Keys are the match command options (dataset, min_overlap, keep_ambiguous, ...)
and values are checked against the option type.`,
		Example: `  pgsc-match config                         # show all config
  pgsc-match config set min_overlap 0.75    # default overlap threshold
  pgsc-match config set keep_ambiguous true # keep strand-ambiguous matches
  pgsc-match config get min_overlap         # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

func runConfigShow(w io.Writer) error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(w, "# No configuration set. Config file: ~/.pgsc-match.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(w, string(out))
	return nil
}

func runConfigSet(w io.Writer, key, value string) error {
	typed, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}
	viper.Set(key, typed)

	cfgFile, err := configPath()
	if err != nil {
		return err
	}
	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(w, "Set %s = %v in %s\n", key, typed, cfgFile)
	return nil
}

// matchFlag returns the match flag stored under a config key.
func matchFlag(key string) (*pflag.Flag, error) {
	for name, k := range matchFlagKeys {
		if k == key {
			return newMatchCmd().Flags().Lookup(name), nil
		}
	}
	keys := make([]string, 0, len(matchFlagKeys))
	for _, k := range matchFlagKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return nil, fmt.Errorf("unknown key %q (valid keys: %s)", key, strings.Join(keys, ", "))
}

// parseConfigValue converts value to the type of the match flag behind key.
func parseConfigValue(key, value string) (any, error) {
	f, err := matchFlag(key)
	if err != nil {
		return nil, err
	}

	switch f.Value.Type() {
	case "bool":
		// Parse boolean-like values
		switch strings.ToLower(value) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
	case "int":
		if n, err := strconv.Atoi(value); err == nil {
			return n, nil
		}
	case "float64":
		if x, err := strconv.ParseFloat(value, 64); err == nil {
			return x, nil
		}
	case "stringSlice":
		if err := f.Value.Set(value); err == nil {
			return f.Value.(pflag.SliceValue).GetSlice(), nil
		}
	default:
		return value, nil
	}
	return nil, fmt.Errorf("invalid %s value %q for key %q", f.Value.Type(), value, key)
}

func runConfigGet(w io.Writer, key string) error {
	if _, err := matchFlag(key); err != nil {
		return err
	}
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}
