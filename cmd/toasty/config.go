package main

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toasty/internal/config"
)

var configOpts struct {
	format   string
	defaults bool
	write    bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration toasty is running with: the config file merged
over the defaults.

Examples:
  # Show the effective config
  toasty config

  # Start a config file from the defaults
  toasty config --defaults --write`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().StringVarP(&configOpts.format, "format", "f", "toml",
		"Output format (toml, yaml)")
	configCmd.Flags().BoolVar(&configOpts.defaults, "defaults", false,
		"Show the built-in defaults instead of the effective config")
	configCmd.Flags().BoolVar(&configOpts.write, "write", false,
		"Write the config to the config file path instead of printing it")
}

func runConfig(cmd *cobra.Command, args []string) error {
	c := getConfig()
	if configOpts.defaults {
		c = config.DefaultConfig()
	}

	if configOpts.write {
		path := configPath()
		if err := c.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	}

	var data []byte
	var err error
	switch configOpts.format {
	case "toml":
		data, err = toml.Marshal(c)
	case "yaml":
		data, err = yaml.Marshal(c)
	default:
		return fmt.Errorf("unknown format %q (valid: toml, yaml)", configOpts.format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
