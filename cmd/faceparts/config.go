package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/face-parts/internal/config"
	"github.com/menta2k/face-parts/internal/utils"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file with default values",
	Long: `Write the default configuration to a file. The format follows the file
extension (.json, .yaml or .yml). Without a path the file is written to
` + config.GetConfigPath() + `.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return cfg.Validate()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.GetConfigPath()
	if len(args) > 0 {
		path = args[0]
	}
	if utils.FileExists(path) && !mustGetBool(cmd, "force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := config.Default().SaveToFile(path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
