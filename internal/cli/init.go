package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// InitResult is the output of the init command.
type InitResult struct {
	Database   string `json:"database" yaml:"database"`
	ConfigFile string `json:"config_file,omitempty" yaml:"config_file,omitempty"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var writeConfig string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and optionally a config file",
		Long: `Create the SQLite database (applying the schema and migrations) at the
configured path. With --write-config, also write the effective configuration
to a YAML file that can be edited; an existing file is never overwritten.

Example:
  sakemonkey init --db ./brew.db
  sakemonkey init --write-config sakemonkey.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, writeConfig, cmd)
		},
	}

	cmd.Flags().StringVar(&writeConfig, "write-config", "", "write the effective config to this file")

	return cmd
}

func runInit(opts *RootOptions, writeConfig string, cmd *cobra.Command) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return opts.formatter(cmd).Fail(err)
	}
	defer a.close()

	result := InitResult{Database: a.cfg.Database}
	if writeConfig != "" {
		if err := writeConfigFile(writeConfig, a.cfg); err != nil {
			return a.out.Fail(commandError(ErrCodeConfig, err))
		}
		result.ConfigFile = writeConfig
		a.logger.Info("config written", "path", writeConfig)
	}

	return a.out.Render(result, func(w io.Writer) {
		fmt.Fprintf(w, "Database ready: %s\n", result.Database)
		if result.ConfigFile != "" {
			fmt.Fprintf(w, "Config written: %s\n", result.ConfigFile)
		}
	})
}

func writeConfigFile(path string, cfg any) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}
