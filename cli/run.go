// Package cli implements the archive-browser command line.
package cli

import (
	"fmt"

	"archive-browser/cache"
	"archive-browser/config"
	"archive-browser/mcp"

	"github.com/spf13/cobra"
)

var (
	// Version information, set at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const defaultConfigPath = "config.yml"

// NewRootCommand builds the command tree. Running the root command without
// a subcommand serves HTTP.
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "archive-browser",
		Short:         "Browse web archive captures stored on disk",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `archive-browser catalogs web archive captures laid out as
{root}/{domain}/{path_segment}/req_{id}_{YYYYMMDD}_{HHMMSS}/ and serves
them over HTTP, as MCP tools, or as a one-off scan report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.GetConfigPath(defaultConfigPath), "Path to the YAML config file")

	root.AddCommand(
		newServeCommand(&configPath),
		newScanCommand(),
		mcp.Command(Version, func(cmd *cobra.Command) (*cache.Cache, func(), error) {
			s, err := newServices(configPath)
			if err != nil {
				return nil, nil, err
			}
			return s.cache, s.close, nil
		}),
		newVersionCommand(),
	)
	return root
}

// Run executes the main CLI functionality.
func Run() error {
	return NewRootCommand().Execute()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "archive-browser version %s\n", Version)
			fmt.Fprintf(out, "  commit: %s\n", Commit)
			fmt.Fprintf(out, "  built:  %s\n", Date)
		},
	}
}
