package mcp

import (
	"archive-browser/cache"

	"github.com/spf13/cobra"
)

// Command returns the mcp subcommand. newCache builds the cache lazily so
// configuration is only loaded when the command runs.
func Command(version string, newCache func(cmd *cobra.Command) (*cache.Cache, func(), error)) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := newCache(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return NewServer(c, version).Run()
		},
	}
}
