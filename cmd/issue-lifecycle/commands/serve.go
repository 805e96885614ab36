package commands

import (
	"issue-lifecycle/internal/mcp"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyses as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, excluded, err := loadRecords()
		if err != nil {
			return err
		}
		server := mcp.NewServer(cfg, Version, records, excluded)
		return server.Start(cmd.Context())
	},
}
