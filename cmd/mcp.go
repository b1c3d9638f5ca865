package cmd

import (
	"github.com/huangsam/sprintboard/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Sprintboard MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents import TSV feature lists
and read the aggregate, progress, velocity and summary reports via standard tools.

Logs go to stderr so stdout stays reserved for the protocol.

Examples:
  sprintboard mcp --state-file ~/projects/mobile/sprintboard_state.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
