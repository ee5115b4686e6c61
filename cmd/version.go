package cmd

import (
	"fmt"

	"github.com/payraan/twelvedata/internal/common"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command
func NewVersionCommand(versionInfo common.VersionInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("twelvedata", versionInfo.String())
		},
	}
}
