package cmd

import (
	"KPlayer/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the KPlayer HTTP server",
	Long:  `Start the HTTP server that serves the playlist API and the playlist creation socket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
