package cmd

import (
	"github.com/spf13/cobra"

	"github.com/SalieeriW/FIB-NETFLIX/config"
	server2 "github.com/SalieeriW/FIB-NETFLIX/server"
)

func server(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "start media worker and http server",
		Run: func(cmd *cobra.Command, args []string) {
			server2.RunHttp(config)
		},
	}
}
