package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/intakehq/intake/config"
	srv "github.com/intakehq/intake/internal/server"
)

func main() {
	root := &cobra.Command{Use: "intaked"}
	root.AddCommand(serveCMD())
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func serveCMD() *cobra.Command {
	var cfgPath string
	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			if addr != "" {
				cfg.Server.Address = addr
			}
			return srv.Run(cfg)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	return serve
}
