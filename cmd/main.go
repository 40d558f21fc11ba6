package main

import (
	"context"
	"os"

	"hospital-management/cmd/bootstrap"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospital",
		Short: "Hospital management API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate the schema and create the first admin and departments",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			app, err := bootstrap.New(ctx)
			if err != nil {
				logrus.Errorf("Failed to initialize application: %v", err)
				return err
			}
			defer app.Close()

			return app.Seed(ctx)
		},
	}
}

func runServer() error {
	ctx := context.Background()

	// Initialize application with all dependencies
	app, err := bootstrap.New(ctx)
	if err != nil {
		logrus.Errorf("Failed to initialize application: %v", err)
		return err
	}

	if app.Config.DB.AutoMigrate {
		if err := app.Seed(ctx); err != nil {
			app.Close()
			return err
		}
	}

	return app.Run()
}
