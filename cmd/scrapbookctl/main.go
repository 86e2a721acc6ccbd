package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ourlovestory/scrapbook/internal/config"
	"github.com/ourlovestory/scrapbook/internal/export"
	"github.com/ourlovestory/scrapbook/internal/tokens"
)

var serverURL string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "scrapbookctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "scrapbookctl",
		Short:        "Scrapbook service CLI",
		Long:         `scrapbookctl drives a running scrapbook service: export the scrapbook to PDF, or mint development access tokens.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:5001", "Base URL of the scrapbook service")
	cmd.AddCommand(
		newExportCmd(),
		newTokenCmd(),
	)
	return cmd
}

func newExportCmd() *cobra.Command {
	var authToken string
	var outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the scrapbook to a PDF and download it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client := export.NewClient(serverURL, authToken, outDir)
			orch := export.New(client)
			orch.OnPhase = func(p export.Phase) {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}

			if err := orch.Export(ctx); err != nil {
				if err == export.ErrNoSections {
					fmt.Fprintln(cmd.OutOrStdout(), "Your scrapbook is empty — add some sections first.")
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", orch.SavedPath())
			return nil
		},
	}
	cmd.Flags().StringVarP(&authToken, "token", "t", os.Getenv("SCRAPBOOK_TOKEN"), "Bearer token for the editor API")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory to write the PDF into")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var sub, name string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token (uses JWT_SECRET from the environment)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			tok, err := tokens.GenerateAccessToken(cfg, sub, name, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&sub, "sub", "dev-user", "Subject claim")
	cmd.Flags().StringVar(&name, "name", "Developer", "Name claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}
