package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spboyer/benchboard/internal/blobsync"
	"github.com/spboyer/benchboard/internal/projectconfig"
	"github.com/spboyer/benchboard/internal/spinner"
	"github.com/spf13/cobra"
)

func newPullCommand(g *globalFlags) *cobra.Command {
	var (
		accountURL string
		container  string
		prefix     string
		dest       string
		anonymous  bool
	)

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Download tasks and evaluation runs from Azure Blob Storage",
		Long: `Download tasks and evaluation runs from an Azure Blob Storage container.

Blobs under <prefix>tasks/ and <prefix>eval_runs/ are written below the
destination directory. Blobs whose ETag has not changed since the last pull
are skipped. Authentication uses DefaultAzureCredential unless --anonymous
is set for public containers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if accountURL == "" {
				accountURL = cfg.Blob.AccountURL
			}
			if container == "" {
				container = cfg.Blob.Container
			}
			if !cmd.Flags().Changed("prefix") {
				prefix = cfg.Blob.Prefix
			}
			if accountURL == "" || container == "" {
				return errors.New("an account URL and container are required (flags or the blob section of " + projectconfig.FileName + ")")
			}
			if dest == "" {
				dest = g.dataDir
			}
			if dest == "" {
				dest = cfg.Dir
			}
			dest, err = filepath.Abs(dest)
			if err != nil {
				return fmt.Errorf("resolving destination: %w", err)
			}

			c, err := blobsync.NewAzureContainer(accountURL, container, anonymous)
			if err != nil {
				return err
			}
			stop := spinner.StartOn(cmd.ErrOrStderr(), "Pulling "+container)
			res, err := blobsync.Pull(cmd.Context(), c, blobsync.Options{
				Prefix:   prefix,
				Dest:     dest,
				CacheDir: cfg.CacheDir(),
				Logger:   slog.Default(),
			})
			stop()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pulled into %s: %s downloaded, %s unchanged, %s skipped\n",
				dest, formatCount(res.Downloaded), formatCount(res.Unchanged), formatCount(res.Skipped))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountURL, "account-url", "", "Storage account URL, e.g. https://<account>.blob.core.windows.net")
	cmd.Flags().StringVar(&container, "container", "", "Blob container name")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Blob name prefix holding tasks/ and eval_runs/")
	cmd.Flags().StringVar(&dest, "dest", "", "Local directory to write into (default --data or the project directory)")
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "Access a public container without credentials")

	return cmd
}
