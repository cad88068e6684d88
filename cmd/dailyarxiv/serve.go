package main

import (
	"fmt"

	"github.com/pevans/dailyarxiv/archive"
	"github.com/pevans/dailyarxiv/papers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveFlags struct {
	addr    string
	archive string
	dir     string
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.addr, "addr", "localhost:8080", "Listen address")
	f.StringVar(&serveFlags.archive, "archive", "", "SQLite archive to serve (default: DAILYARXIV_ARCHIVE_DSN)")
	f.StringVar(&serveFlags.dir, "dir", "", "Paper directory to serve instead of an archive")

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve collected papers over HTTP",
	Long: `Serve papers from an archive or a paper directory.

Routes:
  GET /api/v1/papers         List papers (?category=, ?limit=, ?offset=)
  GET /api/v1/papers/:id     Get one paper`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	var reader papers.Reader

	switch {
	case serveFlags.dir != "":
		dir, err := papers.NewDir(serveFlags.dir)
		if err != nil {
			return err
		}
		reader = dir
	default:
		dsn := serveFlags.archive
		if dsn == "" {
			dsn = cfg.Archive.DSN
		}
		if dsn == "" {
			return fmt.Errorf("--archive or --dir is required")
		}
		store, err := archive.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer store.Close()
		reader = store
	}

	router := papers.NewAPIServer(reader).SetupRouter()

	logger.Info("starting paper API", zap.String("addr", "http://"+serveFlags.addr+"/api/v1/papers"))
	return router.Run(serveFlags.addr)
}
