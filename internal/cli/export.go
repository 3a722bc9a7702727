package cli

import (
	"context"
	"log"

	"chemguess-service/internal/catalog"
	"chemguess-service/internal/config"
	"chemguess-service/internal/infra/file"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewExportCmd writes the current catalog to a CSV or XLSX file.
func NewExportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.csv|file.xlsx>",
		Short: "Export the compound catalog to CSV or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), *configPath, args[0])
		},
	}
}

func runExport(ctx context.Context, configPath, out string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}
	loader, err := compoundLoader(cfg, pool)
	if err != nil {
		return err
	}
	raw, err := loader.LoadCompounds(ctx)
	if err != nil {
		return err
	}
	compounds := catalog.New(catalog.Sanitize(raw, func(err error) {
		log.Printf("skipping compound: %v", err)
	})).All()

	if err := file.Export(out, compounds); err != nil {
		return err
	}
	log.Printf("exported %d compounds to %s", len(compounds), out)
	return nil
}
