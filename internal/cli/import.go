package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"chemguess-service/internal/catalog"
	"chemguess-service/internal/config"
	"chemguess-service/internal/infra/file"
	"chemguess-service/internal/infra/postgres"
	infraredis "chemguess-service/internal/infra/redis"
	"github.com/spf13/cobra"
)

// NewImportCmd loads a JSON, CSV or XLSX catalog file into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import compounds from a JSON, CSV or XLSX file into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), *configPath, args[0], replace)
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "remove compounds missing from the file")
	return cmd
}

func runImport(ctx context.Context, configPath, path string, replace bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	loader, err := file.NewLoader(path)
	if err != nil {
		return err
	}
	raw, err := loader.LoadCompounds(ctx)
	if err != nil {
		return err
	}
	valid := catalog.Sanitize(raw, func(err error) {
		log.Printf("skipping compound: %v", err)
	})
	// catalog.New drops case-insensitive duplicates, keeping the first
	compounds := catalog.New(valid).All()

	db := openBun(cfg.Postgres.URL)
	defer db.Close()
	n, err := postgres.NewCompoundWriter(db).Import(ctx, compounds, replace)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	log.Printf("imported %d compounds from %s (%d skipped)", n, path, len(raw)-n)

	if client := newRedisClient(cfg); client != nil {
		defer client.Close()
		repo := infraredis.NewCatalogRepository(client, nil, time.Minute)
		if err := repo.Invalidate(ctx); err != nil {
			log.Printf("invalidate cached catalog: %v", err)
		}
		if err := infraredis.NewBag(client, repo, cfg.Catalog.BagSize).Reset(ctx); err != nil {
			log.Printf("reset shared bag: %v", err)
		}
	}
	return nil
}
