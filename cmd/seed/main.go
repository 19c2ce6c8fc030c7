// Command seed loads a YAML fixture of users, pets and services into the configured store.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"petcare-backend-go/internal/config"
	"petcare-backend-go/internal/core"
	"petcare-backend-go/internal/db"
)

var (
	fixturePath string
	dryRun      bool
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load users, pets and services from a YAML fixture",
	Long: `Registers the fixture's users and creates their pets and services in the store
selected by STORE_BACKEND. Users whose email already exists are skipped together with
their pets and services, so running the same fixture twice is safe.

Examples:
  seed --file cmd/seed/testdata/fixture.yaml
  STORE_BACKEND=badger BADGER_PATH=./data/badger seed --file fixture.yaml --dry-run`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringVarP(&fixturePath, "file", "f", "cmd/seed/testdata/fixture.yaml", "path to the YAML fixture")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the fixture without writing anything")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	fixture, err := loadFixture(fixturePath)
	if err != nil {
		return err
	}
	logger.Info("Fixture loaded", zap.String("file", fixturePath), zap.Int("users", len(fixture.Users)),
		zap.Int("pets", len(fixture.Pets)), zap.Int("services", len(fixture.Services)))
	if dryRun {
		return nil
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	store, err := openStore(ctx, appConfig, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	users := db.NewUserRepository(store, logger)
	s := &seeder{
		users:   core.NewUserService(users, nil, logger),
		pets:    core.NewPetService(db.NewPetRepository(store, logger)),
		catalog: core.NewCatalogService(db.NewServiceRepository(store, logger), users, logger),
		logger:  logger,
	}
	result, err := s.apply(ctx, fixture)
	if err != nil {
		return err
	}
	logger.Info("Seed complete", zap.Int("users", result.Users), zap.Int("skippedUsers", result.SkippedUsers),
		zap.Int("pets", result.Pets), zap.Int("services", result.Services))
	return nil
}

func openStore(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (db.Store, error) {
	if appConfig.StoreBackend == config.BackendBadger {
		return db.OpenBadgerStore(db.BadgerOptions{Path: appConfig.BadgerPath}, logger)
	}
	clients, err := db.InitFirebase(ctx, appConfig, logger)
	if err != nil {
		return nil, err
	}
	return db.NewFirestoreStore(clients.Firestore, logger), nil
}
