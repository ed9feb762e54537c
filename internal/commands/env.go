package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/greenbooks-dev/greenbooks/internal/accounts"
	"github.com/greenbooks-dev/greenbooks/internal/assets"
	"github.com/greenbooks-dev/greenbooks/internal/closing"
	"github.com/greenbooks-dev/greenbooks/internal/config"
	"github.com/greenbooks-dev/greenbooks/internal/ledger"
	"github.com/greenbooks-dev/greenbooks/internal/posting"
	"github.com/greenbooks-dev/greenbooks/internal/sqlite"
	"github.com/greenbooks-dev/greenbooks/internal/tax"
)

// env is the shared runtime every subcommand works against: configuration,
// the database, and the engines built on top of it.
type env struct {
	cfg      *config.Config
	db       *sqlite.DB
	registry *accounts.Registry
	store    *ledger.Store
	posting  *posting.Engine
	closing  *closing.Engine
	assets   *assets.Engine
}

// openEnv loads .env (if present), reads the config file, and opens the
// database. A missing config file falls back to defaults so one-off commands
// work without an init step.
func openEnv(configPath string) (*env, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		return nil, err
	}
	if p := os.Getenv("GREENBOOKS_DB"); p != "" {
		cfg.Database.Path = p
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	store := ledger.NewStore(db)
	e := &env{
		cfg:      cfg,
		db:       db,
		registry: accounts.NewRegistry(db),
		store:    store,
		posting: posting.NewEngine(store, posting.Options{
			Regime:                 tax.Regime(cfg.Tax.Regime),
			RecoverablePurchaseTax: cfg.Tax.RecoverablePurchaseTax,
		}),
		closing: closing.NewEngine(store),
		assets:  assets.NewEngine(db, store, nil),
	}
	return e, nil
}

func (e *env) close() {
	if err := e.db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "closing database: %v\n", err)
	}
}
