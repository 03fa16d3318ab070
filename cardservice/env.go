package cardservice

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/cardkeep/cardkeep/internal/events"
	"github.com/cardkeep/cardkeep/internal/logger"
	"github.com/cardkeep/cardkeep/internal/remote"
	"github.com/cardkeep/cardkeep/internal/services"
	"github.com/cardkeep/cardkeep/internal/store"
	"github.com/cardkeep/cardkeep/internal/store/sqlite"
)

// Env is the client-profile service layer: a local sqlite replica plus an
// optional remote gateway. It backs cardctl command invocations.
type Env struct {
	Store     store.Store
	Bus       *events.Bus
	Cards     *services.CardService
	Tags      *services.TagService
	Templates *services.TemplateService
	Users     *services.UserService
	Stats     *services.StatsService
	Sync      *services.SyncService

	db *sql.DB
}

// NewEnv opens the sqlite database at dbPath, creating parent directories
// and schema as needed. An empty apiURL leaves the gateway nil and every
// operation purely local.
func NewEnv(dbPath, apiURL string) (*Env, error) {
	log := logger.New("cardctl")

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := sqlite.EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	bus := events.NewBus()
	st := sqlite.New(db, bus)

	var gw remote.Gateway
	if apiURL != "" {
		gw = remote.NewClient(apiURL)
	}

	cardSvc := services.NewCardService(st, gw, log)
	return &Env{
		Store:     st,
		Bus:       bus,
		Cards:     cardSvc,
		Tags:      services.NewTagService(st, gw, log),
		Templates: services.NewTemplateService(st, cardSvc, gw, log),
		Users:     services.NewUserService(st, gw, log),
		Stats:     services.NewStatsService(st, log),
		Sync:      services.NewSyncService(st, gw, log),
		db:        db,
	}, nil
}

func (e *Env) Close() error {
	return e.db.Close()
}
