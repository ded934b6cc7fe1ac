package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/louisbranch/obtuse.units/internal/platform/errors"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/catalog"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/domain/engine"
	obtusesqlite "github.com/louisbranch/obtuse.units/internal/services/obtuse/storage/sqlite"
)

// Settings are the environment knobs shared by every command that hosts a
// Service. Tags omit the OBTUSE_UNITS_ prefix.
type Settings struct {
	Loops         int      `env:"LOOPS"           envDefault:"2"`
	MinValueOrder int      `env:"MIN_VALUE_ORDER" envDefault:"-8"`
	MaxValueOrder int      `env:"MAX_VALUE_ORDER" envDefault:"8"`
	MaxPrefixes   *int     `env:"MAX_PREFIXES"`
	Spread        *float64 `env:"SPREAD"`
	// CatalogScript is a Lua file replacing the SI catalog.
	CatalogScript string `env:"CATALOG_SCRIPT"`
	// DBPath enables call history when set.
	DBPath     string `env:"DB_PATH"`
	ReplyLimit int    `env:"REPLY_LIMIT" envDefault:"280"`
	LogLevel   string `env:"LOG_LEVEL"   envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT"  envDefault:"text"`
}

// Defaults converts the settings to engine options.
func (s Settings) Defaults() engine.Options {
	opts := engine.DefaultOptions()
	opts.Loops = s.Loops
	opts.MinValueOrder = engine.Int(s.MinValueOrder)
	opts.MaxValueOrder = engine.Int(s.MaxValueOrder)
	opts.MaxPrefixes = s.MaxPrefixes
	opts.Spread = s.Spread
	return opts
}

// Open builds a Service from settings. The returned close function releases
// the history store and is never nil.
func Open(settings Settings, logger *slog.Logger) (*Service, func() error, error) {
	noop := func() error { return nil }

	var cat *catalog.Catalog
	if path := strings.TrimSpace(settings.CatalogScript); path != "" {
		loaded, err := catalog.LoadLuaFile(path)
		if err != nil {
			return nil, noop, apperrors.WrapWithMetadata(apperrors.CodeInvalidCatalog, "load catalog script",
				map[string]string{"Reason": err.Error()}, err)
		}
		cat = &loaded
	}

	cfg := Config{
		Catalog:    cat,
		Defaults:   settings.Defaults(),
		ReplyLimit: settings.ReplyLimit,
		Logger:     logger,
	}

	closeStore := noop
	if path := strings.TrimSpace(settings.DBPath); path != "" {
		store, err := openHistoryStore(path)
		if err != nil {
			return nil, noop, apperrors.Wrap(apperrors.CodeStorageFailure, "open history store", err)
		}
		cfg.History = store
		closeStore = store.Close
	}

	svc, err := NewService(cfg)
	if err != nil {
		_ = closeStore()
		return nil, noop, err
	}
	return svc, closeStore, nil
}

func openHistoryStore(path string) (*obtusesqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	store, err := obtusesqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history store %s: %w", path, err)
	}
	return store, nil
}
