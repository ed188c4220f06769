// Package app wires configuration to a document backend and a pair store.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bcnelson/pairstore/internal/codec"
	"github.com/bcnelson/pairstore/internal/config"
	"github.com/bcnelson/pairstore/internal/service"
	"github.com/bcnelson/pairstore/internal/storage"
	"github.com/bcnelson/pairstore/internal/storage/file"
	"github.com/bcnelson/pairstore/internal/storage/gcs"
	"github.com/bcnelson/pairstore/internal/storage/memory"
	"github.com/bcnelson/pairstore/internal/storage/sftp"
	"github.com/bcnelson/pairstore/internal/storage/sql"
	"github.com/bcnelson/pairstore/internal/storage/zookeeper"
)

// OpenDocument connects to the backend named by cfg.Store.Backend.
// The caller owns the returned Document and must Close it.
func OpenDocument(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Document, error) {
	if log == nil {
		log = slog.Default()
	}

	switch cfg.Store.Backend {
	case config.BackendFile:
		return opened(file.New(cfg.File.Root, log))
	case config.BackendSFTP:
		return opened(sftp.Dial(ctx, sftp.Options{
			Host:                  cfg.SFTP.Host,
			Port:                  cfg.SFTP.Port,
			User:                  cfg.SFTP.User,
			Password:              cfg.SFTP.Password,
			KnownHostsFile:        cfg.SFTP.KnownHosts,
			InsecureIgnoreHostKey: cfg.SFTP.InsecureIgnoreHostKey,
			Timeout:               cfg.SFTP.Timeout,
		}, log))
	case config.BackendSQL:
		if cfg.Database.Driver == "sqlite3" {
			if err := ensureSQLiteDir(cfg.Database.DSN); err != nil {
				return nil, err
			}
		}
		return opened(sql.New(cfg.Database.Driver, cfg.Database.DSN))
	case config.BackendGCS:
		return opened(gcs.NewBucket(ctx, cfg.GCS.Bucket))
	case config.BackendZooKeeper:
		return opened(zookeeper.Connect(cfg.ZooKeeper.Servers, cfg.ZooKeeper.SessionTimeout, log))
	case config.BackendMemory:
		log.Warn("memory backend selected; pairs are lost on exit")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Store.Backend)
	}
}

// opened converts a backend constructor result to a Document, keeping the
// interface nil when the constructor failed.
func opened[T storage.Document](doc T, err error) (storage.Document, error) {
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// NewPairStore builds the pair store for the configured document.
func NewPairStore(cfg *config.Config, doc storage.Document, log *slog.Logger) *service.PairStore {
	if log == nil {
		log = slog.Default()
	}
	c := codec.New(log, cfg.Store.StrictDecode)
	return service.NewPairStore(doc, cfg.Store.Document, c, log)
}

// ensureSQLiteDir creates the directory holding a file-backed SQLite DSN.
func ensureSQLiteDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}
