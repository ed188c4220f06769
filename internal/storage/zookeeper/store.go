// Package zookeeper stores documents as znodes in a ZooKeeper ensemble.
package zookeeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bcnelson/pairstore/internal/storage"
	"github.com/samuel/go-zookeeper/zk"
)

// Store keeps each document as the data of one znode.
type Store struct {
	conn *zk.Conn
	log  *slog.Logger
}

// Ensure Store implements Document.
var _ storage.Document = (*Store)(nil)

// Connect opens a session against the given servers.
func Connect(servers []string, sessionTimeout time.Duration, log *slog.Logger) (*Store, error) {
	conn, _, err := zk.Connect(servers, sessionTimeout, zk.WithLogInfo(false))
	if err != nil {
		return nil, fmt.Errorf("connecting to zookeeper: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{conn: conn, log: log.With(slog.String("backend", "zookeeper"))}, nil
}

// Close ends the session.
func (s *Store) Close() error {
	s.conn.Close()
	return nil
}

// ReadRaw returns the znode data. A missing znode reads as empty.
func (s *Store) ReadRaw(ctx context.Context, locator string) ([]byte, error) {
	if err := ValidatePath(locator); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, _, err := s.conn.Get(locator)
	if errors.Is(err, zk.ErrNoNode) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting znode: %w", err)
	}
	return data, nil
}

// WriteRaw sets the znode data, creating the znode and its parents if
// they do not exist.
func (s *Store) WriteRaw(ctx context.Context, locator string, data []byte) error {
	if err := ValidatePath(locator); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.conn.Set(locator, data, -1)
	if err == nil {
		return nil
	}
	if !errors.Is(err, zk.ErrNoNode) {
		return fmt.Errorf("setting znode: %w", err)
	}

	if err := s.createParents(locator); err != nil {
		return err
	}
	_, err = s.conn.Create(locator, data, 0, zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("creating znode: %w", err)
	}
	s.log.Info("created znode", slog.String("path", locator))
	return nil
}

func (s *Store) createParents(locator string) error {
	for _, parent := range Parents(locator) {
		_, err := s.conn.Create(parent, []byte{}, 0, zk.WorldACL(zk.PermAll))
		if err != nil && !errors.Is(err, zk.ErrNodeExists) {
			return fmt.Errorf("creating parent znode %s: %w", parent, err)
		}
	}
	return nil
}

// ValidatePath checks that locator is an absolute znode path.
func ValidatePath(locator string) error {
	if !strings.HasPrefix(locator, "/") || locator == "/" {
		return fmt.Errorf("znode path must be absolute and not the root: %q", locator)
	}
	if strings.HasSuffix(locator, "/") || strings.Contains(locator, "//") {
		return fmt.Errorf("znode path has an empty segment: %q", locator)
	}
	return nil
}

// Parents lists the ancestors of a znode path from the top down, excluding
// the root. Parents("/a/b/c") is ["/a", "/a/b"].
func Parents(locator string) []string {
	segments := strings.Split(strings.TrimPrefix(locator, "/"), "/")
	var out []string
	for i := 1; i < len(segments); i++ {
		out = append(out, "/"+strings.Join(segments[:i], "/"))
	}
	return out
}
