// Package sftp stores documents as files on a remote host reached over an
// SFTP session.
package sftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/bcnelson/pairstore/internal/storage"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Options configures the SSH session behind the store.
type Options struct {
	Host     string
	Port     int
	User     string
	Password string

	// KnownHostsFile verifies the server key. Required unless
	// InsecureIgnoreHostKey is set.
	KnownHostsFile        string
	InsecureIgnoreHostKey bool

	Timeout time.Duration
}

// Store implements storage.Document over SFTP.
// One SSH connection and one SFTP channel are held for the life of the store.
type Store struct {
	client *sftp.Client
	conn   io.Closer
	log    *slog.Logger
}

// Ensure Store implements Document.
var _ storage.Document = (*Store)(nil)

// Dial opens an SSH connection with password authentication and starts an
// SFTP subsystem on it.
func Dial(ctx context.Context, opts Options, log *slog.Logger) (*Store, error) {
	hostKey, err := hostKeyCallback(opts)
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	config := &ssh.ClientConfig{
		User:            opts.User,
		Auth:            []ssh.AuthMethod{ssh.Password(opts.Password)},
		HostKeyCallback: hostKey,
		Timeout:         opts.Timeout,
	}

	dialer := net.Dialer{Timeout: opts.Timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, config)
	if err != nil {
		_ = netConn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, fmt.Errorf("starting sftp subsystem: %w", err)
	}

	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("backend", "sftp"), slog.String("addr", addr))
	log.Info("connected")

	return &Store{client: client, conn: sshClient, log: log}, nil
}

// NewFromClient wraps an already established SFTP client. Closing the
// store closes the client.
func NewFromClient(client *sftp.Client, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{client: client, log: log.With(slog.String("backend", "sftp"))}
}

func hostKeyCallback(opts Options) (ssh.HostKeyCallback, error) {
	if opts.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	if opts.KnownHostsFile == "" {
		return nil, fmt.Errorf("a known_hosts file is required to verify the host key")
	}
	cb, err := knownhosts.New(opts.KnownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("loading known_hosts: %w", err)
	}
	return cb, nil
}

// Close ends the SFTP channel and the SSH connection.
func (s *Store) Close() error {
	err := s.client.Close()
	if s.conn != nil {
		err = errors.Join(err, s.conn.Close())
	}
	return err
}

// ReadRaw downloads the remote file. A missing file reads as empty; a file
// larger than storage.MaxDocumentSize is an error.
func (s *Store) ReadRaw(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.client.Open(locator)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening remote file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := storage.ReadLimited(f)
	if err != nil {
		return nil, fmt.Errorf("reading remote file: %w", err)
	}
	return data, nil
}

// WriteRaw uploads data, overwriting the remote file.
func (s *Store) WriteRaw(ctx context.Context, locator string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := s.client.OpenFile(locator, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return fmt.Errorf("opening remote file for write: %w", err)
	}

	var closed bool
	defer func() {
		if !closed {
			_ = f.Close()
		}
	}()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing remote file: %w", err)
	}

	closed = true
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing remote file: %w", err)
	}

	s.log.Debug("document uploaded", slog.String("path", locator), slog.Int("bytes", len(data)))
	return nil
}
