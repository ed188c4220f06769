// Package cli implements the pairctl subcommands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/bcnelson/pairstore/internal/domain"
)

// Service is the operation surface the commands call.
type Service interface {
	List(ctx context.Context) ([]domain.Pair, error)
	LookupIPByDomain(ctx context.Context, name string) (string, error)
	LookupDomainByIP(ctx context.Context, ip string) (string, error)
	Add(ctx context.Context, name, ip string) error
	Delete(ctx context.Context, key string) (int, error)
	Revisions(ctx context.Context, limit int) ([]*domain.Revision, error)
	ValidateIP(ip string) bool
}

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Run executes one subcommand against store and returns the process exit
// code. Results go to stdout, diagnostics to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, store Service) int {
	if len(args) == 0 {
		printHelp(stderr)
		return ExitUsage
	}

	r := &runner{ctx: ctx, stdout: stdout, stderr: stderr, store: store}

	switch args[0] {
	case "list":
		return r.list(args[1:])
	case "ip":
		return r.ip(args[1:])
	case "domain":
		return r.domain(args[1:])
	case "add":
		return r.add(args[1:])
	case "delete":
		return r.delete(args[1:])
	case "validate":
		return r.validate(args[1:])
	case "revisions":
		return r.revisions(args[1:])
	case "help", "-h", "--help":
		printHelp(stdout)
		return ExitOK
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n", args[0])
		printHelp(stderr)
		return ExitUsage
	}
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `pairctl

Usage:
  pairctl list [-format text|json]
  pairctl ip <domain>
  pairctl domain <ip>
  pairctl add <domain> <ip>
  pairctl delete <domain|ip>
  pairctl validate <ip>
  pairctl revisions [-limit n]

Commands:
  list       Print every pair sorted by domain
  ip         Look up the IP of a domain (case-insensitive)
  domain     Look up the domain of an IP (leading zeros ignored)
  add        Add a pair; domain and IP must both be unused
  delete     Remove every pair whose domain or IP equals the key
  validate   Check whether an IP is a valid IPv4 address
  revisions  Show stored document versions (sql backend only)

The backend is selected with the same environment variables as the server.
`)
}

type runner struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	store  Service
}

// positional parses flags (if any) and requires exactly n positional args.
func (r *runner) positional(fs *flag.FlagSet, args []string, n int, usage string) ([]string, bool) {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(r.stderr, "%s: %v\nusage: pairctl %s\n", fs.Name(), err, usage)
		return nil, false
	}
	if fs.NArg() != n {
		fmt.Fprintf(r.stderr, "usage: pairctl %s\n", usage)
		return nil, false
	}
	return fs.Args(), true
}

// fail prints err and maps it to an exit code.
func (r *runner) fail(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyDomain):
		fmt.Fprintln(r.stderr, "rejected: domain cannot be empty")
	case errors.Is(err, domain.ErrInvalidIP):
		fmt.Fprintln(r.stderr, "rejected: invalid IP address")
	case errors.Is(err, domain.ErrDuplicateDomainOrIP):
		fmt.Fprintln(r.stderr, "rejected: domain or IP already exists")
	case errors.Is(err, domain.ErrInvalidInput):
		fmt.Fprintln(r.stderr, "rejected: domain must be valid UTF-8")
	case errors.Is(err, domain.ErrInvalidIPFormat):
		fmt.Fprintln(r.stderr, "rejected: invalid IP format")
	case errors.Is(err, domain.ErrNotFound):
		fmt.Fprintln(r.stderr, "not found")
	default:
		fmt.Fprintln(r.stderr, "error:", err)
	}
	return ExitError
}

func (r *runner) list(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	format := fs.String("format", "text", "Output format: text|json")
	if _, ok := r.positional(fs, args, 0, "list [-format text|json]"); !ok {
		return ExitUsage
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(r.stderr, "unknown format: %s\n", *format)
		return ExitUsage
	}

	pairs, err := r.store.List(r.ctx)
	if err != nil {
		return r.fail(err)
	}

	if *format == "json" {
		enc := json.NewEncoder(r.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(pairs); err != nil {
			return r.fail(err)
		}
		return ExitOK
	}
	for _, p := range pairs {
		fmt.Fprintf(r.stdout, "Domain: %s, IP: %s\n", p.Domain, p.IP)
	}
	return ExitOK
}

func (r *runner) ip(args []string) int {
	rest, ok := r.positional(flag.NewFlagSet("ip", flag.ContinueOnError), args, 1, "ip <domain>")
	if !ok {
		return ExitUsage
	}

	ip, err := r.store.LookupIPByDomain(r.ctx, rest[0])
	if err != nil {
		return r.fail(err)
	}
	fmt.Fprintln(r.stdout, ip)
	return ExitOK
}

func (r *runner) domain(args []string) int {
	rest, ok := r.positional(flag.NewFlagSet("domain", flag.ContinueOnError), args, 1, "domain <ip>")
	if !ok {
		return ExitUsage
	}

	name, err := r.store.LookupDomainByIP(r.ctx, rest[0])
	if err != nil {
		return r.fail(err)
	}
	fmt.Fprintln(r.stdout, name)
	return ExitOK
}

func (r *runner) add(args []string) int {
	rest, ok := r.positional(flag.NewFlagSet("add", flag.ContinueOnError), args, 2, "add <domain> <ip>")
	if !ok {
		return ExitUsage
	}

	if err := r.store.Add(r.ctx, rest[0], rest[1]); err != nil {
		return r.fail(err)
	}
	fmt.Fprintf(r.stdout, "added %s -> %s\n", rest[0], rest[1])
	return ExitOK
}

func (r *runner) delete(args []string) int {
	rest, ok := r.positional(flag.NewFlagSet("delete", flag.ContinueOnError), args, 1, "delete <domain|ip>")
	if !ok {
		return ExitUsage
	}

	removed, err := r.store.Delete(r.ctx, rest[0])
	if err != nil {
		return r.fail(err)
	}
	fmt.Fprintf(r.stdout, "removed %d\n", removed)
	return ExitOK
}

func (r *runner) validate(args []string) int {
	rest, ok := r.positional(flag.NewFlagSet("validate", flag.ContinueOnError), args, 1, "validate <ip>")
	if !ok {
		return ExitUsage
	}

	if r.store.ValidateIP(rest[0]) {
		fmt.Fprintf(r.stdout, "%s is valid\n", rest[0])
		return ExitOK
	}
	fmt.Fprintf(r.stdout, "%s is not valid\n", rest[0])
	return ExitError
}

func (r *runner) revisions(args []string) int {
	fs := flag.NewFlagSet("revisions", flag.ContinueOnError)
	limit := fs.Int("limit", 10, "Maximum number of revisions, 0 for all")
	if _, ok := r.positional(fs, args, 0, "revisions [-limit n]"); !ok {
		return ExitUsage
	}

	revisions, err := r.store.Revisions(r.ctx, *limit)
	if err != nil {
		return r.fail(err)
	}
	for _, rev := range revisions {
		fmt.Fprintf(r.stdout, "v%d %s %s %d bytes\n",
			rev.Version, rev.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"), rev.ID, len(rev.Content))
	}
	return ExitOK
}
