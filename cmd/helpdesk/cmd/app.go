package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"go.etcd.io/bbolt"
	"golang.org/x/term"

	"github.com/civic881027/ai-ticket-demo/client"
	"github.com/civic881027/ai-ticket-demo/guard"
	"github.com/civic881027/ai-ticket-demo/internal/config"
	"github.com/civic881027/ai-ticket-demo/sessions"
	"github.com/civic881027/ai-ticket-demo/sessions/boltrepo"
	"github.com/civic881027/ai-ticket-demo/sessions/filerepo"
	fakesessionrepo "github.com/civic881027/ai-ticket-demo/sessions/repofakes"
	"github.com/civic881027/ai-ticket-demo/tickets"
)

// app holds everything a command needs; it is populated by init before
// any command runs.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	reader *bufio.Reader

	output  string
	baseURL string
	debug   bool

	cfg     config.Config
	logger  zerolog.Logger
	store   *sessions.Store
	closer  io.Closer
	client  *client.Client
	guard   *guard.Guard
	tickets *tickets.Service
}

func (a *app) init() error {
	if a.client != nil {
		return nil
	}
	if err := checkFormat(a.output); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(a.errOut, cfg.GetLogLevel(), a.debug)

	repo, closer, err := openSessionRepo(cfg)
	if err != nil {
		return err
	}
	a.closer = closer
	a.store = sessions.NewStore(repo, sessions.WithLogger(a.logger))

	baseURL := cfg.GetBaseURL()
	if a.baseURL != "" {
		baseURL = a.baseURL
	}
	a.client, err = client.New(baseURL, a.store,
		client.WithTimeout(cfg.GetRequestTimeout()),
		client.WithLogger(a.logger),
		client.WithSessionExpiredHandler(func(error) {
			fmt.Fprintln(a.errOut, "Your session has expired. Run `helpdesk login` to sign in again.")
		}),
	)
	if err != nil {
		return err
	}
	a.guard = guard.New(a.store, guard.WithLogger(a.logger))
	a.tickets = tickets.NewService(a.client)
	return nil
}

func (a *app) close() {
	if a.closer == nil {
		return
	}
	if err := a.closer.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to close session storage")
	}
	a.closer = nil
}

func newLogger(w io.Writer, level string, debug bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// openSessionRepo returns the configured session backend and, for
// backends holding a file handle, its closer.
func openSessionRepo(cfg config.SessionConfig) (sessions.Repo, io.Closer, error) {
	switch cfg.GetSessionBackend() {
	case config.SessionBackendMemory:
		return fakesessionrepo.NewFakeSessionRepo(), nil, nil
	case config.SessionBackendBolt:
		path := cfg.GetSessionPath()
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create session directory: %w", err)
		}
		repo, err := boltrepo.NewFromFile(path, &bbolt.Options{Timeout: time.Second})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session storage: %w", err)
		}
		return repo, repo, nil
	case config.SessionBackendFile, "":
		repo, err := filerepo.New(cfg.GetSessionPath())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session storage: %w", err)
		}
		return repo, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown session backend %q", cfg.GetSessionBackend())
}

func (a *app) printBanner() {
	name := "Helpdesk"
	if a.cfg != nil {
		name = a.cfg.GetAppName()
	}
	fmt.Fprintln(a.out, figure.NewFigure(name, "cybermedium", true).String())
}

func (a *app) prompt(label string) (string, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.in)
	}
	fmt.Fprint(a.errOut, label)
	line, err := a.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo when attached to a terminal.
func (a *app) readPassword(label string) (string, error) {
	f, ok := a.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return a.prompt(label)
	}
	fmt.Fprint(a.errOut, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.errOut)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
