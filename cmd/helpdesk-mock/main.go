package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/civic881027/ai-ticket-demo/internal/config"
	"github.com/civic881027/ai-ticket-demo/internal/fakeapi"
	"github.com/civic881027/ai-ticket-demo/internal/utils"
	"github.com/civic881027/ai-ticket-demo/tickets"
)

type demoUser struct {
	username string
	password string
	staff    bool
}

var demoUsers = []demoUser{
	{username: "admin", password: "admin123", staff: true},
	{username: "alice", password: "alice123"},
	{username: "bob", password: "bob123"},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("mock server failed")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load()
	if err != nil {
		return err
	}
	if c.GetEnv() == "PROD" {
		return errors.New("the mock backend must not run with HELPDESK_ENV=PROD")
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	if lvl, err := zerolog.ParseLevel(c.GetLogLevel()); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	displayAppname(c.GetAppName() + " Mock")

	api := fakeapi.New(append(fakeapi.FromConfig(c), fakeapi.WithLogger(log.Logger))...)
	if err := seed(api); err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Mount(fakeapi.APIPrefix, api.Router())

	server := &http.Server{Addr: c.GetPort(), Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(server) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

// seed registers the demo accounts and one ticket per non-staff user.
func seed(api *fakeapi.Server) error {
	var admin tickets.User
	for _, u := range demoUsers {
		created, err := api.AddUser(u.username, u.password, u.staff)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}
		log.Info().Str("username", u.username).Str("password", u.password).Bool("staff", u.staff).Msg("demo account")
		if u.staff {
			admin = created
			continue
		}
		api.SeedTicket(created, tickets.CreateRequest{
			Title:       "Cannot log in after password reset",
			Description: "The login page keeps rejecting my new password.",
			AssignedTo:  utils.Ptr(admin.ID),
		})
	}
	return nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Str("api", fakeapi.APIPrefix+"/").Msg("mock backend listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
