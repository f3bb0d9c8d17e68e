package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/orion/internal/config"
	"github.com/dmitrijs2005/orion/internal/launch"
	"github.com/dmitrijs2005/orion/internal/logging"
	"github.com/dmitrijs2005/orion/internal/notify"
	"github.com/dmitrijs2005/orion/internal/paths"
	"github.com/dmitrijs2005/orion/internal/publish"
	"github.com/dmitrijs2005/orion/internal/reconcile"
	"github.com/dmitrijs2005/orion/internal/services"
	"github.com/dmitrijs2005/orion/internal/sidecar"
	"github.com/dmitrijs2005/orion/internal/storage"
	"github.com/dmitrijs2005/orion/internal/store"
)

// App holds the configured collaborators. The database is opened on the
// first command that needs it.
type App struct {
	cfg      *config.Config
	log      logging.Logger
	in       *bufio.Reader
	out      io.Writer
	resolver *paths.Resolver
	notifier notify.Notifier
	launcher *launch.Launcher

	db         *sql.DB
	repos      store.RepositoryManager
	shots      services.ShotService
	assets     services.AssetService
	reconciler *reconcile.Reconciler
	publisher  *publish.Publisher
}

func NewApp(cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) *App {
	if log == nil {
		log = logging.Nop()
	}
	return &App{
		cfg:      cfg,
		log:      log,
		in:       bufio.NewReader(in),
		out:      out,
		resolver: paths.NewResolver(cfg.ProjectRoot, cfg.AltRoots, cfg.ProjectMarker),
		notifier: notify.New(cfg.DiscordWebhookURL, cfg.NotifyTimeout),
		launcher: launch.NewLauncher(cfg.ProjectRoot, cfg.Software, log),
	}
}

// connect opens the project database and builds the services on top of
// it. Without create a missing database file is an error.
func (a *App) connect(ctx context.Context, create bool) error {
	if a.db != nil {
		return nil
	}
	repos := store.NewSQLiteRepositoryManager(a.log)
	db, err := store.Open(ctx, a.cfg.DBPath(), create, repos)
	if err != nil {
		return err
	}

	mirror, err := storage.New(ctx, a.cfg.Mirror)
	if err != nil {
		a.log.Warn(ctx, "publish mirror disabled", "error", err)
		mirror = nil
	}

	sidecars := sidecar.NewWriter(a.log)
	deps := services.Deps{
		DB:       db,
		Repos:    repos,
		Resolver: a.resolver,
		Sidecars: sidecars,
		Notifier: a.notifier,
		Log:      a.log,
		User:     a.cfg.User,
	}
	a.db = db
	a.repos = repos
	a.shots = services.NewShotService(deps)
	a.assets = services.NewAssetService(deps)
	a.reconciler = reconcile.New(reconcile.Options{
		DB: db, Repos: repos, Resolver: a.resolver, Sidecars: sidecars, Log: a.log, User: a.cfg.User,
	})
	a.publisher = publish.NewPublisher(publish.Options{
		DB: db, Repos: repos, Resolver: a.resolver, Mirror: mirror, Log: a.log, User: a.cfg.User,
	})
	return nil
}

// Close releases the database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// Run executes args as a single command, or starts the prompt when args is
// empty. It returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "orion (type 'help' for commands)")
		runREPL(ctx, a, a.in)
		return 0
	}
	if err := a.Execute(ctx, args); err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return 1
	}
	return 0
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
