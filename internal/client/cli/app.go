package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/client/client"
	"github.com/dmitrijs2005/gophdocs/internal/client/config"
	"github.com/dmitrijs2005/gophdocs/internal/client/notify"
	"github.com/dmitrijs2005/gophdocs/internal/client/repositories/pending"
	"github.com/dmitrijs2005/gophdocs/internal/client/services"
	"github.com/dmitrijs2005/gophdocs/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	authService     services.AuthService
	documentService services.DocumentService
	validation      *services.ValidationCoordinator
	approval        *services.ApprovalCoordinator
	status          *services.StatusToggle
	confirmer       notify.Confirmer

	reader *bufio.Reader
	out    io.Writer

	mu         sync.Mutex
	mode       Mode
	userName   string
	currentDoc string
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewTextLogger(os.Stderr, c.LogLevel)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	apiClient, err := client.NewDocumentsClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newApp(c, log, db, apiClient, bufio.NewReader(os.Stdin), os.Stdout), nil
}

// newApp wires the services around an API client. Tests pass a fake client
// and in-memory I/O.
func newApp(c *config.Config, log logging.Logger, db *sql.DB, api client.Client, reader *bufio.Reader, out io.Writer) *App {
	console := notify.NewConsole(out, reader)

	a := &App{
		config:          c,
		log:             log,
		db:              db,
		authService:     services.NewAuthService(api, db),
		documentService: services.NewDocumentService(api),
		confirmer:       console,
		reader:          reader,
		out:             out,
	}
	a.validation = services.NewValidationCoordinator(api, console, console, log, c.AllowProceedOnError)
	a.approval = services.NewApprovalCoordinator(api, console, pending.NewSQLiteRepository(db), log, a.onApproved)
	a.status = services.NewStatusToggle(api, console, log, a.refetch)
	return a
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		printlnFn(fmt.Sprintf("Switched to %s mode", mode))
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)
	a.Root(ctx)
}

func (a *App) close(ctx context.Context) {
	if a.isLoggedIn() {
		if err := a.authService.SaveSession(ctx); err != nil {
			a.log.Warn(ctx, "failed to save session", "error", err)
		}
	}
	_ = a.authService.Close(ctx)
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName != ""
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userName = name
}

func (a *App) setCurrentDoc(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentDoc = id
}

// onApproved refreshes the timeline of a freshly approved document.
func (a *App) onApproved(ctx context.Context, documentID string) {
	a.showTimeline(ctx, documentID)
}

// refetch reloads the timeline the user is working on.
func (a *App) refetch(ctx context.Context) {
	a.mu.Lock()
	id := a.currentDoc
	a.mu.Unlock()
	if id != "" {
		a.showTimeline(ctx, id)
	}
}

// StartOnlineStatusWatcher pings the backend every interval until ctx ends.
// A non-positive interval disables the watcher.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		a.log.Warn(ctx, "online status watcher disabled", "interval", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
