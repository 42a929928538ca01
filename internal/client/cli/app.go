// Package cli implements the interactive SkyDrive client: a REPL driving
// uploads, downloads, deletion and sync, plus the folder watch mode.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/skydrive/internal/client/api"
	"github.com/dmitrijs2005/skydrive/internal/client/config"
	"github.com/dmitrijs2005/skydrive/internal/client/index"
	"github.com/dmitrijs2005/skydrive/internal/client/migrations"
	"github.com/dmitrijs2005/skydrive/internal/client/repositories/localdata"
	"github.com/dmitrijs2005/skydrive/internal/client/services"
	"github.com/dmitrijs2005/skydrive/internal/client/view"
	"github.com/dmitrijs2005/skydrive/internal/client/watcher"
	"github.com/dmitrijs2005/skydrive/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger

	apiClient   *api.HTTPClient
	fileService *services.FileService
	syncService *services.SyncService
	applier     *services.Applier
	index       *index.FileIndex
	view        *view.View

	userName string
	watching bool
	reader   *bufio.Reader
}

func initDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, err
	}

	return db, nil
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	db, err := initDatabase(ctx, c.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	if err := os.MkdirAll(c.MirrorDir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating mirror dir: %w", err)
	}

	apiClient := api.NewHTTPClient(c.ServerEndpointAddr)
	repo := localdata.NewSQLiteRepository(db)

	idx := index.NewFileIndex()
	cache := services.NewUploadCache(repo, logger)
	applier := services.NewApplier(apiClient, cache, idx, c.MirrorDir, logger)

	fs := services.NewFileService(apiClient, cache, idx, applier, logger)
	ss := services.NewSyncService(apiClient, applier, repo, logger)

	return &App{
		config:      c,
		logger:      logger,
		apiClient:   apiClient,
		fileService: fs,
		syncService: ss,
		applier:     applier,
		index:       idx,
		view:        view.New(idx),
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	s := a.userName
	if a.watching {
		s += " watching"
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) Run(ctx context.Context) {
	fmt.Println("Welcome to SkyDrive CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

// Login reads the owner id and access token, rebuilds the index from a full
// listing and stamps the sync cursor. The cursor moves only after the
// listing succeeds, so a failed login never hides changes.
func (a *App) Login(ctx context.Context) error {
	owner, err := GetSimpleText(a.reader, "Enter user id", os.Stdout)
	if err != nil {
		return err
	}
	token, err := GetToken(os.Stdout)
	if err != nil {
		return err
	}

	a.apiClient.SetToken(token)
	a.fileService.SetOwner(owner)
	a.syncService.SetOwner(owner)

	if err := a.fileService.RefreshIndex(ctx); err != nil {
		fmt.Println("Login failed:", err)
		return err
	}

	if err := a.syncService.SaveCursor(ctx, time.Now().UTC()); err != nil {
		a.logger.Warn(ctx, "could not stamp cursor", "error", err.Error())
	}

	a.userName = owner
	fmt.Printf("Logged in as %s (%d files)\n", owner, a.index.Len())
	return a.List(ctx)
}

func (a *App) Logout(ctx context.Context) error {
	a.apiClient.SetToken("")
	a.index.Reset()
	a.userName = ""
	a.watching = false
	fmt.Println("Logged out")
	return nil
}

func (a *App) List(ctx context.Context) error {
	return a.view.Render(os.Stdout)
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: upload <path>")
		return nil
	}
	if err := a.fileService.Upload(ctx, args[0]); err != nil {
		fmt.Println("Upload failed:", err)
		return err
	}
	return a.List(ctx)
}

func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: download <fileId>")
		return nil
	}
	path, err := a.fileService.Download(ctx, args[0], a.config.MirrorDir)
	if err != nil {
		fmt.Println("Download failed:", err)
		return err
	}
	fmt.Println("Saved to", path)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: delete <fileId>")
		return nil
	}
	if err := a.fileService.Delete(ctx, args[0]); err != nil {
		fmt.Println("Delete failed:", err)
		return err
	}
	return a.List(ctx)
}

func (a *App) Sync(ctx context.Context) error {
	if err := a.syncService.Sync(ctx); err != nil {
		fmt.Println("Sync failed:", err)
		return err
	}
	return a.List(ctx)
}

func (a *App) Filter(ctx context.Context, args []string) error {
	ext := ""
	if len(args) > 0 {
		ext = args[0]
	}
	a.view.SetFilter(ext)
	return a.List(ctx)
}

// Watch starts the folder watcher and the periodic sync tick. Both run until
// the context is cancelled.
func (a *App) Watch(ctx context.Context) error {
	if a.watching {
		fmt.Println("Already watching", a.config.MirrorDir)
		return nil
	}

	w, err := watcher.New(a.config.MirrorDir, a.logger)
	if err != nil {
		return fmt.Errorf("error starting watcher: %w", err)
	}

	a.watching = true
	go w.Run(ctx)
	go a.handleWatchEvents(ctx, w.Events())
	go a.runSyncTicker(ctx)

	fmt.Println("Watching", a.config.MirrorDir)
	return nil
}

func (a *App) handleWatchEvents(ctx context.Context, events <-chan watcher.Event) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			// the applier's own writes and removals do not echo back
			if a.applier.Consume(event.Path) {
				continue
			}

			switch event.Kind {
			case watcher.KindWrite:
				if err := a.fileService.Upload(ctx, event.Path); err != nil {
					a.logger.Warn(ctx, "watch upload failed", "path", event.Path, "error", err.Error())
				}

			case watcher.KindRemove:
				record := a.findByName(filepath.Base(event.Path))
				if record == "" {
					continue
				}
				if err := a.fileService.Delete(ctx, record); err != nil {
					a.logger.Warn(ctx, "watch delete failed", "path", event.Path, "error", err.Error())
				}
			}
		}
	}
}

func (a *App) runSyncTicker(ctx context.Context) {
	ticker := time.NewTicker(a.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := a.syncService.Sync(ctx); err != nil {
				a.logger.Warn(ctx, "periodic sync failed", "error", err.Error())
			}
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) findByName(fileName string) string {
	for _, record := range a.index.All() {
		if record.FileName == fileName {
			return record.FileID
		}
	}
	return ""
}
