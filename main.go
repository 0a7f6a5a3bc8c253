package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"email-classifier/internal/ai"
	"email-classifier/internal/config"
	"email-classifier/internal/extract"
	"email-classifier/internal/handler"
	"email-classifier/internal/logger"
	"email-classifier/internal/repository"
	"email-classifier/internal/repository/filesystem"
	"email-classifier/internal/repository/postgres"
	"email-classifier/internal/router"
	"email-classifier/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg          *config.Config
	logger       *logger.Logger
	classifier   service.ClassificationService
	emailService service.EmailService
	closers      []func() error
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Warn("Failed to close resource:", err)
		}
	}
	a.logger.Sync()
}

func newApp() (*app, error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	appLogger := logger.New(cfg.Env)
	a := &app{cfg: cfg, logger: appLogger}

	// Use PostgreSQL when DATABASE_URL is set, the emails directory otherwise
	var emailRepo repository.EmailRepository
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		if err := postgres.InitializeDatabase(db); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		emailRepo = postgres.NewPostgresEmailRepository(db)
		appLogger.Info("Using PostgreSQL email repository")
	} else {
		fileRepo := filesystem.NewFileEmailRepository(cfg.EmailsDir)
		if err := fileRepo.EnsureLayout(); err != nil {
			return nil, fmt.Errorf("failed to prepare emails directory: %w", err)
		}
		emailRepo = fileRepo
		appLogger.Infow("Using file email repository", "dir", cfg.EmailsDir)
	}

	// A missing API key only disables the remote model
	aiClient := ai.NewAIClient(cfg, appLogger)
	if aiClient.Enabled() {
		appLogger.Infow("Remote classifier enabled", "provider", cfg.AIProvider)
	} else {
		appLogger.Info("No AI API key configured, using keyword heuristic only")
	}

	a.classifier = service.NewClassificationService(aiClient, appLogger)
	a.emailService = service.NewEmailService(a.classifier, emailRepo, appLogger)
	return a, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "email-classifier",
		Short:        "Classify emails as Produtivo or Improdutivo and suggest a reply",
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			RunE:  runServe,
		},
		newClassifyCmd(),
		newListCmd(),
	)
	return root
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(a.cfg.MaxUploadSize))

	emailHandler := handler.NewEmailHandler(a.emailService, e.Logger)
	router.SetupRoutes(e, emailHandler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("Starting server on port", a.cfg.Port)
	return serve(ctx, e, ":"+a.cfg.Port, a.logger)
}

// serve runs e on addr until ctx is done, then shuts it down gracefully. A server that fails to
// start returns that error.
func serve(ctx context.Context, e *echo.Echo, addr string, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error("Failed to start server:", err)
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newClassifyCmd() *cobra.Command {
	var filePath string
	var store bool

	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify text given as arguments or read from a .txt/.pdf file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			text := strings.Join(args, " ")
			metadata := map[string]interface{}{"source": "cli"}
			if filePath != "" {
				text, err = readFile(filePath)
				if err != nil {
					return err
				}
				metadata = map[string]interface{}{"source": "file", "filename": filepath.Base(filePath)}
			}

			ctx := cmd.Context()
			if store {
				result, err := a.emailService.ClassifyAndStore(ctx, text, metadata)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			}

			result, source, err := a.classifier.ClassifyWithSource(ctx, text)
			if err != nil {
				return err
			}
			a.logger.Infow("Classified", "path", source)
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path to a .txt or .pdf file")
	cmd.Flags().BoolVar(&store, "store", false, "persist the classified email")
	return cmd
}

func newListCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			emails, err := a.emailService.ListEmails(cmd.Context(), category)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]interface{}{"emails": emails})
		},
	}

	cmd.Flags().StringVarP(&category, "categoria", "c", "", "produtivo or improdutivo")
	return cmd
}

// readFile extracts text from a local file, picking the media type from its extension.
func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	return extract.Text(contentType, data)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
