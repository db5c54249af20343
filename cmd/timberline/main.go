package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/atelierworks/timberline/internal/cli"
	"github.com/atelierworks/timberline/internal/db"
	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/repository"
	"github.com/atelierworks/timberline/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// DB path: env var or default ~/.timberline/timberline.db
	dbPath := os.Getenv("TIMBERLINE_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".timberline", "timberline.db")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	projectRepo := repository.NewSQLiteProjectRepo(database)
	itemRepo := repository.NewSQLiteScheduleItemRepo(database)
	depRepo := repository.NewSQLiteDependencyRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	app := &cli.App{
		Projects: service.NewProjectService(projectRepo, uow),
		Timeline: service.NewTimelineService(itemRepo, depRepo, uow),
		Import:   service.NewImportService(uow),
		Role:     roleFromEnv(),
	}

	// The gantt view refuses to start without a terminal on stdin.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}

// roleFromEnv reads TIMBERLINE_ROLE, defaulting to pm. There is no login
// layer; the variable exists so a viewer deployment can lock mutations.
func roleFromEnv() domain.Role {
	switch os.Getenv("TIMBERLINE_ROLE") {
	case "admin":
		return domain.RoleAdmin
	case "viewer":
		return domain.RoleViewer
	default:
		return domain.RolePM
	}
}
