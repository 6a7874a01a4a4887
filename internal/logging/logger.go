package logging

import (
	"log/slog"
	"os"

	"gorm.io/gorm"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// SetupWithDB additionally mirrors ERROR+ records into the system_logs table.
// Returns the PG handler so the caller can Stop it on shutdown.
func SetupWithDB(db *gorm.DB) *PGHandler {
	stdout := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	pg := NewPGHandler(db)
	slog.SetDefault(slog.New(NewMultiHandler(stdout, pg)))
	return pg
}
