package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/database/users"
)

// PurgeTokensCommand deletes API tokens older than a given age.
type PurgeTokensCommand struct {
	DatabasePath string
	MaxAge       time.Duration
	Now          func() time.Time
}

func NewPurgeTokensCommand() *PurgeTokensCommand {
	return &PurgeTokensCommand{Now: time.Now}
}

func (cmd *PurgeTokensCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("purge-tokens", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the SQLite database file")
	fs.DurationVar(&cmd.MaxAge, "older-than", 0, "Delete tokens created longer ago than this, e.g. 720h (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s purge-tokens -older-than <duration> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete API tokens older than the given age. Affected users have to log in again.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.MaxAge <= 0 {
		return fmt.Errorf("-older-than must be a positive duration")
	}
	return nil
}

func (cmd *PurgeTokensCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cutoff := cmd.Now().Add(-cmd.MaxAge)
	deleted, err := users.NewRepository(db.DB).DeleteTokensCreatedBefore(cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete tokens: %w", err)
	}

	fmt.Printf("Deleted %d token(s) created before %s\n", deleted, cutoff.Format(time.RFC3339))
	return nil
}
