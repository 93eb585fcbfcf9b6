package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/database/users"
)

// CreateUserCommand registers an account directly in the database and
// prints its API token.
type CreateUserCommand struct {
	Username     string
	Email        string
	Password     string
	DatabasePath string
	BcryptCost   int
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username of the new account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address that receives purchase notifications")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 8 characters (falls back to $BOOKSTORE_PASSWORD)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the SQLite database file")
	fs.IntVar(&cmd.BcryptCost, "bcrypt-cost", 12, "bcrypt cost used to hash the password")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an account and print its API token.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  BOOKSTORE_PASSWORD=s3cret-pass %s create-user -username admin -email admin@example.com\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return fmt.Errorf("required flag -username not provided")
	}
	if cmd.Password == "" {
		cmd.Password = os.Getenv("BOOKSTORE_PASSWORD")
	}
	if cmd.Password == "" {
		return fmt.Errorf("password not provided: use -password or BOOKSTORE_PASSWORD")
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db.DB), config.Auth{BcryptCost: cmd.BcryptCost})

	user, err := service.Register(cmd.Username, cmd.Email, cmd.Password)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	token, err := service.Login(cmd.Username, cmd.Password)
	if err != nil {
		return fmt.Errorf("user created but token could not be issued: %w", err)
	}

	fmt.Printf("Created user %q (id %d)\n", user.Username, user.ID)
	fmt.Printf("Token: %s\n", token.Key)
	return nil
}
