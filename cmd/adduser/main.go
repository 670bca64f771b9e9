package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/vaughan-dsouza/expensely/internal/auth"
	"github.com/vaughan-dsouza/expensely/internal/config"
	"github.com/vaughan-dsouza/expensely/internal/db"
	"github.com/vaughan-dsouza/expensely/internal/models"
	"github.com/vaughan-dsouza/expensely/internal/store"
	"golang.org/x/term"
)

const defaultDB = "expensely.db"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	roleFlag := fs.String("role", string(models.RoleUser), "Role: user or admin")
	dbURL := fs.String("db", "", "Database URL or SQLite path (default from config, then "+defaultDB+")")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*username) == "" || strings.TrimSpace(*email) == "" {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> -email <email> [-password <password>] [-role user|admin] [-db <url>]")
		fs.PrintDefaults()
		return errors.New("missing required flags: user, email")
	}

	role, ok := models.ParseRole(*roleFlag)
	if !ok {
		return errors.Errorf("unknown role %q", *roleFlag)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return errors.Wrap(err, "failed to read password")
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password cannot be empty")
	}

	cfg, err := config.Read()
	if err != nil {
		return err
	}

	url := *dbURL
	if url == "" {
		url = cfg.Database.URL
	}
	if url == "" {
		url = defaultDB
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, config.DatabaseConfig{
		URL:     url,
		Driver:  config.InferDriver(url),
		MaxOpen: 1,
		MaxIdle: 1,
	})
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer conn.Close()

	if err := db.Migrate(conn, url); err != nil {
		return err
	}

	hash, err := auth.NewHasher(cfg.Auth.BcryptCost).Hash(password)
	if err != nil {
		return err
	}

	u, err := store.New(conn).Users.CreateUser(ctx, models.User{
		Username: *username,
		Email:    *email,
		Password: hash,
		Role:     role,
	})
	if errors.Is(err, store.ErrDuplicateIdentity) {
		return errors.Errorf("user %s or email %s already exists", strings.TrimSpace(*username), store.NormalizeEmail(*email))
	}
	if err != nil {
		return errors.Wrap(err, "failed to create user")
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %s (role %s)\n", u.Username, u.ID, u.Role)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
