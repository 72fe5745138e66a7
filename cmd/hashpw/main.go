package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

const (
	// Minimum accepted password length
	minPasswordLength = 6
	// Environment variable the server reads the hash from
	hashEnvVar = "AUTH_PASSWORD_HASH"
)

var (
	errPasswordMismatch = errors.New("passwords do not match")
	errPasswordTooShort = fmt.Errorf("password must be at least %d characters", minPasswordLength)
)

// cli holds the process streams so commands can be driven from tests.
type cli struct {
	stdin    *bufio.Reader
	stdout   io.Writer
	stderr   io.Writer
	terminal bool
	getenv   func(string) string

	// readSecret reads one password. On a terminal it does not echo.
	readSecret func(prompt string) ([]byte, error)
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	c := newCLI()
	os.Exit(c.run(os.Args[1]))
}

func newCLI() *cli {
	c := &cli{
		stdin:    bufio.NewReader(os.Stdin),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		terminal: term.IsTerminal(int(os.Stdin.Fd())),
		getenv:   os.Getenv,
	}
	if c.terminal {
		c.readSecret = func(prompt string) ([]byte, error) {
			fmt.Fprint(c.stderr, prompt)
			defer fmt.Fprintln(c.stderr)
			return term.ReadPassword(int(os.Stdin.Fd()))
		}
	} else {
		c.readSecret = c.readLine
	}
	return c
}

// readLine reads one line from stdin for piped input.
func (c *cli) readLine(_ string) ([]byte, error) {
	line, err := c.stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func (c *cli) run(command string) int {
	switch command {
	case "hash":
		return c.hashPassword()
	case "verify":
		return c.verifyPassword()
	case "status":
		return c.showStatus()
	case "help", "-h", "--help":
		printUsage(c.stdout)
		return 0
	default:
		// Sanitize command input using allowlist to break taint chain
		fmt.Fprintf(c.stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage(c.stderr)
		return 1
	}
}

// sanitizeCommand returns a safe representation of a command string for display.
// It uses an allowlist approach, replacing any character that is not alphanumeric,
// a hyphen, or an underscore with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Media Converter Password Tool")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: hashpw <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  hash    - Hash a new password for "+hashEnvVar)
	fmt.Fprintln(w, "  verify  - Check a password against the configured hash")
	fmt.Fprintln(w, "  status  - Check if a password hash is configured")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "The password is read from the terminal, or one line from stdin when piped.")
	fmt.Fprintln(w, "verify and status read "+hashEnvVar+" from the environment or .env.")
}

// validatePassword checks the confirmation and the minimum length.
func validatePassword(password, confirm []byte) error {
	if !bytes.Equal(password, confirm) {
		return errPasswordMismatch
	}
	if len(password) < minPasswordLength {
		return errPasswordTooShort
	}
	return nil
}

func (c *cli) hashPassword() int {
	password, err := c.readSecret("New Password: ")
	if err != nil {
		fmt.Fprintf(c.stderr, "Error reading password: %v\n", err)
		return 1
	}

	// Piped input has nobody to confirm with
	confirm := password
	if c.terminal {
		confirm, err = c.readSecret("Confirm Password: ")
		if err != nil {
			fmt.Fprintf(c.stderr, "Error reading password: %v\n", err)
			return 1
		}
	}

	if err := validatePassword(password, confirm); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}

	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: Failed to hash password: %v\n", err)
		return 1
	}

	// Single quotes stop .env loaders from expanding the $ segments.
	fmt.Fprintf(c.stdout, "%s='%s'\n", hashEnvVar, hash)
	return 0
}

// loadHash returns the configured hash, loading .env first if present.
func (c *cli) loadHash() (string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(c.stderr, "Warning: failed to load .env: %v\n", err)
	}

	hash := strings.TrimSpace(c.getenv(hashEnvVar))
	if hash == "" {
		return "", fmt.Errorf("%s is not set", hashEnvVar)
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return "", fmt.Errorf("%s is not a bcrypt hash: %w", hashEnvVar, err)
	}
	return hash, nil
}

func (c *cli) verifyPassword() int {
	hash, err := c.loadHash()
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}

	password, err := c.readSecret("Password: ")
	if err != nil {
		fmt.Fprintf(c.stderr, "Error reading password: %v\n", err)
		return 1
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), password); err != nil {
		fmt.Fprintln(c.stdout, "Password does not match.")
		return 1
	}

	fmt.Fprintln(c.stdout, "Password matches.")
	return 0
}

func (c *cli) showStatus() int {
	hash, err := c.loadHash()
	if err != nil {
		fmt.Fprintf(c.stdout, "Status: Authentication disabled (%v)\n", err)
		return 0
	}

	cost, _ := bcrypt.Cost([]byte(hash))
	fmt.Fprintf(c.stdout, "Status: Authentication enabled (bcrypt cost %d)\n", cost)
	return 0
}
