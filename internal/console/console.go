// Package console is the interactive shell of a running node.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/saimonmoore/experiment-autobee/internal/models"
	"github.com/saimonmoore/experiment-autobee/internal/swarm"
	"github.com/saimonmoore/experiment-autobee/internal/view"
)

//go:generate moq -out node_mock.go . Node

// Node is the running node as seen by the console
type Node interface {
	Signup(ctx context.Context, u *models.User) error
	Login(ctx context.Context, partial *models.User) (*models.User, error)
	AddPrivateRecord(ctx context.Context, r *models.Record) error
	AddPublicRecord(ctx context.Context, r *models.Record) error
	LoggedInUser() *models.User
	OutOfBandSyncKey() string
	List(ctx context.Context, namespace, prefix string) ([]*view.Node, error)
	Stats() swarm.Stats
}

const prompt = "mneme> "

var errQuit = errors.New("quit")

// Console reads commands from io and runs them against node
type Console struct {
	node Node
	io   IO
}

// New создает консоль
func New(node Node, tty IO) *Console {
	return &Console{node: node, io: tty}
}

// Run reads commands until quit, end of input or ctx is done
func (c *Console) Run(ctx context.Context) error {
	c.io.Println("Type 'help' for commands.")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := c.io.ReadInput(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		if err := c.Exec(ctx, args[0], args[1:]); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			c.io.Printf("Error: %v\n", err)
		}
	}
}

// Exec runs one command
func (c *Console) Exec(ctx context.Context, command string, args []string) error {
	switch command {
	case "help":
		c.printUsage()
		return nil
	case "signup":
		return c.signup(ctx, args)
	case "login":
		return c.login(ctx, args)
	case "add-private":
		return c.addRecord(ctx, args, c.node.AddPrivateRecord)
	case "add-public":
		return c.addRecord(ctx, args, c.node.AddPublicRecord)
	case "whoami":
		return c.whoami()
	case "sync-key":
		c.io.Println(c.node.OutOfBandSyncKey())
		return nil
	case "get":
		return c.get(ctx, args)
	case "peers":
		s := c.node.Stats()
		c.io.Printf("connections: %d, connecting: %d, peers: %d\n", s.Connections, s.Connecting, s.Peers)
		return nil
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, type 'help'", command)
	}
}

func (c *Console) signup(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: signup <email> <username>")
	}

	u := models.NewUser(args[0], args[1])
	if err := c.node.Signup(ctx, u); err != nil {
		return err
	}

	c.io.Printf("Signed up %s (%s)\n", u.Username, u.Key())
	return nil
}

func (c *Console) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: login <email>")
	}

	u, err := c.node.Login(ctx, models.NewUser(args[0], ""))
	if err != nil {
		return err
	}
	if u == nil {
		c.io.Println("User not found")
		return nil
	}

	c.io.Printf("Logged in as %s\n", u.Username)
	return nil
}

func (c *Console) addRecord(ctx context.Context, args []string, add func(context.Context, *models.Record) error) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: add-private|add-public <url>")
	}

	r := models.NewRecord(args[0])
	if err := add(ctx, r); err != nil {
		return err
	}

	c.io.Printf("Added %s\n", r.Key())
	return nil
}

func (c *Console) whoami() error {
	u := c.node.LoggedInUser()
	if u == nil {
		c.io.Println("Not logged in")
		return nil
	}

	c.io.Printf("%s <%s>\n", u.Username, u.Email)
	for _, w := range u.Writers() {
		c.io.Printf("  writer %s\n", w)
	}

	return nil
}

func (c *Console) get(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: get <private|public> [prefix]")
	}

	prefix := ""
	if len(args) == 2 {
		prefix = args[1]
	}

	nodes, err := c.node.List(ctx, args[0], prefix)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		c.io.Println("No entries")
		return nil
	}

	for _, n := range nodes {
		c.io.Printf("%s %s\n", n.Key, string(n.Value))
	}

	return nil
}

func (c *Console) printUsage() {
	c.io.Println("Commands:")
	c.io.Println("  signup <email> <username>   Create the user on this device")
	c.io.Println("  login <email>               Log in as an existing user")
	c.io.Println("  add-private <url>           Save a private record")
	c.io.Println("  add-public <url>            Save a public record")
	c.io.Println("  whoami                      Show the logged in user")
	c.io.Println("  sync-key                    Show the key to pair another device")
	c.io.Println("  get <private|public> [pfx]  List view entries")
	c.io.Println("  peers                       Show connection counts")
	c.io.Println("  quit                        Exit")
}
