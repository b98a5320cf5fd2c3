package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"todod/internal/database"
	"todod/internal/gate"
	"todod/internal/identity"
	"todod/internal/model"
	"todod/internal/tderror"
	"todod/internal/todo"
)

// A console drives the credential flow and the todo list against a local
// database. Both flows follow the authentication gate: anonymous shows the
// credential prompts, authenticated shows the list.
type console struct {
	provider *identity.Provider
	gate     *gate.Gate
	manager  *todo.Manager
	log      logrus.FieldLogger

	// Credential fields are retained across failed attempts.
	signup   bool
	email    string
	password string
	errmsg   string
}

// Time for a fire-and-forget mutation to land back as a snapshot.
const settle = 100 * time.Millisecond

func runConsole(dbpath string) error {
	logger := NewLogger()

	db, err := database.StormOpen(dbpath)
	if err != nil {
		return errors.Wrap(err, "could not open database")
	}
	defer db.Close()

	live := database.NewLive(db, logger)
	provider := identity.NewProvider(identity.NewService(live))

	c := &console{
		provider: provider,
		gate:     gate.New(provider),
		manager:  todo.NewManager(live, logger),
		log:      logger,
	}
	defer c.manager.Close()

	for state := range c.gate.Changes() {
		var again bool

		switch state.Phase {
		case gate.Anonymous:
			c.manager.SetIdentity(nil)
			again = c.credentials()
		case gate.Authenticated:
			c.manager.SetIdentity(state.Identity)
			again = c.list(state.Identity)
		default:
			again = true
		}

		if !again {
			c.gate.Close()
			for range c.gate.Changes() {
				// Drain until the gate shuts down.
			}
			return nil
		}
	}
	return nil
}

///// Credential flow
////
//

// credentials prompts for an email and a password until a sign-in or sign-up
// succeeds. It returns false when the user quits.
func (c *console) credentials() bool {
	for {
		mode := "login"
		if c.signup {
			mode = "signup"
		}

		fmt.Printf("\n--- %s (:login / :signup to switch, :quit to leave) ---\n", mode)
		if c.errmsg != "" {
			fmt.Println("! " + c.errmsg)
		}

		prompt := "email: "
		if c.email != "" {
			prompt = fmt.Sprintf("email [%s]: ", c.email)
		}
		input, err := readline.Line(prompt)
		if err != nil {
			return false
		}

		switch strings.TrimSpace(input) {
		case ":quit":
			return false
		case ":login":
			c.signup = false
			c.errmsg = ""
			continue
		case ":signup":
			c.signup = true
			c.errmsg = ""
			continue
		case "":
			// Keep the retained email.
		default:
			c.email = strings.TrimSpace(input)
		}

		password, err := readline.Password("password: ")
		if err != nil {
			return false
		}
		if len(password) > 0 {
			c.password = string(password)
		}

		// Same guard the submit button applies before any provider call.
		if c.email == "" || c.password == "" {
			c.errmsg = tderror.Message(tderror.KindMissingFields)
			continue
		}
		if len(c.password) < identity.MinPasswordLength {
			c.errmsg = tderror.Message(tderror.KindWeakPassword)
			continue
		}

		if c.signup {
			_, err = c.provider.SignUp(c.email, c.password)
		} else {
			_, err = c.provider.SignIn(c.email, c.password)
		}
		if err != nil {
			c.log.WithError(err).Warn("credential submit failed")
			c.errmsg = tderror.Message(tderror.KindOf(err))
			continue
		}

		c.errmsg = ""
		c.password = ""
		return true
	}
}

///// List flow
////
//

// list runs the todo command loop for the signed-in user. It returns true on
// logout (back to the credential flow) and false on quit.
func (c *console) list(user *model.User) bool {
	fmt.Printf("\nSigned in as %s\n", user.Email)

	for {
		view := c.render()

		input, err := readline.Line("todo> ")
		if err != nil {
			return false
		}

		command, argument := split(input)
		switch command {
		case "", "ls":
			// Re-render.
		case "add":
			if argument == "" {
				fmt.Println("usage: add TEXT")
				continue
			}
			c.manager.Save(argument)
			time.Sleep(settle)
		case "done":
			if record := pick(view, argument); record != nil {
				c.manager.Toggle(record.ID)
				time.Sleep(settle)
			}
		case "edit":
			record := pick(view, argument)
			if record == nil {
				continue
			}
			text, ok := c.manager.StartEdit(record.ID)
			if !ok {
				continue
			}
			input, err := readline.Line(fmt.Sprintf("edit [%s]: ", text))
			if err != nil {
				return false
			}
			if strings.TrimSpace(input) == "" {
				c.manager.CancelEdit()
				continue
			}
			c.manager.Save(input)
			time.Sleep(settle)
		case "del":
			record := pick(view, argument)
			if record == nil {
				continue
			}
			c.manager.Delete(record.ID, func() bool {
				answer, err := readline.Line(fmt.Sprintf("delete %q? [y/N]: ", record.Text))
				return err == nil && strings.EqualFold(strings.TrimSpace(answer), "y")
			})
			time.Sleep(settle)
		case "filter":
			f := todo.Filter(argument)
			if !f.Valid() {
				fmt.Println("usage: filter all|active|completed")
				continue
			}
			c.manager.SetFilter(f)
		case "logout":
			if err := c.provider.SignOut(); err != nil {
				c.log.WithError(err).Warn("sign out failed")
			}
			return true
		case "quit":
			return false
		default:
			fmt.Println("commands: add TEXT, done N, edit N, del N, filter all|active|completed, logout, quit")
		}
	}
}

// render prints the filtered view and returns it so commands can address
// items by their displayed position.
func (c *console) render() []*model.Todo {
	view := c.manager.View()

	fmt.Printf("\n[%s] %d item(s)\n", c.manager.Filter(), len(view))
	for i, record := range view {
		checkbox := "[ ]"
		if record.Completed {
			checkbox = "[x]"
		}
		fmt.Printf("%3d %s %s\n", i+1, checkbox, record.Text)
	}
	return view
}

func split(input string) (command, argument string) {
	parts := strings.SplitN(strings.TrimSpace(input), " ", 2)
	command = parts[0]
	if len(parts) > 1 {
		argument = strings.TrimSpace(parts[1])
	}
	return command, argument
}

func pick(view []*model.Todo, argument string) *model.Todo {
	n, err := strconv.Atoi(argument)
	if err != nil || n < 1 || n > len(view) {
		fmt.Println("no such item")
		return nil
	}
	return view[n-1]
}
