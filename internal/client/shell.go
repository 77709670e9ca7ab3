package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/taskly/internal/models"
)

const helpText = `Available commands:
  signup [email]     create an account and log in
  login [email]      log in
  logout             forget the stored token
  list               show your tasks
  add [title]        add a task
  done <n|id>        mark a task completed
  undone <n|id>      mark a task not completed
  edit <n|id>        change title and description
  delete <n|id>      remove a task
  help               show this help
  exit               leave the shell
Tasks may be referred to by their number in the last list or by ID.`

// Shell is the interactive command loop.
type Shell struct {
	api     *API
	session *Session
	prompt  *Prompter
	out     io.Writer

	// last holds the most recent listing, for numeric task references.
	last []models.Task
}

// NewShell returns a shell that authenticates with the stored session token.
func NewShell(api *API, session *Session, prompt *Prompter, out io.Writer) *Shell {
	api.Token = session.Token
	return &Shell{api: api, session: session, prompt: prompt, out: out}
}

// Run reads commands until exit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	if s.session.LoggedIn() {
		fmt.Fprintf(s.out, "Logged in as %s\n", s.session.Email)
	} else {
		fmt.Fprintln(s.out, "Not logged in. Use 'signup' or 'login'.")
	}

	for {
		fmt.Fprint(s.out, "taskly> ")
		line, err := s.prompt.ReadLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.Exec(ctx, strings.Fields(line)) {
			return nil
		}
	}
}

// Exec runs one command and reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, args []string) bool {
	if len(args) == 0 {
		return false
	}

	var err error
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "signup", "register":
		err = s.authenticate(ctx, args[1:], s.api.Register, "Account created")
	case "login":
		err = s.authenticate(ctx, args[1:], s.api.Login, "Logged in")
	case "logout":
		s.api.Token = ""
		s.last = nil
		err = s.session.Clear()
		if err == nil {
			fmt.Fprintln(s.out, "Logged out")
		}
	case "list", "ls":
		err = s.list(ctx)
	case "add":
		err = s.add(ctx, args[1:])
	case "done", "undone":
		err = s.withTask(args, func(id string) error {
			completed := args[0] == "done"
			task, err := s.api.UpdateTask(ctx, id, models.TaskUpdate{Completed: &completed})
			if err == nil {
				fmt.Fprintf(s.out, "Updated: %s\n", formatTask(*task))
			}
			return err
		})
	case "edit":
		err = s.withTask(args, func(id string) error { return s.edit(ctx, id) })
	case "delete", "rm":
		err = s.withTask(args, func(id string) error {
			if err := s.api.DeleteTask(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(s.out, "Task deleted")
			return nil
		})
	case "exit", "quit":
		fmt.Fprintln(s.out, "Bye")
		return true
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}

	if err != nil {
		s.report(err)
	}
	return false
}

func (s *Shell) authenticate(ctx context.Context, args []string, call func(context.Context, string, string) (string, error), done string) error {
	email := ""
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = s.prompt.Ask("Email: "); err != nil {
			return err
		}
	}
	password, err := s.prompt.Password("Password: ")
	if err != nil {
		return err
	}

	token, err := call(ctx, email, password)
	if err != nil {
		return err
	}

	s.api.Token = token
	s.session.Email, s.session.Token = email, token
	s.last = nil
	if err := s.session.Save(); err != nil {
		return fmt.Errorf("logged in, but the session could not be saved: %w", err)
	}
	fmt.Fprintf(s.out, "%s. Logged in as %s\n", done, email)
	return nil
}

func (s *Shell) list(ctx context.Context) error {
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		return err
	}
	s.last = tasks
	if len(tasks) == 0 {
		fmt.Fprintln(s.out, "No tasks yet. Use 'add' to create one.")
		return nil
	}
	for i, t := range tasks {
		fmt.Fprintf(s.out, "%2d. %s\n", i+1, formatTask(t))
		if t.Description != "" {
			fmt.Fprintf(s.out, "    %s\n", t.Description)
		}
	}
	return nil
}

func (s *Shell) add(ctx context.Context, args []string) error {
	title := strings.Join(args, " ")
	description := ""
	if title == "" {
		var err error
		if title, err = s.prompt.Ask("Title: "); err != nil {
			return err
		}
		if description, err = s.prompt.Ask("Description (optional): "); err != nil {
			return err
		}
	}
	task, err := s.api.CreateTask(ctx, title, description)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Added: %s\n", formatTask(*task))
	return nil
}

func (s *Shell) edit(ctx context.Context, id string) error {
	title, err := s.prompt.Ask("New title (empty keeps current): ")
	if err != nil {
		return err
	}
	description, err := s.prompt.Ask("New description (empty keeps current, '-' clears): ")
	if err != nil {
		return err
	}

	var upd models.TaskUpdate
	if title != "" {
		upd.Title = &title
	}
	switch description {
	case "":
	case "-":
		empty := ""
		upd.Description = &empty
	default:
		upd.Description = &description
	}
	if upd.Title == nil && upd.Description == nil {
		fmt.Fprintln(s.out, "Nothing to change")
		return nil
	}

	task, err := s.api.UpdateTask(ctx, id, upd)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Updated: %s\n", formatTask(*task))
	return nil
}

// withTask resolves args[1] to a task ID and calls fn with it.
func (s *Shell) withTask(args []string, fn func(id string) error) error {
	if len(args) < 2 {
		fmt.Fprintf(s.out, "Usage: %s <n|id>\n", args[0])
		return nil
	}
	return fn(s.resolve(args[1]))
}

// resolve maps a 1-based position in the last listing to its task ID.
// Anything else is taken as an ID.
func (s *Shell) resolve(ref string) string {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(s.last) {
		return s.last[n-1].ID
	}
	return ref
}

func (s *Shell) report(err error) {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrNotLoggedIn):
		fmt.Fprintln(s.out, "Not logged in. Use 'signup' or 'login'.")
	case errors.As(err, &apiErr) && apiErr.Category == "unauthenticated":
		s.api.Token = ""
		_ = s.session.Clear()
		fmt.Fprintln(s.out, "Session expired. Please log in again.")
	case errors.As(err, &apiErr):
		fmt.Fprintf(s.out, "Error: %s\n", apiErr.Message)
	default:
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

func formatTask(t models.Task) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	return fmt.Sprintf("[%s] %s  (%s)", mark, t.Title, t.ID)
}
