package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	"github.com/Makepad-fr/tada/internal/app"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group bool // list grouped by pending/done
}

// env holds everything a subcommand needs.
type env struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	opt    Options
	store  *store.Store
	ctrl   *app.Controller
}

// headless is the coordinator view for one-shot subcommands; they report
// through ui.OK/ui.Fail instead of redrawing.
type headless struct{}

func (headless) Display([]model.Todo) {}

// Run parses root flags, dispatches subcommands and returns an exit code
// (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, environ map[string]string) int {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)

	group := fs.BoolP("group", "g", false, "group output by pending/done")
	configPath := fs.StringP("config", "c", "", "explicit config file (TOML)")
	dataDir := fs.String("data-dir", "", "directory holding the todo data")
	backend := fs.String("backend", "", "storage backend: file, sqlite or memory")
	key := fs.String("key", "", "storage slot name")
	theme := fs.String("theme", "", "theme: classic, neon or mono")
	seed := fs.Bool("seed", false, "start an empty list with two sample todos")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	logFile := fs.String("log-file", "", "write logs to this file")
	help := fs.BoolP("help", "h", false, "show help")

	if err := fs.Parse(args); err != nil {
		ui.Fail(stderr, err.Error())
		fmt.Fprintln(stderr)
		PrintHelp(stderr)
		return 2
	}
	rest := fs.Args()
	if *help || len(rest) == 0 {
		PrintHelp(stdout)
		if *help {
			return 0
		}
		return 2
	}

	cmd, a := rest[0], rest[1:]
	if cmd == "help" {
		PrintHelp(stdout)
		return 0
	}

	var ov config.Overrides
	if fs.Changed("data-dir") {
		ov.DataDir = dataDir
	}
	if fs.Changed("backend") {
		ov.Backend = backend
	}
	if fs.Changed("key") {
		ov.Key = key
	}
	if fs.Changed("theme") {
		ov.Theme = theme
	}
	if fs.Changed("seed") {
		ov.Seed = seed
	}
	if fs.Changed("log-level") {
		ov.LogLevel = logLevel
	}
	if fs.Changed("log-file") {
		ov.LogFile = logFile
	}

	cfg, err := config.Load(config.LoadInput{
		ConfigPath: *configPath,
		Env:        environ,
		Overrides:  ov,
	})
	if err != nil {
		ui.Fail(stderr, "config: "+err.Error())
		return 1
	}
	ui.SetTheme(cfg.Theme)

	logger, closeLog, err := newLogger(cfg, stderr, cmd == "ui")
	if err != nil {
		ui.Fail(stderr, "log: "+err.Error())
		return 1
	}
	defer closeLog()
	logger.Debug("config loaded", "backend", cfg.Backend, "data_dir", cfg.DataDir, "sources", strings.Join(cfg.Sources, ","))

	kv, err := openKV(cfg)
	if err != nil {
		ui.Fail(stderr, "open store: "+err.Error())
		return 1
	}
	s := store.New(kv, store.Options{Key: cfg.Key, Seed: cfg.Seed, Logger: logger})
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("close store", "err", err)
		}
	}()

	e := &env{
		ctx:    ctx,
		stdout: stdout,
		stderr: stderr,
		opt:    Options{Group: *group},
		store:  s,
	}
	return e.dispatch(cmd, a)
}

func (e *env) dispatch(cmd string, a []string) int {
	switch cmd {
	case "ls":
		return e.doList()

	case "ui":
		return e.doInteractive()

	case "add":
		if len(a) == 0 {
			ui.Fail(e.stderr, "usage: todo add <text...>")
			return 2
		}
		return e.doAdd(strings.Join(a, " "))

	case "done":
		id, code := e.parseID("done", a, 1)
		if code != 0 {
			return code
		}
		return e.doToggle(id)

	case "rm":
		id, code := e.parseID("rm", a, 1)
		if code != 0 {
			return code
		}
		return e.doRemove(id)

	case "edit":
		if len(a) < 2 {
			ui.Fail(e.stderr, "usage: todo edit <id> <text...>")
			return 2
		}
		id, code := e.parseID("edit", a[:1], 1)
		if code != 0 {
			return code
		}
		return e.doEdit(id, strings.Join(a[1:], " "))
	}

	ui.Fail(e.stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(e.stderr)
	PrintHelp(e.stderr)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - a tiny todo list

Usage:
  todo [flags] <subcommand> [args]

Subcommands:
  add <text...>        Add a new todo (text can be multiple words)
  ls                   List todos
  ui                   Interactive list (a add, e edit, space toggle, d delete)
  done <id>            Toggle completion of todo <id>
  edit <id> <text...>  Replace the text of todo <id>
  rm <id>              Remove todo <id>

Flags:
  -g, --group          Group ls output by pending/done
  -c, --config FILE    Explicit config file (TOML)
      --data-dir DIR   Where todos are stored (default: working directory)
      --backend NAME   file, sqlite or memory
      --key NAME       Storage slot name (default: todos)
      --theme NAME     classic, neon or mono
      --seed           Start an empty list with two sample todos
      --log-level LVL  debug, info, warn or error
      --log-file FILE  Write logs to FILE

Examples:
  todo add "Buy milk"
  todo ls
  todo done 2
  todo edit 2 "Buy oat milk"
  todo rm 3
`)
}

// -------------- subcommand impls ----------------

func (e *env) controller() *app.Controller {
	if e.ctrl == nil {
		e.ctrl = app.New(e.store, headless{})
	}
	return e.ctrl
}

func (e *env) parseID(cmd string, a []string, want int) (int, int) {
	if len(a) != want {
		ui.Fail(e.stderr, fmt.Sprintf("usage: todo %s <id>", cmd))
		return 0, 2
	}
	n, err := strconv.Atoi(a[0])
	if err != nil || n < 1 {
		ui.Fail(e.stderr, cmd+": not a valid id: "+a[0])
		return 0, 2
	}
	return n, 0
}

func (e *env) doList() int {
	fmt.Fprintln(e.stdout, ui.Listing(e.store.Todos(), e.opt.Group))
	return 0
}

func (e *env) doInteractive() int {
	if err := tui.Run(e.ctx, e.store); err != nil {
		ui.Fail(e.stderr, "tui: "+err.Error())
		return 1
	}
	return e.saved("")
}

func (e *env) doAdd(text string) int {
	if model.CleanText(text) == "" {
		ui.Fail(e.stderr, "add: empty text")
		return 2
	}
	if !e.controller().HandleAdd(text) {
		ui.Fail(e.stderr, "add: no todo ids left")
		return 1
	}
	todos := e.store.Todos()
	return e.saved(fmt.Sprintf("added #%d", todos[len(todos)-1].ID))
}

func (e *env) doToggle(id int) int {
	if !e.exists(id) {
		return 0
	}
	e.controller().HandleToggle(id)
	return e.saved("toggled")
}

func (e *env) doRemove(id int) int {
	if !e.exists(id) {
		return 0
	}
	e.controller().HandleDelete(id)
	return e.saved("removed")
}

func (e *env) doEdit(id int, text string) int {
	if model.CleanText(text) == "" {
		ui.Fail(e.stderr, "edit: empty text")
		return 2
	}
	if !e.exists(id) {
		return 0
	}
	e.controller().HandleEdit(id, text)
	return e.saved("edited")
}

// exists reports whether id is present; unknown ids are a silent no-op for
// the store, so the user only gets a hint.
func (e *env) exists(id int) bool {
	if e.store.Has(id) {
		return true
	}
	ui.Hint(e.stderr, fmt.Sprintf("no todo with id %d; run `todo ls` to see ids", id))
	return false
}

func (e *env) saved(msg string) int {
	if err := e.store.Err(); err != nil {
		ui.Fail(e.stderr, "save: "+err.Error())
		return 1
	}
	if msg != "" {
		ui.OK(e.stdout, msg)
	}
	return 0
}

func newLogger(cfg config.Config, stderr io.Writer, interactive bool) (*log.Logger, func(), error) {
	lvl, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if cfg.LogFile != "" {
		l, c, err := logging.NewFile(cfg.LogFile, lvl)
		if err != nil {
			return nil, nil, err
		}
		return l, func() { c.Close() }, nil
	}
	if interactive {
		// stderr would tear through the alt screen.
		return logging.Discard(), func() {}, nil
	}
	return logging.New(stderr, lvl), func() {}, nil
}
