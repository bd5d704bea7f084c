package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"graphtools/internal/config"
	"graphtools/internal/domain"
	"graphtools/internal/hub"
	"graphtools/internal/repository"
	"graphtools/internal/repository/sqlite"
	"graphtools/internal/service"
)

// globalOptions apply to every subcommand and override the config file
type globalOptions struct {
	Config     string `long:"config" description:"Config file (default: search $GRAPHTOOLS_CONFIG, ./graphtools.yaml, XDG and /etc)"`
	LogLevel   string `long:"log-level" description:"Log level (panic, fatal, error, warn, info, debug, trace)"`
	LogFormat  string `long:"log-format" choice:"text" choice:"json" description:"Log format"`
	Quiet      bool   `short:"q" long:"quiet" description:"Do not log individual diagnostics"`
	Catalog    bool   `long:"catalog" description:"Record this run in the run catalog"`
	CatalogDB  string `long:"catalog-db" description:"Run catalog database path"`
	IDBits     uint   `long:"id-bits" description:"Node id width in bits (32 or 64)"`
	WeightBits uint   `long:"weight-bits" description:"Weight width in bits (32 or 64)"`
	Events     string `long:"events" description:"Stream run events as JSON lines to this file (- for stderr)"`
}

// app carries the state shared by all subcommands
type app struct {
	opts   globalOptions
	stdout io.Writer

	ctx        context.Context
	cfg        *config.Config
	configPath string
	logger     *logrus.Logger
	repo       repository.Repository
	svc        *service.Service
	events     *hub.Hub
	eventsOut  io.Closer
}

// catalogCommand is implemented by commands that always need the catalog
type catalogCommand interface {
	needsCatalog() bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// run parses args, executes the selected subcommand and returns the
// process exit code
func run(ctx context.Context, args []string, stdout io.Writer) int {
	a := &app{ctx: ctx, stdout: stdout}
	parser := newParser(a)

	_, err := parser.ParseArgs(args)
	if err == nil {
		return 0
	}

	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) {
		if flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, flagsErr.Message)
			return 0
		}
		fmt.Fprintln(os.Stderr, flagsErr.Message)
		return domain.OutcomeUsage.ExitCode()
	}

	outcome := domain.Classify(err)
	if a.logger != nil {
		a.logger.WithField("outcome", outcome).Error(err)
	} else {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return outcome.ExitCode()
}

func newParser(a *app) *flags.Parser {
	parser := flags.NewParser(&a.opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "graphtools"
	parser.LongDescription = "Validate and convert graph files in METIS and related formats."

	for _, c := range commands(a) {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			panic(err)
		}
	}

	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if cmd == nil {
			return nil
		}
		forceCatalog := false
		if cc, ok := cmd.(catalogCommand); ok {
			forceCatalog = cc.needsCatalog()
		}
		defer a.close()
		if err := a.setup(forceCatalog); err != nil {
			return err
		}
		return cmd.Execute(args)
	}
	return parser
}

// setup loads the configuration, applies the global flags and builds the
// service
func (a *app) setup(forceCatalog bool) error {
	cfg, path, err := config.Load(a.opts.Config)
	if err != nil {
		return err
	}
	a.cfg, a.configPath = cfg, path

	if a.opts.LogLevel != "" {
		cfg.Log.Level = a.opts.LogLevel
	}
	if a.opts.LogFormat != "" {
		cfg.Log.Format = config.ParseLogFormat(a.opts.LogFormat)
	}
	if a.opts.Quiet {
		cfg.Check.Quiet = true
	}
	if a.opts.Catalog || forceCatalog {
		cfg.Catalog.Enabled = true
	}
	if a.opts.CatalogDB != "" {
		cfg.Catalog.Path = a.opts.CatalogDB
	}
	if a.opts.IDBits != 0 {
		cfg.Limits.IDBits = a.opts.IDBits
	}
	if a.opts.WeightBits != 0 {
		cfg.Limits.WeightBits = a.opts.WeightBits
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if a.logger, err = cfg.NewLogger(); err != nil {
		return err
	}
	if path != "" {
		a.logger.WithField("config", path).Debug("config loaded")
	}

	if cfg.Catalog.Enabled {
		repo, err := sqlite.New(cfg.Catalog.Path)
		if err != nil {
			return fmt.Errorf("open run catalog: %w", err)
		}
		a.repo = repo
	}

	bus := service.NewEventBus()
	if a.opts.Events != "" {
		if err := a.streamEvents(bus); err != nil {
			return err
		}
	}

	a.svc = service.New(cfg, a.logger, a.repo, bus)
	return nil
}

// streamEvents attaches the --events destination to the bus through a hub
func (a *app) streamEvents(bus *service.EventBus) error {
	var w io.Writer = os.Stderr
	if a.opts.Events != "-" {
		f, err := os.Create(a.opts.Events)
		if err != nil {
			return fmt.Errorf("create %s: %w: %v", a.opts.Events, domain.ErrIO, err)
		}
		w, a.eventsOut = f, f
	}

	a.events = hub.New(a.logger)
	go a.events.Run()
	a.events.Attach(w)
	bus.SubscribeFunc(func(e service.Event) {
		a.events.Broadcast(e)
	})
	return nil
}

func (a *app) close() {
	if a.events != nil {
		a.events.Close()
	}
	if a.eventsOut != nil {
		if err := a.eventsOut.Close(); err != nil {
			a.logger.WithError(err).Warn("failed to close event stream")
		}
	}
	if a.repo == nil {
		return
	}
	if err := a.repo.Close(); err != nil {
		a.logger.WithError(err).Warn("failed to close run catalog")
	}
}

// printResult reports the file a conversion wrote
func (a *app) printResult(res *service.Result) {
	fmt.Fprintf(a.stdout, "%s: wrote %s (%s)\n", res.Tool, res.Output, res.Header)
}
