package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/oarkflow/json"
	"github.com/oarkflow/log"
	"github.com/urfave/cli/v2"

	"github.com/oarkflow/spl/interpreter"
	"github.com/oarkflow/spl/pkg/config"
	"github.com/oarkflow/spl/pkg/server"
	"github.com/oarkflow/spl/pkg/source"
)

const version = "0.1.0"

func main() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to a configuration file (YAML, JSON, or BCL)",
	}
	app := &cli.App{
		Name:    "spl",
		Usage:   "Run and inspect SPL scripts",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Run a script starting at its entry function",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Log run duration and warnings",
					},
				},
				Action: runScript,
			},
			{
				Name:      "tokens",
				Usage:     "Print the tokens of a file as JSON",
				ArgsUsage: "<file>",
				Action:    dumpTokens,
			},
			{
				Name:      "ast",
				Usage:     "Print the functions and statements of a program as JSON",
				ArgsUsage: "<file>",
				Action:    dumpAST,
			},
			{
				Name:  "serve",
				Usage: "Start the HTTP playground",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "address",
						Usage: "Address to listen on (overrides the configuration)",
					},
				},
				Action: startServer,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fail(err.Error())
	}
}

func fail(msg string) {
	color.New(color.FgRed).Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func fileArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("%s expects exactly one file argument", c.Command.Name)
	}
	return c.Args().First(), nil
}

func runScript(c *cli.Context) error {
	file, err := fileArg(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	rt := cfg.RuntimeConfig()
	if c.Bool("trace") {
		rt.LogExecution = true
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	program, err := interpreter.LoadUnits(file, source.FileReader{})
	if err != nil {
		fail(err.Error())
	}
	interp, err := interpreter.NewInterpreter(program, interpreter.WithRuntimeConfig(rt))
	if err != nil {
		fail(program.Diagnostic(err))
	}

	// The evaluator recurses on the host stack; keep it off the main goroutine.
	done := make(chan error, 1)
	go func() {
		_, err := interp.Run(ctx)
		done <- err
	}()
	if err := <-done; err != nil {
		fail(program.Diagnostic(err))
	}
	return nil
}

type tokenDump struct {
	Kind     string `json:"kind"`
	Text     string `json:"text,omitempty"`
	Position string `json:"position"`
}

func dumpTokens(c *cli.Context) error {
	file, err := fileArg(c)
	if err != nil {
		return err
	}
	text, err := source.FileReader{}.Read(file)
	if err != nil {
		return err
	}
	tokens, err := interpreter.Tokenize(text, 0)
	if err != nil {
		var serr *interpreter.SyntaxError
		if errors.As(err, &serr) {
			serr.File = file
		}
		fail(err.Error())
	}
	dump := make([]tokenDump, 0, len(tokens))
	for _, tok := range tokens {
		dump = append(dump, tokenDump{Kind: tok.Kind.String(), Text: tok.String(), Position: tok.Pos.String()})
	}
	return printJSON(dump)
}

type functionDump struct {
	Name       string   `json:"name"`
	Unit       string   `json:"unit"`
	Params     []string `json:"params"`
	Statements []string `json:"statements"`
}

type programDump struct {
	Units     []string       `json:"units"`
	Functions []functionDump `json:"functions"`
}

func dumpAST(c *cli.Context) error {
	file, err := fileArg(c)
	if err != nil {
		return err
	}
	program, err := interpreter.LoadUnits(file, source.FileReader{})
	if err != nil {
		fail(err.Error())
	}
	dump := programDump{Units: program.Units, Functions: []functionDump{}}
	for _, fn := range program.Functions {
		entry := functionDump{
			Name:       fn.Name,
			Unit:       program.UnitName(fn.Pos),
			Params:     fn.Params,
			Statements: make([]string, 0, len(fn.Body)),
		}
		if entry.Params == nil {
			entry.Params = []string{}
		}
		for _, stmt := range fn.Body {
			entry.Statements = append(entry.Statements, stmt.String())
		}
		dump.Functions = append(dump.Functions, entry)
	}
	return printJSON(dump)
}

func printJSON(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(raw))
	return err
}

func startServer(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	addr := cfg.Server.Address
	if c.String("address") != "" {
		addr = c.String("address")
	}

	srv, err := server.NewServer(server.Config{
		Version:      version,
		CacheSize:    cfg.Server.CacheSize,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Timeout:      time.Duration(cfg.Server.TimeoutMs) * time.Millisecond,
		Runtime:      cfg.RuntimeConfig(),
		Logger:       &log.DefaultLogger,
	})
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(addr)
	}()

	select {
	case err := <-serverErr:
		return err
	case sig := <-sigChan:
		log.DefaultLogger.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
		return srv.Shutdown()
	}
}
