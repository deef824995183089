// Package server exposes the interpreter as an HTTP playground.
package server

import (
	"bytes"
	"context"
	sterrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/oarkflow/json"
	"github.com/oarkflow/log"
	"github.com/oarkflow/xid"

	"github.com/oarkflow/spl/interpreter"
)

const maxExecutions = 100

type Config struct {
	Version      string
	CacheSize    int64
	MaxBodyBytes int
	Timeout      time.Duration
	Runtime      interpreter.RuntimeConfig
	Logger       *log.Logger
}

type Server struct {
	app        *fiber.App
	programs   *ristretto.Cache
	logger     *log.Logger
	mu         sync.Mutex
	executions []ExecutionSummary
	config     Config
}

type ExecutionSummary struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"startTime"`
	Duration  float64   `json:"duration"`
	Error     string    `json:"error,omitempty"`
}

type RunRequest struct {
	Source string `json:"source"`
	Input  string `json:"input"`
}

type RunResponse struct {
	ID            string  `json:"id"`
	Output        string  `json:"output"`
	Result        string  `json:"result,omitempty"`
	Error         string  `json:"error,omitempty"`
	Kind          string  `json:"kind,omitempty"`
	Position      string  `json:"position,omitempty"`
	Exited        bool    `json:"exited"`
	ExecutionTime float64 `json:"executionTime"`
}

type ValidationResponse struct {
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors"`
	Functions []string `json:"functions"`
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Runtime.MaxCallDepth <= 0 {
		cfg.Runtime = interpreter.DefaultRuntimeConfig()
	}
	cfg.Runtime.AllowNetwork = false
	if cfg.Logger == nil {
		cfg.Logger = &log.DefaultLogger
	}
	programs, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.CacheSize * 10,
		MaxCost:     cfg.CacheSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	fiberCfg := fiber.Config{
		JSONEncoder: func(v interface{}) ([]byte, error) {
			return json.Marshal(v)
		},
		JSONDecoder: func(data []byte, v interface{}) error {
			return json.Unmarshal(data, v)
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	}
	if cfg.MaxBodyBytes > 0 {
		fiberCfg.BodyLimit = cfg.MaxBodyBytes
	}

	server := &Server{
		app:        fiber.New(fiberCfg),
		programs:   programs,
		logger:     cfg.Logger,
		executions: []ExecutionSummary{},
		config:     cfg,
	}
	server.setupRoutes()
	return server, nil
}

func (s *Server) setupRoutes() {
	s.app.Use(cors.New())
	s.app.Use(logger.New())

	s.app.Get("/api/health", s.healthHandler)
	s.app.Post("/api/run", s.runHandler)
	s.app.Post("/api/validate", s.validateHandler)
	s.app.Get("/api/executions", s.getExecutionsHandler)
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) healthHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"version":   s.config.Version,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// program returns the parsed form of source, reusing earlier parses of identical text.
func (s *Server) program(source string) (*interpreter.Program, error) {
	if cached, ok := s.programs.Get(source); ok {
		return cached.(*interpreter.Program), nil
	}
	program, err := interpreter.LoadSource("main.spl", source, nil)
	if err != nil {
		return nil, err
	}
	s.programs.Set(source, program, 1)
	return program, nil
}

func (s *Server) runHandler(c *fiber.Ctx) error {
	var req RunRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Source) == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Source cannot be empty"})
	}

	id := xid.New().String()
	start := time.Now()
	resp := RunResponse{ID: id}

	var out bytes.Buffer
	result, interp, err := s.execute(req, &out)
	resp.Output = out.String()
	resp.ExecutionTime = time.Since(start).Seconds()
	if interp != nil {
		resp.Exited = interp.Exited()
	}
	if result != nil {
		resp.Result = result.String()
	}
	if err != nil {
		describe(&resp, err)
	}
	s.record(id, start, err)

	event := s.logger.Info()
	if err != nil {
		event = s.logger.Warn().Err(err)
	}
	event.Str("id", id).Dur("duration", time.Since(start)).Msg("script executed")

	if err != nil {
		return c.Status(400).JSON(resp)
	}
	return c.JSON(resp)
}

func (s *Server) execute(req RunRequest, out *bytes.Buffer) (*interpreter.Cell, *interpreter.Interpreter, error) {
	program, err := s.program(req.Source)
	if err != nil {
		return nil, nil, err
	}
	interp, err := interpreter.NewInterpreter(program,
		interpreter.WithRuntimeConfig(s.config.Runtime),
		interpreter.WithLogger(s.logger),
		interpreter.WithStdout(out),
		interpreter.WithStdin(strings.NewReader(req.Input)),
	)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()
	result, err := interp.Run(ctx)
	return result, interp, err
}

func describe(resp *RunResponse, err error) {
	resp.Error = err.Error()
	var rerr *interpreter.RuntimeError
	var serr *interpreter.SyntaxError
	switch {
	case sterrors.As(err, &rerr):
		resp.Kind = string(rerr.Kind)
		if rerr.Pos.Line != 0 {
			resp.Position = rerr.Pos.String()
		}
	case sterrors.As(err, &serr):
		resp.Kind = "Syntax"
		resp.Position = serr.Pos.String()
	}
}

func (s *Server) record(id string, start time.Time, err error) {
	summary := ExecutionSummary{
		ID:        id,
		Status:    "completed",
		StartTime: start,
		Duration:  time.Since(start).Seconds(),
	}
	if err != nil {
		summary.Status = "failed"
		summary.Error = err.Error()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executions = append(s.executions, summary)
	if len(s.executions) > maxExecutions {
		s.executions = s.executions[len(s.executions)-maxExecutions:]
	}
}

func (s *Server) validateHandler(c *fiber.Ctx) error {
	var req RunRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	errors := []string{}
	functions := []string{}
	program, err := s.program(req.Source)
	if err != nil {
		errors = append(errors, err.Error())
	} else {
		for _, fn := range program.Functions {
			functions = append(functions, fn.Name)
		}
		if _, err := interpreter.NewInterpreter(program, interpreter.WithLogger(s.logger)); err != nil {
			errors = append(errors, err.Error())
		}
	}

	return c.JSON(ValidationResponse{
		Valid:     len(errors) == 0,
		Errors:    errors,
		Functions: functions,
	})
}

func (s *Server) getExecutionsHandler(c *fiber.Ctx) error {
	s.mu.Lock()
	executions := make([]ExecutionSummary, len(s.executions))
	copy(executions, s.executions)
	s.mu.Unlock()
	return c.JSON(executions)
}

func (s *Server) Start(addr string) error {
	s.logger.Info().Str("address", addr).Msg("starting playground server")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	s.logger.Info().Msg("shutting down playground server")
	s.programs.Close()
	return s.app.Shutdown()
}
