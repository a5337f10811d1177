// Package api implements the REST API for evaluating expressions and
// browsing the evaluation history.
package api

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/calc/pkg/expr"
	"github.com/lemonberrylabs/calc/pkg/session"
	"github.com/lemonberrylabs/calc/pkg/store"
)

// MaxBatchSize bounds the number of expressions in one batch request.
const MaxBatchSize = 1000

// Server is the HTTP API server.
type Server struct {
	app       *fiber.App
	store     *store.Store
	logger    *slog.Logger
	precision int
}

// Options configures a Server.
type Options struct {
	Logger    *slog.Logger
	Precision int
}

// New creates a new API server.
func New(s *store.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	srv := &Server{
		store:     s,
		logger:    opts.Logger,
		precision: opts.Precision,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	app.Use(srv.logRequests)

	app.Get("/healthz", srv.health)

	app.Post("/v1/evaluate", srv.evaluate)
	app.Post("/v1/evaluate\\:batch", srv.evaluateBatch)
	app.Post("/v1/tokenize", srv.tokenize)

	app.Get("/v1/evaluations", srv.listEvaluations)
	app.Get("/v1/evaluations/:id", srv.getEvaluation)
	app.Delete("/v1/evaluations", srv.clearEvaluations)
	app.Get("/v1/stats", srv.stats)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("http request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start))
	return err
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// --- Evaluation Handlers ---

type evaluateRequest struct {
	Expression string `json:"expression"`
}

type batchRequest struct {
	Expressions []string `json:"expressions"`
}

func (s *Server) evaluate(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}
	if req.Expression == "" {
		return errorJSON(c, 400, "INVALID_ARGUMENT", "expression is required")
	}

	ev := s.run(req.Expression)
	if ev.Error != nil {
		return c.Status(422).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    422,
				"message": ev.Error.Message,
				"status":  statusForKind(ev.Error.Kind),
				"kind":    ev.Error.Kind,
				"pos":     ev.Error.Pos,
				"id":      ev.ID,
			},
		})
	}
	return c.JSON(s.evaluationToJSON(ev))
}

func (s *Server) evaluateBatch(c *fiber.Ctx) error {
	var req batchRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}
	if len(req.Expressions) > MaxBatchSize {
		return errorJSON(c, 400, "INVALID_ARGUMENT",
			fmt.Sprintf("batch exceeds maximum size of %d expressions", MaxBatchSize))
	}

	items := make([]fiber.Map, len(req.Expressions))
	for i, line := range req.Expressions {
		items[i] = s.evaluationToJSON(s.run(line))
	}
	return c.JSON(fiber.Map{"evaluations": items})
}

func (s *Server) tokenize(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}

	tokens := expr.Tokenize(req.Expression)
	items := make([]fiber.Map, len(tokens))
	for i, tok := range tokens {
		items[i] = fiber.Map{
			"type":  tok.Type.String(),
			"value": tok.Value,
			"pos":   tok.Pos,
		}
	}
	return c.JSON(fiber.Map{"tokens": items})
}

// run evaluates one line and records it in the history.
func (s *Server) run(line string) *store.Evaluation {
	v, err := expr.Eval(line)
	ev := s.store.Record(line, v, err)
	if err != nil {
		s.logger.Debug("evaluation failed", "id", ev.ID, "expression", line, "kind", ev.Error.Kind)
	} else {
		s.logger.Debug("evaluated", "id", ev.ID, "expression", line, "result", v)
	}
	return ev
}

// --- History Handlers ---

func (s *Server) listEvaluations(c *fiber.Ctx) error {
	evals := s.store.List()
	items := make([]fiber.Map, len(evals))
	for i, ev := range evals {
		items[i] = s.evaluationToJSON(ev)
	}
	return c.JSON(fiber.Map{"evaluations": items})
}

func (s *Server) getEvaluation(c *fiber.Ctx) error {
	ev, err := s.store.Get(c.Params("id"))
	if err != nil {
		return errorJSON(c, 404, "NOT_FOUND", err.Error())
	}
	return c.JSON(s.evaluationToJSON(ev))
}

func (s *Server) clearEvaluations(c *fiber.Ctx) error {
	s.store.Clear()
	return c.JSON(fiber.Map{})
}

func (s *Server) stats(c *fiber.Ctx) error {
	return c.JSON(s.store.Stats())
}

// --- Helpers ---

func errorJSON(c *fiber.Ctx, code int, status, msg string) error {
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": msg,
			"status":  status,
		},
	})
}

// statusForKind mirrors the gRPC code mapping in pkg/api/grpc.
func statusForKind(kind string) string {
	if kind == expr.KindDivideByZero.String() {
		return "OUT_OF_RANGE"
	}
	return "INVALID_ARGUMENT"
}

// evaluationToJSON renders an evaluation. JSON has no representation for
// infinities, so non-finite results are sent only in "formatted".
func (s *Server) evaluationToJSON(ev *store.Evaluation) fiber.Map {
	result := fiber.Map{
		"id":         ev.ID,
		"expression": ev.Expression,
		"outcome":    ev.Outcome,
		"createTime": ev.CreateTime.Format(time.RFC3339),
	}

	if ev.Error != nil {
		result["error"] = fiber.Map{
			"kind":    ev.Error.Kind,
			"message": ev.Error.Message,
			"pos":     ev.Error.Pos,
		}
		return result
	}

	if !math.IsInf(ev.Result, 0) && !math.IsNaN(ev.Result) {
		result["result"] = ev.Result
	}
	result["formatted"] = session.FormatResult(ev.Result, s.precision)
	return result
}
