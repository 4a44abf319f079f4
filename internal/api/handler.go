// Package api exposes the statement engine over HTTP.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finlens/statement-engine/internal/engine"
	"github.com/finlens/statement-engine/internal/extractor"
	"github.com/finlens/statement-engine/internal/models"
	"github.com/finlens/statement-engine/internal/parser"
	"github.com/finlens/statement-engine/internal/writer"
)

// Version reported by the health endpoint.
const Version = "1.1.0"

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
	Format    string            `json:"format,omitempty"`
	Statement *models.Statement `json:"statement,omitempty"`
	CSV       string            `json:"csv,omitempty"`
	Count     int               `json:"count"`
	TotalIn   decimal.Decimal   `json:"totalIn"`
	TotalOut  decimal.Decimal   `json:"totalOut"`
	Lines     int               `json:"lines"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Log  *slog.Logger
	Opts engine.Options
}

// Register sets up the HTTP routes.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/convert", h.HandleConvert)
}

// HandleHealth reports service liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": Version,
	})
}

// HandleConvert accepts a multipart PDF upload (form field "file", optional
// "format", "header" and "trace" fields) and returns the parsed statement as
// JSON alongside a CSV rendering.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	reqID := uuid.NewString()
	log := h.logger().With("request_id", reqID)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, reqID, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, reqID, "Only PDF files are supported.")
	}

	tmpFile, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, reqID, "Failed to create temp file.")
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		return writeError(c, fiber.StatusInternalServerError, reqID, "Failed to save uploaded file.")
	}

	lines, err := extractor.ReadLines(tmpPath)
	if err != nil {
		log.Warn("extraction failed", "file", filepath.Base(fileHeader.Filename), "err", err)
		return writeError(c, fiber.StatusUnprocessableEntity, reqID, fmt.Sprintf("PDF extraction failed: %v", err))
	}
	log.Info("extracted document", "file", filepath.Base(fileHeader.Filename), "lines", len(lines))

	format := models.FormatType(c.FormValue("format"))
	if format == "" {
		detected, err := parser.Detect(lines)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, reqID, err.Error())
		}
		format = detected
	}

	opts := h.Opts
	opts.Logger = log
	if c.FormValue("trace") == "true" {
		opts.Trace = true
	}
	p, err := parser.New(format, opts)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, reqID, err.Error())
	}

	statement, err := p.Parse(lines)
	if err != nil {
		var pluginErr *engine.PluginError
		if errors.As(err, &pluginErr) {
			log.Warn("plugin failed",
				"file", filepath.Base(fileHeader.Filename),
				"line", pluginErr.Line,
				"state", pluginErr.State,
				"err", pluginErr.Err,
			)
		}
		return writeError(c, fiber.StatusUnprocessableEntity, reqID, fmt.Sprintf("Parsing failed: %v", err))
	}

	var csvBuf bytes.Buffer
	includeHeader := c.FormValue("header") != "false"
	csvWriter := &writer.CSVWriter{IncludeHeader: includeHeader}
	if err := csvWriter.Write(&csvBuf, statement); err != nil {
		return writeError(c, fiber.StatusInternalServerError, reqID, fmt.Sprintf("CSV generation failed: %v", err))
	}

	totalIn := decimal.Zero
	for _, t := range statement.Incomes {
		totalIn = totalIn.Add(t.Amount)
	}
	totalOut := decimal.Zero
	for _, t := range statement.Expenses {
		totalOut = totalOut.Add(t.Amount)
	}

	log.Info("converted statement",
		"format", format,
		"transactions", statement.Count(),
		"incomes", len(statement.Incomes),
		"expenses", len(statement.Expenses),
	)

	return c.JSON(ConvertResponse{
		Success:   true,
		RequestID: reqID,
		Format:    string(format),
		Statement: statement,
		CSV:       csvBuf.String(),
		Count:     statement.Count(),
		TotalIn:   totalIn,
		TotalOut:  totalOut,
		Lines:     len(lines),
	})
}

func (h *Handler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

func writeError(c *fiber.Ctx, status int, reqID, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success:   false,
		RequestID: reqID,
		Error:     msg,
	})
}
