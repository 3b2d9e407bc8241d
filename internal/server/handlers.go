package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/combination"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/config"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/export"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/ingest"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/types"
	"github.com/mohamed-kadi/invoice-combination-finder/internal/validation"
)

// ExportBaseName is the attachment name of exports, without extension.
const ExportBaseName = "invoice-mix-combinations"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
}

// findCombinations handles POST /api/combinations.
func (s *Server) findCombinations(c *gin.Context) {
	req, ok := bindRequest(c)
	if !ok {
		return
	}
	outcome, ok := s.search(c, req)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, export.NewView(outcome))
}

// exportCombinations handles POST /api/combinations/export?format=csv|xlsx.
func (s *Server) exportCombinations(c *gin.Context) {
	format := export.FormatCSV
	if raw := c.Query("format"); raw != "" {
		f, err := export.ParseFormat(raw)
		if err != nil || (f != export.FormatCSV && f != export.FormatXLSX) {
			reject(c, http.StatusBadRequest, "Export format must be csv or xlsx.")
			return
		}
		format = f
	}

	req, ok := bindRequest(c)
	if !ok {
		return
	}
	outcome, ok := s.search(c, req)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, outcome, format); err != nil {
		fail(c, fmt.Errorf("render export: %w", err))
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == export.FormatXLSX {
		contentType = xlsxContentType
	}
	c.Header("Content-Disposition", "attachment; filename="+ExportBaseName+format.Extension())
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// uploadCombinations handles POST /api/combinations/upload.
//
// Form fields: target, file, minInvoices, maxInvoices and repeated requiredIds.
func (s *Server) uploadCombinations(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			reject(c, http.StatusRequestEntityTooLarge, "Uploaded file is too large.")
			return
		}
		reject(c, http.StatusBadRequest, "A file field is required.")
		return
	}

	target, err := formDecimal(c.PostForm("target"))
	if err != nil {
		reject(c, http.StatusBadRequest, "Invalid target amount: "+c.PostForm("target"))
		return
	}
	minInvoices, err := formInt(c, "minInvoices")
	if err != nil {
		reject(c, http.StatusBadRequest, err.Error())
		return
	}
	maxInvoices, err := formInt(c, "maxInvoices")
	if err != nil {
		reject(c, http.StatusBadRequest, err.Error())
		return
	}

	file, err := header.Open()
	if err != nil {
		fail(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	invoices, err := ingest.Read(header.Filename, file, config.CSVSettings{Delimiter: c.PostForm("delimiter")})
	if err != nil {
		fail(c, err)
		return
	}

	outcome, ok := s.search(c, &types.CombinationRequest{
		Target:             target,
		Invoices:           invoices,
		MinInvoices:        minInvoices,
		MaxInvoices:        maxInvoices,
		RequiredInvoiceIDs: c.PostFormArray("requiredIds"),
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, export.NewView(outcome))
}

// =============================================================================
// SHARED STEPS
// =============================================================================

// bindRequest decodes and field-validates a JSON search request.
func bindRequest(c *gin.Context) (*types.CombinationRequest, bool) {
	var req types.CombinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, "Malformed JSON request: "+err.Error())
		return nil, false
	}
	if result := validation.ValidateRequest(&req); result != nil {
		rejectFields(c, result)
		return nil, false
	}
	return &req, true
}

// search applies the size cap and deadline policies around the engine.
// Upload requests skip field validation, so the engine's own checks produce
// their rejections.
func (s *Server) search(c *gin.Context, req *types.CombinationRequest) (*combination.Outcome, bool) {
	if err := combination.CheckSize(len(req.Invoices), s.cfg.MaxInvoices); err != nil {
		fail(c, err)
		return nil, false
	}

	ctx := c.Request.Context()
	if s.cfg.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SearchTimeout)
		defer cancel()
	}

	outcome, err := combination.FindContext(ctx, req.Target, req.Invoices, combination.Constraints{
		MinSize:     req.MinInvoices,
		MaxSize:     req.MaxInvoices,
		RequiredIDs: req.RequiredInvoiceIDs,
	})
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return outcome, true
}

func formDecimal(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func formInt(c *gin.Context, field string) (*int, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a whole number.", field)
	}
	return &n, nil
}
