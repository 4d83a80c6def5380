package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"housing-dashboard/services"
	"housing-dashboard/sheet"
	"housing-dashboard/storage"
	"housing-dashboard/utils"
)

//go:embed templates/upload.html
var templates embed.FS

const (
	previewRows    = 5
	reportFilename = "housing_dashboard.html"
)

type handler struct {
	deps            Dependencies
	logger          *utils.Logger
	limiter         *utils.Limiter
	maxUpload       int64
	shutdownTimeout time.Duration
	page            *template.Template
}

func newHandler(logger *utils.Logger, cfg Config) (*handler, error) {
	page, err := template.ParseFS(templates, "templates/upload.html")
	if err != nil {
		return nil, fmt.Errorf("server: parse template: %w", err)
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	return &handler{
		deps:            cfg.Dependencies,
		logger:          logger,
		limiter:         utils.NewLimiter(cfg.MaxJobs),
		maxUpload:       maxUpload,
		shutdownTimeout: cfg.ShutdownTimeout,
		page:            page,
	}, nil
}

// uploadError marks a request whose files could not be read.
type uploadError struct {
	field string
	err   error
}

func (e *uploadError) Error() string { return fmt.Sprintf("%s: %v", e.field, e.err) }
func (e *uploadError) Unwrap() error { return e.err }

type pageView struct {
	MaxUploadMB int64
	Error       *errorView
}

type errorView struct {
	Message    string
	Candidates []string
	Available  []string
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, nil)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"jobs":      h.limiter.InUse(),
		"max_jobs":  h.limiter.Capacity(),
		"timestamp": time.Now().UTC(),
	})
}

type sheetPreview struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
}

type filePreview struct {
	File   string         `json:"file"`
	Sheets []sheetPreview `json:"sheets"`
}

func (h *handler) preview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.fail(w, r, &uploadError{field: "form", err: err}, false)
		return
	}
	book, err := readUpload(r.MultipartForm, "file")
	if err != nil {
		h.fail(w, r, err, false)
		return
	}
	writeJSON(w, r, http.StatusOK, previewBook(book))
}

func previewBook(book *sheet.Book) filePreview {
	out := filePreview{File: book.Name(), Sheets: []sheetPreview{}}
	for _, name := range book.SheetNames() {
		t, err := book.Sheet(name)
		if err != nil {
			continue
		}
		cols := t.Columns()
		head := t.Head(previewRows)
		rows := make([][]string, head.Len())
		for i := range rows {
			row := head.Row(i)
			rows[i] = make([]string, len(cols))
			for j, c := range cols {
				rows[i][j] = row[c]
			}
		}
		out.Sheets = append(out.Sheets, sheetPreview{Name: name, Columns: cols, Rows: rows, Total: t.Len()})
	}
	return out
}

func (h *handler) generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.fail(w, r, &uploadError{field: "form", err: err}, true)
		return
	}
	rental, err := readUpload(r.MultipartForm, "rental")
	if err != nil {
		h.fail(w, r, err, true)
		return
	}
	ownership, err := readUpload(r.MultipartForm, "ownership")
	if err != nil {
		h.fail(w, r, err, true)
		return
	}

	var buf bytes.Buffer
	var runID string
	err = h.limiter.Do(r.Context(), func() error {
		// Each request gets fresh pipelines; only the renderer and assembler are shared.
		d := services.NewDashboard(h.deps.Columns, h.deps.Renderer, h.deps.Assembler, h.logger)
		doc, err := d.Generate(&buf, rental, ownership)
		if err != nil {
			return err
		}
		runID = doc.Meta.RunID
		return nil
	})
	if err != nil {
		h.fail(w, r, err, true)
		return
	}

	zerolog.Ctx(r.Context()).Info().Str("run_id", runID).Int("bytes", buf.Len()).Msg("report generated")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportFilename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func readUpload(form *multipart.Form, field string) (*sheet.Book, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, &uploadError{field: field, err: errors.New("no file uploaded")}
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, &uploadError{field: field, err: err}
	}
	defer f.Close()

	book, err := storage.ReadWorkbookFrom(f, fh.Filename)
	if err != nil {
		return nil, &uploadError{field: field, err: err}
	}
	return book, nil
}

// status maps a pipeline or upload error to an HTTP status code.
func status(err error) int {
	var cnf *sheet.ColumnNotFoundError
	var upload *uploadError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &upload):
		return http.StatusBadRequest
	case errors.As(err, &cnf), errors.Is(err, services.ErrNoListings):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail reports err either as the upload page with an error panel or as JSON.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error, page bool) {
	code := status(err)
	logger := zerolog.Ctx(r.Context())
	logger.Warn().Err(err).Int("status", code).Msg("request failed")

	view := &errorView{Message: err.Error()}
	var cnf *sheet.ColumnNotFoundError
	if errors.As(err, &cnf) {
		view.Message = "Could not find a required column"
		if cnf.Table != "" {
			view.Message += fmt.Sprintf(" in sheet %q", cnf.Table)
		}
		view.Candidates = cnf.Candidates
		view.Available = cnf.Available
	}
	if code == http.StatusInternalServerError {
		view.Message = "Report generation failed: " + err.Error()
	}

	if page {
		h.renderPage(w, r, code, view)
		return
	}
	body := map[string]any{"error": view.Message}
	if view.Candidates != nil {
		body["candidates"] = view.Candidates
		body["available"] = view.Available
	}
	writeJSON(w, r, code, body)
}

func (h *handler) renderPage(w http.ResponseWriter, r *http.Request, code int, ev *errorView) {
	var buf bytes.Buffer
	if err := h.page.Execute(&buf, pageView{MaxUploadMB: h.maxUpload >> 20, Error: ev}); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render upload page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
