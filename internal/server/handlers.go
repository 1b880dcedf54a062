package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spendlens/spendlens/internal/buildinfo"
	"github.com/spendlens/spendlens/internal/ingest"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/store"
)

const defaultPageSize = 100

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: "spendlens", Build: buildinfo.Current()})
}

// handleImport accepts a multipart "file" plus optional "importer" and
// "autoApplyCategories" fields. The upload is removed once processed.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.writeError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	code := strings.TrimSpace(r.FormValue("importer"))
	if code == "" {
		code = s.cfg.DefaultImporter
	}
	autoApply := s.cfg.AutoApply
	if v := r.FormValue("autoApplyCategories"); v != "" {
		autoApply = v != "false"
	}

	path, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.log.Error().Err(err).Msg("Saving upload failed")
		s.writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", path).Msg("Removing upload failed")
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not read upload")
		return
	}
	defer f.Close()

	res, err := s.ingest.ImportFile(r.Context(), f, header.Filename, code, ingest.Options{AutoApply: autoApply})

	switch {
	case errors.Is(err, ingest.ErrUnknownImporter):
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown importer: %s", code))
		return
	case errors.Is(err, ingest.ErrNoTransactions):
		s.writeError(w, http.StatusBadRequest, "No transactions found in file")
		return
	case err != nil:
		s.log.Error().Err(err).Str("file", header.Filename).Msg("Import failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, importResponse{
		Added:      res.Added,
		Duplicates: res.Duplicates,
		Message:    fmt.Sprintf("Imported %d transactions, skipped %d duplicates", res.Added, res.Duplicates),
	})
}

// saveUpload copies an upload into the upload dir under a random name.
func (s *Server) saveUpload(src io.Reader, original string) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}
	path := filepath.Join(s.cfg.UploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(original)))

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return path, dst.Close()
}

func (s *Server) handleListImporters(w http.ResponseWriter, r *http.Request) {
	imps := s.registry.List()
	resp := make([]importerResponse, 0, len(imps))
	for _, imp := range imps {
		resp = append(resp, toImporterResponse(imp))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultPageSize)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txns, err := s.store.Transactions.List(r.Context(), limit, offset)
	if err != nil {
		s.log.Error().Err(err).Msg("Listing transactions failed")
		s.writeError(w, http.StatusInternalServerError, "could not list transactions")
		return
	}
	resp := make([]transactionResponse, 0, len(txns))
	for _, tx := range txns {
		resp = append(resp, toTransactionResponse(tx))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	var req setCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CategoryID == 0 {
		s.writeError(w, http.StatusBadRequest, "categoryId is required")
		return
	}

	err = s.categorizer.Assign(r.Context(), id, req.CategoryID)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.Error().Err(err).Int64("transaction_id", id).Msg("Assigning category failed")
		s.writeError(w, http.StatusInternalServerError, "could not assign category")
		return
	}

	tx, err := s.store.Transactions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not reload transaction")
		return
	}
	s.writeJSON(w, http.StatusOK, toTransactionResponse(*tx))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.Categories.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not list categories")
		return
	}
	resp := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		resp = append(resp, toCategoryResponse(c))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := s.store.Patterns.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not list patterns")
		return
	}
	resp := make([]patternResponse, 0, len(patterns))
	for _, p := range patterns {
		resp = append(resp, toPatternResponse(p))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreatePattern(w http.ResponseWriter, r *http.Request) {
	var req patternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := req.toPattern()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.store.Patterns.Create(r.Context(), p)
	if err != nil {
		s.log.Error().Err(err).Msg("Creating pattern failed")
		s.writeError(w, http.StatusInternalServerError, "could not create pattern")
		return
	}
	p.ID = id
	if p.ConfidenceScore == 0 {
		p.ConfidenceScore = model.DefaultConfidence
	}
	s.writeJSON(w, http.StatusCreated, toPatternResponse(p))
}

func (req patternRequest) toPattern() (model.SimilarityPattern, error) {
	pt, err := model.ParsePatternType(req.PatternType)
	if err != nil {
		return model.SimilarityPattern{}, err
	}
	if strings.TrimSpace(req.PatternValue) == "" {
		return model.SimilarityPattern{}, errors.New("patternValue is required")
	}
	if pt == model.PatternRegex {
		if _, err := regexp.Compile(req.PatternValue); err != nil {
			return model.SimilarityPattern{}, fmt.Errorf("invalid regex: %w", err)
		}
	}
	if req.ConfidenceScore < 0 {
		return model.SimilarityPattern{}, errors.New("confidenceScore must not be negative")
	}
	return model.SimilarityPattern{
		PatternType:      pt,
		PatternValue:     req.PatternValue,
		CategoryID:       req.CategoryID,
		ParentCategoryID: req.ParentCategoryID,
		ConfidenceScore:  req.ConfidenceScore,
	}, nil
}

func (s *Server) handleTestPattern(w http.ResponseWriter, r *http.Request) {
	var req patternTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Description) == "" {
		s.writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	best, ok, err := s.categorizer.Preview(r.Context(), req.Description)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not load patterns")
		return
	}
	resp := patternTestResponse{Matched: ok}
	if ok {
		p := toPatternResponse(best)
		resp.Pattern = &p
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
