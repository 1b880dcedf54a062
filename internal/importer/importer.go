// Package importer turns bank CSV exports into normalized transactions.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/model"
)

// ErrMissingCode is returned when registering an importer without a code.
var ErrMissingCode = errors.New("importer code is required")

// Importer converts one bank's export format into normalized transactions.
// Parse must return rows in input order and no rows at all if the file
// cannot be read.
type Importer interface {
	Name() string
	Code() string
	SupportedFileTypes() []string
	Parse(r io.Reader) ([]model.NormalizedTransaction, error)
}

// Detector is implemented by importers that can recognize their own files.
type Detector interface {
	CanHandleFile(header, fileName string) bool
}

// Registry holds importers keyed by code, in registration order.
type Registry struct {
	importers map[string]Importer
	order     []string
	log       zerolog.Logger
}

// NewRegistry creates an empty importer registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		importers: make(map[string]Importer),
		log:       log,
	}
}

// Register adds an importer. A second importer with the same code replaces
// the first but keeps its position.
func (r *Registry) Register(imp Importer) error {
	if imp == nil {
		return fmt.Errorf("registering importer: %w", ErrMissingCode)
	}
	key := normalizeCode(imp.Code())
	if key == "" {
		return fmt.Errorf("registering importer %q: %w", imp.Name(), ErrMissingCode)
	}

	if _, ok := r.importers[key]; ok {
		r.log.Warn().Str("code", key).Str("name", imp.Name()).Msg("Replacing registered importer")
	} else {
		r.order = append(r.order, key)
	}
	r.importers[key] = imp
	return nil
}

// Get returns the importer for code.
func (r *Registry) Get(code string) (Importer, bool) {
	imp, ok := r.importers[normalizeCode(code)]
	return imp, ok
}

// List returns all importers in registration order.
func (r *Registry) List() []Importer {
	result := make([]Importer, 0, len(r.order))
	for _, key := range r.order {
		result = append(result, r.importers[key])
	}
	return result
}

// AutoDetect returns the first registered importer that recognizes the file.
// Importers that do not implement Detector are skipped.
func (r *Registry) AutoDetect(header, fileName string) (Importer, bool) {
	for _, key := range r.order {
		imp := r.importers[key]
		d, ok := imp.(Detector)
		if !ok {
			continue
		}
		if d.CanHandleFile(header, fileName) {
			return imp, true
		}
	}
	return nil, false
}

// Default returns the first registered importer.
func (r *Registry) Default() (Importer, bool) {
	if len(r.order) == 0 {
		return nil, false
	}
	return r.importers[r.order[0]], true
}

// Resolve picks an importer by explicit code, then by detection, then the default.
// An explicit code that is not registered resolves to nothing.
func (r *Registry) Resolve(code, header, fileName string) (Importer, bool) {
	if strings.TrimSpace(code) != "" {
		return r.Get(code)
	}
	if imp, ok := r.AutoDetect(header, fileName); ok {
		return imp, true
	}
	return r.Default()
}

func (r *Registry) mustRegister(imp Importer) {
	if err := r.Register(imp); err != nil {
		panic(err)
	}
}

// DefaultRegistry returns a registry with all built-in importers. AIB is
// registered first and is therefore the default.
func DefaultRegistry(log zerolog.Logger) *Registry {
	r := NewRegistry(log)
	r.mustRegister(NewAIB(log))
	r.mustRegister(NewRevolut(log))
	r.mustRegister(NewChase(log, ""))
	return r
}

// HeaderLine returns the first line of a file, used for detection.
func HeaderLine(data []byte) string {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		data = data[:i]
	}
	line := strings.TrimSuffix(string(data), "\r")
	return strings.TrimPrefix(line, "\ufeff")
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
