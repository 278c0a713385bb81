// Package server exposes the tax engine over a small JSON HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/property-tax/internal/config"
	"github.com/iwvelando/property-tax/internal/estimate"
	"github.com/iwvelando/property-tax/pkg/constants"
	"github.com/iwvelando/property-tax/pkg/output"
	"github.com/iwvelando/property-tax/pkg/tax"
	"github.com/iwvelando/property-tax/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	calculator    *tax.Calculator
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the calculation API.
func NewHandler(logger *zap.Logger, calculator *tax.Calculator, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		calculator:    calculator,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	mux := http.NewServeMux()

	// Single property calculation
	mux.HandleFunc("/api/calculate", h.handleCalculate)

	// Scenario file upload
	mux.HandleFunc("/api/scenarios", h.handleScenarios)

	// Scenario file serialization for editor downloads
	mux.HandleFunc("/api/scenarios/export", h.handleScenarioExport)

	// Rate schedule in use
	mux.HandleFunc("/api/rates", h.handleRates)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type calculateRequest struct {
	AssessedValue             int64  `json:"assessedValue"`
	SingleHouseholdSingleHome bool   `json:"singleHouseholdSingleHome"`
	PriorYearBaseTax          int64  `json:"priorYearBaseTax"`
	UrbanZone                 *bool  `json:"urbanZone"`
	FireLevyMode              string `json:"fireLevyMode"`
	FireLevyBase              int64  `json:"fireLevyBase"`
	View                      string `json:"view"`
}

type calculateResponse struct {
	Result    tax.Result     `json:"result"`
	View      tax.View       `json:"view"`
	Annual    tax.Amounts    `json:"annual"`
	Quarterly tax.Amounts    `json:"quarterly"`
	Breakdown []tax.LineItem `json:"breakdown"`
	Duration  string         `json:"duration"`
}

type scenariosResponse struct {
	Scenarios  []string        `json:"scenarios"`
	Reports    []output.Report `json:"reports"`
	CSV        string          `json:"csv"`
	Warnings   []string        `json:"warnings,omitempty"`
	Duration   string          `json:"duration"`
	ConfigYAML string          `json:"configYaml,omitempty"`
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var req calculateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		if h.tooLarge(err) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	view, err := parseView(req.View)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	scenario := config.Scenario{
		Name:                      "request",
		Active:                    true,
		AssessedValue:             req.AssessedValue,
		SingleHouseholdSingleHome: req.SingleHouseholdSingleHome,
		PriorYearBaseTax:          req.PriorYearBaseTax,
		UrbanZone:                 req.UrbanZone,
		FireLevyMode:              req.FireLevyMode,
		FireLevyBase:              req.FireLevyBase,
	}
	in, err := scenario.ToTaxInput()
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	result, err := h.calculator.Compute(in)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("property tax computed",
		zap.String("op", op),
		zap.Int64("total", result.Total),
		zap.Bool("capApplied", result.CapApplied),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, calculateResponse{
		Result:    result,
		View:      view,
		Annual:    result.Annual(),
		Quarterly: result.Quarterly(),
		Breakdown: result.Breakdown(view),
		Duration:  elapsed.String(),
	})
}

func (h *handler) handleScenarios(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarios"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		if h.tooLarge(err) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	viewName := r.URL.Query().Get("view")
	if viewName == "" {
		viewName = cfg.Output.View
	}
	view, err := parseView(viewName)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	warnings := cfg.ValidateConfiguration()

	results, err := estimate.GetEstimatesWithCalculator(h.logger, h.calculator, *cfg)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), fmt.Sprintf("failed to compute estimates: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	response := scenariosResponse{
		Scenarios:  extractScenarioNames(results),
		Reports:    output.Reports(results, view),
		CSV:        output.CsvString(results, view),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		ConfigYAML: buf.String(),
	}

	h.logger.Info("estimates computed",
		zap.String("op", op),
		zap.Int("scenarios", len(response.Scenarios)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleScenarioExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleRates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, h.calculator.Schedule())
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// tooLarge reports whether err came from reading past the body limit.
func (h *handler) tooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

func parseView(view string) (tax.View, error) {
	if view == "" {
		return tax.Annual, nil
	}
	if err := validation.ValidateView(view); err != nil {
		return "", err
	}
	return tax.View(view), nil
}

// statusFor maps engine errors to HTTP statuses.
func statusFor(err error) int {
	if errors.Is(err, tax.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// marshalOrderedConfigYAML writes logging and output first, then the
// remaining keys alphabetically.
func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	return yaml.Marshal(orderedConfig{items: items})
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func extractScenarioNames(results []estimate.Estimate) []string {
	names := make([]string, 0, len(results))
	for _, result := range results {
		names = append(names, result.Name)
	}
	return names
}
