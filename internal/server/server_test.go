package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/property-tax/pkg/constants"
	"github.com/iwvelando/property-tax/pkg/tax"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newTestHandler(t *testing.T, maxUploadSize int64) http.Handler {
	t.Helper()

	calc, err := tax.NewCalculator(zap.NewNop(), tax.DefaultSchedule())
	if err != nil {
		t.Fatalf("NewCalculator() error = %v", err)
	}
	return NewHandler(zap.NewNop(), calc, maxUploadSize, "test-version")
}

func performCalculate(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func performUpload(t *testing.T, handler http.Handler, target string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "config.yaml")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandleCalculateSuccess(t *testing.T) {
	handler := newTestHandler(t, constants.DefaultMaxUploadSizeBytes)

	rr := performCalculate(t, handler, `{"assessedValue": 302000000, "singleHouseholdSingleHome": true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp calculateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Result.Total != 441230 {
		t.Errorf("expected total 441230, got %d", resp.Result.Total)
	}
	if resp.Result.UrbanAreaLevy != 186030 {
		t.Errorf("expected urban zone to default on, got levy %d", resp.Result.UrbanAreaLevy)
	}
	if resp.View != tax.Annual {
		t.Errorf("expected annual view by default, got %s", resp.View)
	}
	if resp.Quarterly.Total != 220600 {
		t.Errorf("expected quarterly total 220600, got %d", resp.Quarterly.Total)
	}
	if len(resp.Breakdown) != 4 {
		t.Errorf("expected 4 breakdown items, got %d", len(resp.Breakdown))
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}
}

func TestHandleCalculateQuarterlyRural(t *testing.T) {
	handler := newTestHandler(t, constants.DefaultMaxUploadSizeBytes)

	rr := performCalculate(t, handler, `{
		"assessedValue": 1000000000,
		"priorYearBaseTax": 50000,
		"urbanZone": false,
		"fireLevyMode": "simplified",
		"view": "quarterly"
	}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp calculateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !resp.Result.CapApplied {
		t.Error("expected burden cap to apply")
	}
	if resp.Result.UrbanAreaLevy != 0 {
		t.Errorf("expected no urban levy, got %d", resp.Result.UrbanAreaLevy)
	}
	if resp.View != tax.Quarterly {
		t.Errorf("expected quarterly view, got %s", resp.View)
	}
	for _, item := range resp.Breakdown {
		if item.Name == "재산세 본세" && item.Amount != 27500 {
			t.Errorf("expected quarterly base tax 27500, got %d", item.Amount)
		}
	}
}

func TestHandleCalculateErrors(t *testing.T) {
	handler := newTestHandler(t, constants.DefaultMaxUploadSizeBytes)

	tests := []struct {
		name   string
		body   string
		status int
		substr string
	}{
		{"Malformed JSON", `{"assessedValue":`, http.StatusBadRequest, "failed to decode request"},
		{"Unknown field", `{"assessedValue": 1, "garden": true}`, http.StatusBadRequest, "failed to decode request"},
		{"Negative value", `{"assessedValue": -1}`, http.StatusBadRequest, "invalid input"},
		{"Bad fire mode", `{"assessedValue": 1, "fireLevyMode": "premium"}`, http.StatusBadRequest, "premium"},
		{"Bad view", `{"assessedValue": 1, "view": "monthly"}`, http.StatusBadRequest, "monthly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := performCalculate(t, handler, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}

			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if !strings.Contains(resp["error"], tt.substr) {
				t.Errorf("expected error containing %q, got %q", tt.substr, resp["error"])
			}
		})
	}
}

func TestHandleCalculateBodyTooLarge(t *testing.T) {
	handler := newTestHandler(t, 64)

	body := `{"assessedValue": 302000000, "fireLevyMode": "` + strings.Repeat("s", 128) + `"}`
	rr := performCalculate(t, handler, body)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if !strings.Contains(resp["error"], "exceeds limit of 64 bytes") {
		t.Errorf("expected body limit error message, got %q", resp["error"])
	}
}

func TestHandleScenariosSuccess(t *testing.T) {
	handler := newTestHandler(t, constants.DefaultMaxUploadSizeBytes)

	data, err := os.ReadFile(filepath.Join("..", "..", "test", "test_config.yaml"))
	if err != nil {
		t.Fatalf("failed to read test config: %v", err)
	}

	rr := performUpload(t, handler, "/api/scenarios", data)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp scenariosResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Scenarios) != 3 {
		t.Fatalf("expected 3 active scenarios, got %v", resp.Scenarios)
	}
	if len(resp.Reports) != len(resp.Scenarios) {
		t.Fatalf("expected a report per scenario, got %d", len(resp.Reports))
	}
	if resp.Reports[0].Amounts.Total != 441230 {
		t.Errorf("expected first scenario total 441230, got %d", resp.Reports[0].Amounts.Total)
	}
	if !strings.HasPrefix(resp.CSV, "scenario,view,") {
		t.Errorf("expected CSV header, got %q", resp.CSV)
	}
	if resp.ConfigYAML == "" {
		t.Error("expected config YAML in response")
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}
}

func TestHandleScenariosQuarterlyQuery(t *testing.T) {
	handler := newTestHandler(t, constants.DefaultMaxUploadSizeBytes)

	data, err := os.ReadFile(filepath.Join("..", "..", "test", "test_config.yaml"))
	if err != nil {
		t.Fatalf("failed to read test config: %v", err)
	}

	rr := performUpload(t, handler, "/api/scenarios?view=quarterly", data)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp scenariosResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Reports[0].View != tax.Quarterly || resp.Reports[0].Amounts.Total != 220600 {
		t.Errorf("expected quarterly report with total 220600, got %s %d",
			resp.Reports[0].View, resp.Reports[0].Amounts.Total)
	}
}

func TestHandleScenariosWarnings(t *testing.T) {
	handler := newTestHandler(t, constants.DefaultMaxUploadSizeBytes)

	data := []byte(`scenarios:
  - name: twin
    active: true
    assessedValue: 100000000
  - name: twin
    active: true
    assessedValue: 200000000
`)

	rr := performUpload(t, handler, "/api/scenarios", data)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp scenariosResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Warnings) == 0 {
		t.Error("expected duplicate-name warning")
	}
}

func TestHandleScenariosInvalidScenario(t *testing.T) {
	handler := newTestHandler(t, constants.DefaultMaxUploadSizeBytes)

	data := []byte(`scenarios:
  - name: broken
    active: true
    assessedValue: -5
`)

	rr := performUpload(t, handler, "/api/scenarios", data)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "broken") {
		t.Errorf("expected scenario name in error, got %s", rr.Body.String())
	}
}

func TestHandleScenariosMissingFile(t *testing.T) {
	handler := newTestHandler(t, constants.DefaultMaxUploadSizeBytes)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("other", "value"); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/scenarios", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "missing configuration file") {
		t.Errorf("unexpected error body: %s", rr.Body.String())
	}
}

func TestHandleScenariosUploadTooLarge(t *testing.T) {
	handler := newTestHandler(t, 64)

	data := []byte(strings.Repeat("# padding\n", 64))
	rr := performUpload(t, handler, "/api/scenarios", data)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleScenarioExport(t *testing.T) {
	handler := newTestHandler(t, constants.DefaultMaxUploadSizeBytes)

	payload := `{
		"scenarios": [{"name": "home", "active": true, "assessedValue": 302000000}],
		"output": {"format": "pretty", "view": "annual"},
		"logging": {"level": "info"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/scenarios/export", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	configYAML := resp["configYaml"]
	loggingIdx := strings.Index(configYAML, "logging:")
	outputIdx := strings.Index(configYAML, "output:")
	scenariosIdx := strings.Index(configYAML, "scenarios:")
	if loggingIdx != 0 || outputIdx < loggingIdx || scenariosIdx < outputIdx {
		t.Errorf("expected logging, output, scenarios order, got:\n%s", configYAML)
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal([]byte(configYAML), &decoded); err != nil {
		t.Fatalf("exported YAML does not parse: %v", err)
	}
}

func TestHandleRates(t *testing.T) {
	handler := newTestHandler(t, constants.DefaultMaxUploadSizeBytes)

	req := httptest.NewRequest(http.MethodGet, "/api/rates", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, key := range []string{"year", "preferentialProperty", "standardProperty", "fireStandard", "fireSimplified"} {
		if _, ok := resp[key]; !ok {
			t.Errorf("expected %q in rate schedule", key)
		}
	}
}

func TestHandleVersion(t *testing.T) {
	handler := newTestHandler(t, constants.DefaultMaxUploadSizeBytes)

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "test-version") {
		t.Errorf("unexpected version body: %s", rr.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, constants.DefaultMaxUploadSizeBytes)

	for _, target := range []string{"/api/calculate", "/api/scenarios", "/api/scenarios/export"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected status 405, got %d", target, rr.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/rates", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("/api/rates: expected status 405, got %d", rr.Code)
	}
}
