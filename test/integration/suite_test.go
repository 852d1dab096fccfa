//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
)

// apiWorld is what the feature steps share within one scenario.
type apiWorld struct {
	baseURL string
	client  *http.Client

	status int
	body   []byte
}

// serviceURL targets BASE_URL when set. Otherwise the features run against
// an in-process instance backed by a stub quote API and a temp database.
func serviceURL(t *testing.T) string {
	if url := os.Getenv("BASE_URL"); url != "" {
		return strings.TrimSuffix(url, "/")
	}

	api := newQuoteAPI(t)
	in := startInstance(t, integrationConfig(t, api, filepath.Join(t.TempDir(), "features.db")))

	server := httptest.NewServer(in.router)
	t.Cleanup(server.Close)

	return server.URL
}

func (w *apiWorld) register(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		w.status, w.body = 0, nil
		return ctx, nil
	})

	sc.Step(`^the service is running$`, w.serviceIsRunning)
	sc.Step(`^I request (GET|POST|DELETE) "([^"]*)"$`, func(method, path string) error {
		return w.send(method, path, "")
	})
	sc.Step(`^I POST to "([^"]*)" with:$`, func(path string, doc *godog.DocString) error {
		return w.send(http.MethodPost, path, doc.Content)
	})
	sc.Step(`^the response status should be (\d+)$`, w.statusIs)
	sc.Step(`^the response should contain "([^"]*)"$`, w.bodyContains)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, w.fieldIs)
}

func (w *apiWorld) serviceIsRunning() error {
	if err := w.send(http.MethodGet, "/-/live", ""); err != nil {
		return fmt.Errorf("service not reachable at %s: %w", w.baseURL, err)
	}
	return w.statusIs(http.StatusOK)
}

func (w *apiWorld) send(method, path, body string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var payload io.Reader = http.NoBody
	if body != "" {
		payload = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, w.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	w.status = resp.StatusCode
	w.body, err = io.ReadAll(resp.Body)
	return err
}

func (w *apiWorld) statusIs(want int) error {
	if w.status != want {
		return fmt.Errorf("status %d, want %d: %s", w.status, want, w.body)
	}
	return nil
}

func (w *apiWorld) bodyContains(text string) error {
	if !strings.Contains(string(w.body), text) {
		return fmt.Errorf("body does not contain %q: %s", text, w.body)
	}
	return nil
}

// fieldIs compares the printed value of a top-level JSON field.
func (w *apiWorld) fieldIs(field, want string) error {
	var doc map[string]any
	if err := json.Unmarshal(w.body, &doc); err != nil {
		return fmt.Errorf("body is not a JSON object: %w", err)
	}

	got, ok := doc[field]
	if !ok {
		return fmt.Errorf("no field %q in %s", field, w.body)
	}
	if fmt.Sprint(got) != want {
		return fmt.Errorf("field %q is %v, want %s", field, got, want)
	}
	return nil
}

func TestFeatures(t *testing.T) {
	baseURL := serviceURL(t)
	client := &http.Client{Timeout: 10 * time.Second}

	suite := godog.TestSuite{
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			(&apiWorld{baseURL: baseURL, client: client}).register(sc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			TestingT: t,
			Tags:     os.Getenv("GODOG_TAGS"),
		},
	}

	if suite.Run() != 0 {
		t.Fatal("feature scenarios failed")
	}
}
