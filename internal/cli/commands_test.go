package cli

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/evcraddock/staylist/internal/db"
	"github.com/evcraddock/staylist/internal/listing"
	"github.com/evcraddock/staylist/internal/web"
)

const testCatalog = `
properties:
  - name: Cliffside Cabin
    address:
      city: Asheville
      state: NC
      country: USA
    rating: 4.1
    category: [Cabin, Mountain]
    price: 150
    offers:
      bed: "2 beds"
      shower: "1 bath"
      occupants: "4 guests"
    discount: "10%"
    description: A quiet cabin above the valley.
    reviews:
      - name: Ana
        rating: 4
        comment: Great views.
  - name: Harbor Loft
    address:
      city: Portland
      state: ME
      country: USA
    rating: 3
    price: 99.5
`

func loadTestCatalog(t *testing.T, env []string) {
	t.Helper()
	path := writeCatalog(t, "catalog.yaml", testCatalog)
	out, err := executeCommand(append(env, "load", path)...)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.Contains(out, "Loaded 2 properties.") {
		t.Fatalf("unexpected load output: %q", out)
	}
}

func TestLoadAndList(t *testing.T) {
	env := testEnv(t)
	loadTestCatalog(t, env)

	out, err := executeCommand(append(env, "list")...)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	for _, want := range []string{
		"Cliffside Cabin",
		"Harbor Loft",
		"★★★★★ (4.1)",
		"$150/night",
		"$99.5/night",
		"10%",
		"Total: 2 properties",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	env := testEnv(t)
	loadTestCatalog(t, env)
	loadTestCatalog(t, env)

	out, err := executeCommand(append(env, "--format", "json", "list")...)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var props []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &props); err != nil {
		t.Fatalf("decoding list output: %v\n%s", err, out)
	}
	if len(props) != 2 {
		t.Errorf("expected 2 properties after reload, got %d", len(props))
	}
}

func TestLoadJSONCatalog(t *testing.T) {
	env := testEnv(t)
	path := writeCatalog(t, "catalog.json", `[{"name":"Dune House","rating":5,"price":200}]`)

	out, err := executeCommand(append(env, "load", path)...)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.Contains(out, "Loaded 1 properties.") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestLoadRejectsInvalidCatalog(t *testing.T) {
	env := testEnv(t)
	path := writeCatalog(t, "catalog.yaml", "- rating: 4\n")

	if _, err := executeCommand(append(env, "load", path)...); err == nil {
		t.Error("expected error for property without a name")
	}
}

func TestLoadMissingFile(t *testing.T) {
	env := testEnv(t)
	if _, err := executeCommand(append(env, "load", "/nonexistent/catalog.yaml")...); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestListEmpty(t *testing.T) {
	env := testEnv(t)

	out, err := executeCommand(append(env, "list")...)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No properties found.") {
		t.Errorf("unexpected output: %q", out)
	}

	out, err = executeCommand(append(env, "--format", "json", "list")...)
	if err != nil {
		t.Fatalf("list json: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("expected empty JSON array, got %q", out)
	}
}

func TestCard(t *testing.T) {
	env := testEnv(t)
	loadTestCatalog(t, env)

	out, err := executeCommand(append(env, "card", "Cliffside Cabin")...)
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	for _, want := range []string{"Cliffside Cabin", "$150", "/night", "★★★★★"} {
		if !strings.Contains(out, want) {
			t.Errorf("card output missing %q:\n%s", want, out)
		}
	}
}

func TestCardUnknownProperty(t *testing.T) {
	env := testEnv(t)
	if _, err := executeCommand(append(env, "card", "Nowhere")...); err == nil {
		t.Error("expected error for unknown property")
	}
}

func TestShow(t *testing.T) {
	env := testEnv(t)
	loadTestCatalog(t, env)

	out, err := executeCommand(append(env, "show", "Cliffside Cabin")...)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Cliffside Cabin", "A quiet cabin above the valley.", "Great views.", "Ana"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestShowUnknownPropertyPrintsFallback(t *testing.T) {
	env := testEnv(t)

	out, err := executeCommand(append(env, "show", "Nowhere")...)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Property data not available") {
		t.Errorf("expected fallback, got %q", out)
	}
}

func TestShowJSON(t *testing.T) {
	env := testEnv(t)
	loadTestCatalog(t, env)

	out, err := executeCommand(append(env, "--format", "json", "show", "Harbor Loft")...)
	if err != nil {
		t.Fatalf("show: %v", err)
	}

	var p map[string]interface{}
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decoding: %v\n%s", err, out)
	}
	if p["name"] != "Harbor Loft" {
		t.Errorf("expected Harbor Loft, got %v", p["name"])
	}
}

func TestRemove(t *testing.T) {
	env := testEnv(t)
	loadTestCatalog(t, env)

	out, err := executeCommand(append(env, "remove", "Harbor Loft")...)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !strings.Contains(out, `Property "Harbor Loft" removed.`) {
		t.Errorf("unexpected output: %q", out)
	}

	if _, err := executeCommand(append(env, "remove", "Harbor Loft")...); err == nil {
		t.Error("expected error removing an already removed property")
	}
}

func TestRemoveInvalidatesCachedPage(t *testing.T) {
	env := testEnv(t)
	loadTestCatalog(t, env)

	mr := miniredis.RunT(t)
	t.Setenv("STAYLIST_REDIS_ADDR", mr.Addr())
	if err := mr.Set("staylist:page:detail:Harbor Loft", "<html>stale</html>"); err != nil {
		t.Fatalf("seeding cache: %v", err)
	}

	if _, err := executeCommand(append(env, "remove", "Harbor Loft")...); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if mr.Exists("staylist:page:detail:Harbor Loft") {
		t.Error("expected cached detail page to be deleted")
	}
}

func TestCommandsAgainstServer(t *testing.T) {
	d, err := db.Open(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	srv, err := web.NewServer(d, web.Options{APIToken: "secret", APIRate: 100, APIBurst: 100})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	env := append(testEnv(t), "--server", ts.URL, "--token", "secret")
	loadTestCatalog(t, env)

	out, err := executeCommand(append(env, "list")...)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Total: 2 properties") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	out, err = executeCommand(append(env, "show", "Missing Place")...)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Property data not available") {
		t.Errorf("expected fallback, got %q", out)
	}

	if _, err := executeCommand(append(env, "remove", "Cliffside Cabin")...); err != nil {
		t.Fatalf("remove: %v", err)
	}

	props, err := listing.NewRepository(d).List(context.Background())
	if err != nil {
		t.Fatalf("listing server db: %v", err)
	}
	if len(props) != 1 || props[0].Name != "Harbor Loft" {
		t.Errorf("server catalog after remove = %v", props)
	}
}

func TestServerWritesNeedToken(t *testing.T) {
	d, err := db.Open(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	srv, err := web.NewServer(d, web.Options{APIToken: "secret"})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	env := append(testEnv(t), "--server", ts.URL)
	path := writeCatalog(t, "catalog.yaml", testCatalog)
	if _, err := executeCommand(append(env, "load", path)...); err == nil {
		t.Error("expected unauthorized error")
	}
}
