package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cardkeep/cardkeep/internal/events"
	"github.com/cardkeep/cardkeep/internal/services"
	"github.com/cardkeep/cardkeep/internal/store/sqlite"
)

// newTestServer runs the full router over an in-memory store with no remote
// gateway, the standalone server profile.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := sqlite.OpenMemory()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlite.EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	st := sqlite.New(db, events.NewBus())
	log := zerolog.Nop()

	cardSvc := services.NewCardService(st, nil, log)
	srv := httptest.NewServer(NewRouter(Deps{
		Cards:     cardSvc,
		Tags:      services.NewTagService(st, nil, log),
		Templates: services.NewTemplateService(st, cardSvc, nil, log),
		Users:     services.NewUserService(st, nil, log),
		Stats:     services.NewStatsService(st, log),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestCardLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	// create
	resp, created := doJSON(t, http.MethodPost, srv.URL+"/api/cards", map[string]interface{}{
		"type":    "idea",
		"title":   "ship the release",
		"content": "cut the branch",
		"tags":    []string{"work"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("create: no id in %v", created)
	}

	// read back
	resp, got := doJSON(t, http.MethodGet, srv.URL+"/api/cards/"+id, nil)
	if resp.StatusCode != http.StatusOK || got["content"] != "cut the branch" {
		t.Fatalf("get: status=%d body=%v", resp.StatusCode, got)
	}

	// list
	resp, list := doJSON(t, http.MethodGet, srv.URL+"/api/cards", nil)
	if resp.StatusCode != http.StatusOK || list["count"] != float64(1) {
		t.Fatalf("list: status=%d body=%v", resp.StatusCode, list)
	}

	// toggle favorite
	resp, fav := doJSON(t, http.MethodPost, srv.URL+"/api/cards/"+id+"/favorite", nil)
	if resp.StatusCode != http.StatusOK || fav["isFavorite"] != true {
		t.Fatalf("favorite: status=%d body=%v", resp.StatusCode, fav)
	}

	// update
	resp, updated := doJSON(t, http.MethodPut, srv.URL+"/api/cards/"+id, map[string]interface{}{
		"type":    "idea",
		"content": "branch cut",
	})
	if resp.StatusCode != http.StatusOK || updated["content"] != "branch cut" {
		t.Fatalf("update: status=%d body=%v", resp.StatusCode, updated)
	}

	// delete
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/cards/"+id, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	_ = delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status %d", delResp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/cards/"+id, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: status %d", resp.StatusCode)
	}
}

func TestCreateCard_ValidationFailures(t *testing.T) {
	srv := newTestServer(t)

	// missing content
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/cards", map[string]interface{}{"type": "idea"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty content: status %d", resp.StatusCode)
	}

	// unknown type
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/cards", map[string]interface{}{"type": "song", "content": "x"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown type: status %d", resp.StatusCode)
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t)

	for _, c := range []map[string]interface{}{
		{"type": "idea", "title": "alpha", "content": "first", "tags": []string{"go"}},
		{"type": "quote", "title": "beta", "content": "second"},
	} {
		if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/cards", c); resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed: status %d", resp.StatusCode)
		}
	}

	resp, out := doJSON(t, http.MethodGet, srv.URL+"/api/cards/search?types=idea&tags=go&sort=-title", nil)
	if resp.StatusCode != http.StatusOK || out["count"] != float64(1) {
		t.Fatalf("search: status=%d body=%v", resp.StatusCode, out)
	}

	// malformed parameters are a 400, not a 500
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/cards/search?favorite=maybe", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad favorite: status %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/cards/search?sort=height", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad sort: status %d", resp.StatusCode)
	}
}

func TestTagConflictOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/tags", map[string]interface{}{"name": "reading"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/tags", map[string]interface{}{"name": "reading"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate: status %d body %v", resp.StatusCode, body)
	}
}

func TestTagAndTemplateDetailRoutes(t *testing.T) {
	srv := newTestServer(t)

	resp, tag := doJSON(t, http.MethodPost, srv.URL+"/api/tags", map[string]interface{}{"name": "golang", "color": "#00add8"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create tag: status %d", resp.StatusCode)
	}
	tagID, _ := tag["id"].(string)

	resp, got := doJSON(t, http.MethodGet, srv.URL+"/api/tags/"+tagID, nil)
	if resp.StatusCode != http.StatusOK || got["name"] != "golang" {
		t.Fatalf("tag detail: status %d body %v", resp.StatusCode, got)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/tags/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("absent tag: status %d", resp.StatusCode)
	}

	resp, tpl := doJSON(t, http.MethodPost, srv.URL+"/api/templates", map[string]interface{}{
		"name":     "daily note",
		"cardType": "idea",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create template: status %d", resp.StatusCode)
	}
	tplID, _ := tpl["id"].(string)

	resp, got = doJSON(t, http.MethodGet, srv.URL+"/api/templates/"+tplID, nil)
	if resp.StatusCode != http.StatusOK || got["name"] != "daily note" {
		t.Fatalf("template detail: status %d body %v", resp.StatusCode, got)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/templates/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("absent template: status %d", resp.StatusCode)
	}
}

func TestTemplateInstantiateOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp, tpl := doJSON(t, http.MethodPost, srv.URL+"/api/templates", map[string]interface{}{
		"name":           "snippet",
		"cardType":       "code",
		"defaultContent": "func main() {}",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create template: status %d", resp.StatusCode)
	}
	id, _ := tpl["id"].(string)

	resp, card := doJSON(t, http.MethodPost, srv.URL+"/api/templates/"+id+"/instantiate", map[string]interface{}{
		"title": "hello world",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("instantiate: status %d body %v", resp.StatusCode, card)
	}
	if card["type"] != "code" || card["title"] != "hello world" {
		t.Fatalf("instantiated card: %v", card)
	}

	resp, list := doJSON(t, http.MethodGet, srv.URL+"/api/templates", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list templates: status %d", resp.StatusCode)
	}
	templates, _ := list["templates"].([]interface{})
	if len(templates) != 1 {
		t.Fatalf("templates: %v", list)
	}
	if first, _ := templates[0].(map[string]interface{}); first["usageCount"] != float64(1) {
		t.Fatalf("usage count not bumped: %v", templates[0])
	}
}

func TestUserAndStatisticsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/users/current", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("current before save: status %d", resp.StatusCode)
	}

	resp, saved := doJSON(t, http.MethodPut, srv.URL+"/api/users/current", map[string]interface{}{
		"id": "u1", "username": "ada",
	})
	if resp.StatusCode != http.StatusOK || saved["username"] != "ada" {
		t.Fatalf("save user: status=%d body=%v", resp.StatusCode, saved)
	}

	if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/cards", map[string]interface{}{
		"type": "idea", "content": "x", "isFavorite": true,
	}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed card: status %d", resp.StatusCode)
	}

	resp, stats := doJSON(t, http.MethodGet, srv.URL+"/api/statistics", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("statistics: status %d", resp.StatusCode)
	}
	if stats["total"] != float64(1) || stats["favorites"] != float64(1) {
		t.Fatalf("statistics body: %v", stats)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	// nil checker means health gating is disabled and the endpoint reports ok
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health: status=%d body=%v", resp.StatusCode, body)
	}
}
