package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/cardkeep/cardkeep/internal/model"
)

func testCardJSON(id string) map[string]interface{} {
	return map[string]interface{}{
		"id":        id,
		"type":      "quote",
		"title":     "stoicism",
		"content":   "amor fati",
		"tags":      []string{"philosophy"},
		"createdAt": "2026-01-02T15:04:05Z",
		"updatedAt": "2026-01-02T15:04:05Z",
		"metadata": map[string]interface{}{
			"quoteAuthor": "Nietzsche",
		},
	}
}

func TestGetCard_DecodesAggregate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cards/c1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(testCardJSON("c1"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	card, err := c.GetCard(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if card.ID != "c1" || card.Type != model.CardTypeQuote {
		t.Fatalf("decoded card: %+v", card)
	}
	if card.Title == nil || *card.Title != "stoicism" {
		t.Fatalf("title: %v", card.Title)
	}
	if card.Metadata == nil || card.Metadata.QuoteAuthor == nil || *card.Metadata.QuoteAuthor != "Nietzsche" {
		t.Fatalf("metadata: %+v", card.Metadata)
	}
	want := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	if !card.CreatedAt.Equal(want) {
		t.Fatalf("createdAt: %v", card.CreatedAt)
	}
}

func TestGetCard_404IsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Not Found","code":404}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetCard(context.Background(), "missing")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListCards_ServerErrorIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListCards(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status: %d", apiErr.StatusCode)
	}
}

func TestListCards_ConnectionRefusedIsNetworkError(t *testing.T) {
	// a server started and immediately closed yields a dead address
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient(srv.URL).ListCards(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("want *NetworkError, got %v", err)
	}
}

func TestSearchCards_EncodesParams(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cards/search" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"cards": []interface{}{}, "count": 0})
	}))
	defer srv.Close()

	fav := true
	f := model.CardFilter{
		Query:    "amor",
		Types:    []model.CardType{model.CardTypeQuote, model.CardTypeIdea},
		Tags:     []string{"philosophy", "latin"},
		Favorite: &fav,
	}
	s := model.CardSort{Key: model.SortByTitle, Desc: true}
	if _, err := NewClient(srv.URL).SearchCards(context.Background(), f, s); err != nil {
		t.Fatalf("SearchCards: %v", err)
	}

	expect := map[string]string{
		"q":        "amor",
		"types":    "quote,idea",
		"tags":     "philosophy,latin",
		"favorite": "true",
		"sort":     "-title",
	}
	for k, want := range expect {
		if got := gotQuery.Get(k); got != want {
			t.Fatalf("param %s: got %q want %q", k, got, want)
		}
	}
}

func TestCreateCard_RoundTripsThroughWire(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method %s", r.Method)
		}
		var dto map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if dto["type"] != "idea" {
			t.Fatalf("enum not lowercase on the wire: %v", dto["type"])
		}
		// the server assigns its own id
		dto["id"] = "server-id"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(dto)
	}))
	defer srv.Close()

	card := &model.Card{
		ID:        "local-id",
		Type:      model.CardTypeIdea,
		Content:   "ship it",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	out, err := NewClient(srv.URL).CreateCard(context.Background(), card)
	if err != nil {
		t.Fatalf("CreateCard: %v", err)
	}
	if out.ID != "server-id" {
		t.Fatalf("server id not adopted: %s", out.ID)
	}
}

func TestGetCard_MalformedTimestampFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := testCardJSON("c1")
		body["createdAt"] = "yesterday"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).GetCard(context.Background(), "c1"); err == nil {
		t.Fatalf("want decode error for malformed timestamp")
	}
}
