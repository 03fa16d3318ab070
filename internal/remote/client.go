// Package remote implements the HTTP/JSON gateway to the authoritative card
// service. It performs request/response translation only: no retries, no
// caching, no local persistence.
package remote

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cardkeep/cardkeep/internal/model"
)

// Gateway is the remote boundary consumed by the synchronization
// coordinator. Absent resources surface as model.ErrNotFound; other
// non-success statuses as *APIError; transport failures as *NetworkError.
type Gateway interface {
	ListCards(ctx context.Context) ([]*model.Card, error)
	GetCard(ctx context.Context, id string) (*model.Card, error)
	SearchCards(ctx context.Context, f model.CardFilter, s model.CardSort) ([]*model.Card, error)
	CreateCard(ctx context.Context, c *model.Card) (*model.Card, error)
	UpdateCard(ctx context.Context, c *model.Card) (*model.Card, error)
	DeleteCard(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string) (*model.Card, error)

	ListTags(ctx context.Context) ([]*model.Tag, error)
	CreateTag(ctx context.Context, t *model.Tag) (*model.Tag, error)
	UpdateTag(ctx context.Context, t *model.Tag) (*model.Tag, error)
	DeleteTag(ctx context.Context, id string) error

	ListTemplates(ctx context.Context) ([]*model.Template, error)
	CreateTemplate(ctx context.Context, t *model.Template) (*model.Template, error)
	UpdateTemplate(ctx context.Context, t *model.Template) (*model.Template, error)
	DeleteTemplate(ctx context.Context, id string) error

	CurrentUser(ctx context.Context) (*model.User, error)
	SaveUser(ctx context.Context, u *model.User) (*model.User, error)

	Statistics(ctx context.Context) (*model.Statistics, error)
}

// DefaultTimeout bounds every remote call; expiry is a network failure.
const DefaultTimeout = 30 * time.Second

// Client is the resty-backed Gateway implementation.
type Client struct {
	r *resty.Client
}

var _ Gateway = (*Client)(nil)

// NewClient builds a gateway client for the given base URL.
func NewClient(baseURL string) *Client {
	r := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(DefaultTimeout).
		SetHeader("Accept", "application/json")
	return &Client{r: r}
}

// WithTimeout overrides the per-call budget.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.r.SetTimeout(d)
	return c
}

// do executes one call and maps the error taxonomy. out is only populated
// on success.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.r.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return &NetworkError{Err: err}
	}
	if resp.IsError() {
		if resp.StatusCode() == http.StatusNotFound {
			return model.ErrNotFound
		}
		return &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	return nil
}

// --- cards ---

type listCardsResponse struct {
	Cards []cardDTO `json:"cards"`
	Count int       `json:"count"`
}

func cardsFromWire(dtos []cardDTO) ([]*model.Card, error) {
	out := make([]*model.Card, 0, len(dtos))
	for _, d := range dtos {
		card, err := cardFromWire(d)
		if err != nil {
			return nil, &NetworkError{Err: err}
		}
		out = append(out, card)
	}
	return out, nil
}

func (c *Client) ListCards(ctx context.Context) ([]*model.Card, error) {
	var lr listCardsResponse
	if err := c.do(ctx, http.MethodGet, "/api/cards", nil, &lr); err != nil {
		return nil, err
	}
	return cardsFromWire(lr.Cards)
}

func (c *Client) GetCard(ctx context.Context, id string) (*model.Card, error) {
	var d cardDTO
	if err := c.do(ctx, http.MethodGet, "/api/cards/"+id, nil, &d); err != nil {
		return nil, err
	}
	card, err := cardFromWire(d)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return card, nil
}

func (c *Client) SearchCards(ctx context.Context, f model.CardFilter, s model.CardSort) ([]*model.Card, error) {
	req := c.r.R().SetContext(ctx)
	if f.Query != "" {
		req.SetQueryParam("q", f.Query)
	}
	if len(f.Types) > 0 {
		parts := make([]string, len(f.Types))
		for i, t := range f.Types {
			parts[i] = string(t)
		}
		req.SetQueryParam("types", strings.Join(parts, ","))
	}
	if len(f.Tags) > 0 {
		req.SetQueryParam("tags", strings.Join(f.Tags, ","))
	}
	if f.Favorite != nil {
		req.SetQueryParam("favorite", boolParam(*f.Favorite))
	}
	if f.Template != nil {
		req.SetQueryParam("template", boolParam(*f.Template))
	}
	if s.Key != "" {
		sort := string(s.Key)
		if s.Desc {
			sort = "-" + sort
		}
		req.SetQueryParam("sort", sort)
	}
	var lr listCardsResponse
	req.SetResult(&lr)
	resp, err := req.Get("/api/cards/search")
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	return cardsFromWire(lr.Cards)
}

func boolParam(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (c *Client) CreateCard(ctx context.Context, card *model.Card) (*model.Card, error) {
	var d cardDTO
	if err := c.do(ctx, http.MethodPost, "/api/cards", cardToWire(card), &d); err != nil {
		return nil, err
	}
	out, err := cardFromWire(d)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return out, nil
}

func (c *Client) UpdateCard(ctx context.Context, card *model.Card) (*model.Card, error) {
	var d cardDTO
	if err := c.do(ctx, http.MethodPut, "/api/cards/"+card.ID, cardToWire(card), &d); err != nil {
		return nil, err
	}
	out, err := cardFromWire(d)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return out, nil
}

func (c *Client) DeleteCard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/cards/"+id, nil, nil)
}

func (c *Client) ToggleFavorite(ctx context.Context, id string) (*model.Card, error) {
	var d cardDTO
	if err := c.do(ctx, http.MethodPost, "/api/cards/"+id+"/favorite", nil, &d); err != nil {
		return nil, err
	}
	out, err := cardFromWire(d)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return out, nil
}

// --- tags ---

type listTagsResponse struct {
	Tags  []tagDTO `json:"tags"`
	Count int      `json:"count"`
}

func (c *Client) ListTags(ctx context.Context) ([]*model.Tag, error) {
	var lr listTagsResponse
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &lr); err != nil {
		return nil, err
	}
	out := make([]*model.Tag, 0, len(lr.Tags))
	for _, d := range lr.Tags {
		t, err := tagFromWire(d)
		if err != nil {
			return nil, &NetworkError{Err: err}
		}
		out = append(out, t)
	}
	return out, nil
}

func (c *Client) CreateTag(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	var d tagDTO
	if err := c.do(ctx, http.MethodPost, "/api/tags", tagToWire(tag), &d); err != nil {
		return nil, err
	}
	out, err := tagFromWire(d)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return out, nil
}

func (c *Client) UpdateTag(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	var d tagDTO
	if err := c.do(ctx, http.MethodPut, "/api/tags/"+tag.ID, tagToWire(tag), &d); err != nil {
		return nil, err
	}
	out, err := tagFromWire(d)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return out, nil
}

func (c *Client) DeleteTag(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tags/"+id, nil, nil)
}

// --- templates ---

type listTemplatesResponse struct {
	Templates []templateDTO `json:"templates"`
	Count     int           `json:"count"`
}

func (c *Client) ListTemplates(ctx context.Context) ([]*model.Template, error) {
	var lr listTemplatesResponse
	if err := c.do(ctx, http.MethodGet, "/api/templates", nil, &lr); err != nil {
		return nil, err
	}
	out := make([]*model.Template, 0, len(lr.Templates))
	for _, d := range lr.Templates {
		t, err := templateFromWire(d)
		if err != nil {
			return nil, &NetworkError{Err: err}
		}
		out = append(out, t)
	}
	return out, nil
}

func (c *Client) CreateTemplate(ctx context.Context, t *model.Template) (*model.Template, error) {
	var d templateDTO
	if err := c.do(ctx, http.MethodPost, "/api/templates", templateToWire(t), &d); err != nil {
		return nil, err
	}
	out, err := templateFromWire(d)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return out, nil
}

func (c *Client) UpdateTemplate(ctx context.Context, t *model.Template) (*model.Template, error) {
	var d templateDTO
	if err := c.do(ctx, http.MethodPut, "/api/templates/"+t.ID, templateToWire(t), &d); err != nil {
		return nil, err
	}
	out, err := templateFromWire(d)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return out, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/templates/"+id, nil, nil)
}

// --- users ---

func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var d userDTO
	if err := c.do(ctx, http.MethodGet, "/api/users/current", nil, &d); err != nil {
		return nil, err
	}
	out, err := userFromWire(d)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return out, nil
}

func (c *Client) SaveUser(ctx context.Context, u *model.User) (*model.User, error) {
	var d userDTO
	if err := c.do(ctx, http.MethodPut, "/api/users/current", userToWire(u), &d); err != nil {
		return nil, err
	}
	out, err := userFromWire(d)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return out, nil
}

// --- statistics ---

func (c *Client) Statistics(ctx context.Context) (*model.Statistics, error) {
	var st model.Statistics
	if err := c.do(ctx, http.MethodGet, "/api/statistics", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
