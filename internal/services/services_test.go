package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cardkeep/cardkeep/internal/events"
	"github.com/cardkeep/cardkeep/internal/model"
	"github.com/cardkeep/cardkeep/internal/remote"
	"github.com/cardkeep/cardkeep/internal/store"
	"github.com/cardkeep/cardkeep/internal/store/sqlite"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	db, err := sqlite.OpenMemory()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlite.EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return sqlite.New(db, events.NewBus())
}

func mustCreateLocal(t *testing.T, st store.Store, content string) *model.Card {
	t.Helper()
	now := time.Now().UTC()
	c := &model.Card{
		ID: content, Type: model.CardTypeIdea, Content: content,
		CreatedAt: now, UpdatedAt: now,
	}
	if _, err := st.Cards().Create(context.Background(), c); err != nil {
		t.Fatalf("seed card %s: %v", content, err)
	}
	return c
}

// fakeGateway implements remote.Gateway with overridable behavior. The zero
// value answers every call with a network failure, mimicking an unreachable
// service.
type fakeGateway struct {
	listCards  func(ctx context.Context) ([]*model.Card, error)
	getCard    func(ctx context.Context, id string) (*model.Card, error)
	createCard func(ctx context.Context, c *model.Card) (*model.Card, error)
	updateCard func(ctx context.Context, c *model.Card) (*model.Card, error)
	deleteCard func(ctx context.Context, id string) error

	listTags  func(ctx context.Context) ([]*model.Tag, error)
	createTag func(ctx context.Context, tg *model.Tag) (*model.Tag, error)

	listTemplates func(ctx context.Context) ([]*model.Template, error)

	currentUser func(ctx context.Context) (*model.User, error)
}

var errDown = &remote.NetworkError{Err: errors.New("connection refused")}

func (f *fakeGateway) ListCards(ctx context.Context) ([]*model.Card, error) {
	if f.listCards != nil {
		return f.listCards(ctx)
	}
	return nil, errDown
}

func (f *fakeGateway) GetCard(ctx context.Context, id string) (*model.Card, error) {
	if f.getCard != nil {
		return f.getCard(ctx, id)
	}
	return nil, errDown
}

func (f *fakeGateway) SearchCards(ctx context.Context, _ model.CardFilter, _ model.CardSort) ([]*model.Card, error) {
	return nil, errDown
}

func (f *fakeGateway) CreateCard(ctx context.Context, c *model.Card) (*model.Card, error) {
	if f.createCard != nil {
		return f.createCard(ctx, c)
	}
	return nil, errDown
}

func (f *fakeGateway) UpdateCard(ctx context.Context, c *model.Card) (*model.Card, error) {
	if f.updateCard != nil {
		return f.updateCard(ctx, c)
	}
	return nil, errDown
}

func (f *fakeGateway) DeleteCard(ctx context.Context, id string) error {
	if f.deleteCard != nil {
		return f.deleteCard(ctx, id)
	}
	return errDown
}

func (f *fakeGateway) ToggleFavorite(ctx context.Context, id string) (*model.Card, error) {
	return nil, errDown
}

func (f *fakeGateway) ListTags(ctx context.Context) ([]*model.Tag, error) {
	if f.listTags != nil {
		return f.listTags(ctx)
	}
	return nil, errDown
}

func (f *fakeGateway) CreateTag(ctx context.Context, tg *model.Tag) (*model.Tag, error) {
	if f.createTag != nil {
		return f.createTag(ctx, tg)
	}
	return nil, errDown
}

func (f *fakeGateway) UpdateTag(ctx context.Context, tg *model.Tag) (*model.Tag, error) {
	return nil, errDown
}

func (f *fakeGateway) DeleteTag(ctx context.Context, id string) error { return errDown }

func (f *fakeGateway) ListTemplates(ctx context.Context) ([]*model.Template, error) {
	if f.listTemplates != nil {
		return f.listTemplates(ctx)
	}
	return nil, errDown
}

func (f *fakeGateway) CreateTemplate(ctx context.Context, tp *model.Template) (*model.Template, error) {
	return nil, errDown
}

func (f *fakeGateway) UpdateTemplate(ctx context.Context, tp *model.Template) (*model.Template, error) {
	return nil, errDown
}

func (f *fakeGateway) DeleteTemplate(ctx context.Context, id string) error { return errDown }

func (f *fakeGateway) CurrentUser(ctx context.Context) (*model.User, error) {
	if f.currentUser != nil {
		return f.currentUser(ctx)
	}
	return nil, errDown
}

func (f *fakeGateway) SaveUser(ctx context.Context, u *model.User) (*model.User, error) {
	return nil, errDown
}

func (f *fakeGateway) Statistics(ctx context.Context) (*model.Statistics, error) {
	return nil, errDown
}

var testLog = zerolog.Nop()
