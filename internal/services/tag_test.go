package services

import (
	"context"
	"errors"
	"testing"

	"github.com/cardkeep/cardkeep/internal/model"
)

func TestTagCreate_NameConflict(t *testing.T) {
	svc := NewTagService(newTestStore(t), nil, testLog)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &model.Tag{Name: "reading"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, &model.Tag{Name: "reading"}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("want ErrConflict for duplicate name, got %v", err)
	}
}

func TestTagCreate_RemoteFailureAbsorbed(t *testing.T) {
	st := newTestStore(t)
	svc := NewTagService(st, &fakeGateway{}, testLog)
	ctx := context.Background()

	out, err := svc.Create(ctx, &model.Tag{Name: "offline"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := st.Tags().Get(ctx, out.ID); err != nil {
		t.Fatalf("local row missing: %v", err)
	}
}

func TestTagCreate_RejectsBlankName(t *testing.T) {
	svc := NewTagService(newTestStore(t), nil, testLog)
	if _, err := svc.Create(context.Background(), &model.Tag{Name: "   "}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestTagList_FallsBackToLocal(t *testing.T) {
	st := newTestStore(t)
	local := NewTagService(st, nil, testLog)
	if _, err := local.Create(context.Background(), &model.Tag{Name: "kept"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := NewTagService(st, &fakeGateway{}, testLog)
	tags, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "kept" {
		t.Fatalf("local fallback: %v", tags)
	}
}
