package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/cardkeep/cardkeep/internal/events"
	"github.com/cardkeep/cardkeep/internal/store/storetest"
)

// A failure while writing child rows must roll the whole aggregate back.
func TestCreateCard_RollsBackOnChildFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	boom := errors.New("disk full")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO cards").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO card_tags").WillReturnError(boom)
	mock.ExpectRollback()

	s := New(db, events.NewBus())
	if _, err := s.Cards().Create(context.Background(), storetest.SampleCard()); !errors.Is(err, boom) {
		t.Fatalf("want child failure surfaced, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// An update of a missing row must not touch child tables.
func TestUpdateCard_MissingRowShortCircuits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cards SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	s := New(db, events.NewBus())
	if _, err := s.Cards().Update(context.Background(), storetest.SampleCard()); err == nil {
		t.Fatalf("want error for missing row")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
