package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Repository{db: db}, mock
}

// TestSaveSnapshot_RollsBackOnError tests that a failed write leaves no partial snapshot
func TestSaveSnapshot_RollsBackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)
	tour := models.NewTournament("t", "T", 1, 1)
	tour.AddSchool("North")

	mock.ExpectBegin()
	for _, table := range snapshotTables {
		mock.ExpectExec("DELETE FROM " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("INSERT INTO tournaments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schools").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := repo.SaveSnapshot(context.Background(), tour.Snapshot())
	if err == nil {
		t.Fatal("expected error from failed insert, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestSaveSnapshot_BeginError tests transaction start failure
func TestSaveSnapshot_BeginError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	err := repo.SaveSnapshot(context.Background(), models.NewTournament("t", "T", 1, 1).Snapshot())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// TestSaveSnapshot_CommitError tests commit failure
func TestSaveSnapshot_CommitError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	for _, table := range snapshotTables {
		mock.ExpectExec("DELETE FROM " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("INSERT INTO tournaments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	err := repo.SaveSnapshot(context.Background(), models.NewTournament("t", "T", 1, 1).Snapshot())
	if err == nil {
		t.Fatal("expected commit error, got nil")
	}
}

// TestLoadSnapshot_QueryError tests a failing child query
func TestLoadSnapshot_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM tournaments").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "team_size", "random_seed", "break_level_set", "break_level", "clean_break", "breaks", "next_id"}).
			AddRow("t", "T", 1, 1, false, "", false, nil, 1))
	mock.ExpectQuery("SELECT (.+) FROM schools").WillReturnError(errors.New("no such table"))

	_, err := repo.LoadSnapshot(context.Background(), "t")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// TestLoadSnapshot_ScanError tests row scanning error
func TestLoadSnapshot_ScanError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM tournaments").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "team_size", "random_seed", "break_level_set", "break_level", "clean_break", "breaks", "next_id"}).
			AddRow("t", "T", 1, 1, false, "", false, nil, 1))
	mock.ExpectQuery("SELECT (.+) FROM schools").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).AddRow("not-a-number", "North"))

	_, err := repo.LoadSnapshot(context.Background(), "t")
	if err == nil {
		t.Fatal("expected scan error, got nil")
	}
}

// TestLoadSnapshot_BadJSON tests an unreadable list column
func TestLoadSnapshot_BadJSON(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM tournaments").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "team_size", "random_seed", "break_level_set", "break_level", "clean_break", "breaks", "next_id"}).
			AddRow("t", "T", 1, 1, true, "finals", false, "[1,", 1))

	_, err := repo.LoadSnapshot(context.Background(), "t")
	if err == nil {
		t.Fatal("expected JSON error, got nil")
	}
}

// TestListTournaments_QueryError tests query failure
func TestListTournaments_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM tournaments").WillReturnError(errors.New("connection reset"))

	if _, err := repo.ListTournaments(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

// TestDeleteTournament_RowsAffectedError tests an unreadable result
func TestDeleteTournament_RowsAffectedError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM tournaments").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("unsupported")))

	if err := repo.DeleteTournament(context.Background(), "t"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
