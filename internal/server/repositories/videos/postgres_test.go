package videos

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jbarakanov/videohost/internal/common"
	"github.com/jbarakanov/videohost/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const selectColumns = `id,\s*title,\s*COALESCE\(description,\s*''\),\s*media_ref,\s*created,\s*owner_id`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+videos\s*\(title,\s*description,\s*media_ref,\s*created,\s*owner_id\)\s*VALUES\s*\(\$1,\s*NULLIF\(\$2,\s*''\),\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id\s*$`

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(9))
	mock.ExpectQuery(q).
		WithArgs("Cats", "compilation", "videos/1/a", created, int64(7)).
		WillReturnRows(rows)

	v := &models.Video{Title: "Cats", Description: "compilation", MediaRef: "videos/1/a", Created: created, OwnerID: 7}
	got, err := repo.Create(context.Background(), v)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 9 || got.Title != "Cats" {
		t.Fatalf("unexpected video: %+v", got)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+videos\s*`

	mock.ExpectQuery(q).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Video{Title: "Cats"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+` + selectColumns + `\s+FROM\s+videos\s+WHERE\s+id\s*=\s*\$1\s*$`

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "title", "description", "media_ref", "created", "owner_id"}).
		AddRow(int64(9), "Cats", "", "videos/1/a", created, int64(7))
	mock.ExpectQuery(q).
		WithArgs(int64(9)).
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), 9)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ID != 9 || got.OwnerID != 7 || !got.Created.Equal(created) {
		t.Fatalf("unexpected video: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+` + selectColumns + `\s+FROM\s+videos\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectQuery(q).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+videos\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), 9); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+videos\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 9); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestList_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+` + selectColumns + `\s+FROM\s+videos\s+ORDER\s+BY\s+id\s+OFFSET\s+\$1\s+LIMIT\s+\$2\s*$`

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "title", "description", "media_ref", "created", "owner_id"}).
		AddRow(int64(1), "Cats", "", "videos/1/a", created, int64(7)).
		AddRow(int64(2), "Dogs", "walk", "videos/1/b", created, int64(8))
	mock.ExpectQuery(q).
		WithArgs(0, 100).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), 0, 100)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[1].Description != "walk" {
		t.Fatalf("unexpected page: %+v", got)
	}
}

func TestListByOwner_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+` + selectColumns + `\s+FROM\s+videos\s+WHERE\s+owner_id\s*=\s*\$1\s+ORDER\s+BY\s+id\s*$`

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "title", "description", "media_ref", "created", "owner_id"}).
		AddRow(int64(1), "Cats", "", "videos/7/a", created, int64(7))
	mock.ExpectQuery(q).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 1 || got[0].MediaRef != "videos/7/a" {
		t.Fatalf("unexpected page: %+v", got)
	}
}
