package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-ops-dashboard/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func sqlLike(s string) string { return regexp.QuoteMeta(s) }

func categoryRows(cats ...model.TicketCategory) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "class"})
	for _, c := range cats {
		rows.AddRow(c.ID, c.Name, c.Class)
	}
	return rows
}

func TestMappingReplaceSwapsLinks(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(sqlLike(`DELETE FROM product_activity_mappings WHERE product_name = ?`)).
		WithArgs("Vatican Tour").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(sqlLike(`FROM ticket_categories WHERE 1=1 AND id IN (?)`)).
		WithArgs(1).
		WillReturnRows(categoryRows(testCategories[1]))
	mock.ExpectExec(sqlLike(`INSERT INTO product_activity_mappings`)).
		WithArgs("Vatican Tour", "101", 1, "B2C").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	err := NewMappingRepo(db).Replace(context.Background(), " Vatican Tour ", []model.ProductMapping{
		{ActivityID: "101", TicketCategoryID: 1, Source: str("b2c")},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMappingReplaceUnknownProductRollsBack(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(sqlLike(`DELETE FROM product_activity_mappings`)).
		WithArgs("Ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewMappingRepo(db).Replace(context.Background(), "Ghost", []model.ProductMapping{
		{ActivityID: "101", TicketCategoryID: 1},
	})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMappingReplaceInvalidLinksRollsBackDelete(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(sqlLike(`DELETE FROM product_activity_mappings`)).
		WithArgs("Vatican Tour").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(sqlLike(`FROM ticket_categories`)).
		WithArgs(2).
		WillReturnRows(categoryRows(testCategories[2]))
	mock.ExpectRollback()

	err := NewMappingRepo(db).Replace(context.Background(), "Vatican Tour", []model.ProductMapping{
		{ActivityID: "101", TicketCategoryID: 2, Source: str("B2B")},
	})

	assert.ErrorIs(t, err, ErrSourceNotAllowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMappingCreateExistingProductConflicts(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(sqlLike(`SELECT COUNT(*) FROM product_activity_mappings WHERE product_name = ? FOR UPDATE`)).
		WithArgs("Vatican Tour").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectRollback()

	err := NewMappingRepo(db).Create(context.Background(), "Vatican Tour", []model.ProductMapping{
		{ActivityID: "101", TicketCategoryID: 1},
	})

	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMappingDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(sqlLike(`DELETE FROM product_activity_mappings`)).
		WithArgs("Ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewMappingRepo(db).Delete(context.Background(), "Ghost")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
