package repository

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-ops-dashboard/internal/model"
)

func str(s string) *string { return &s }

var testCategories = map[int64]model.TicketCategory{
	1: {ID: 1, Name: "Museum entrance", Class: model.TicketClassEntrance},
	2: {ID: 2, Name: "Guide ticket", Class: "guide"},
}

func TestValidateLinksNormalizes(t *testing.T) {
	links, err := ValidateLinks("  Vatican Tour ", []model.ProductMapping{
		{ActivityID: " 101 ", TicketCategoryID: 1, Source: str("b2c")},
		{ActivityID: "102", TicketCategoryID: 2, Source: str("  ")},
	}, testCategories)

	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "Vatican Tour", links[0].ProductName)
	assert.Equal(t, "101", links[0].ActivityID)
	require.NotNil(t, links[0].Source)
	assert.Equal(t, model.SourceB2C, *links[0].Source)
	assert.Nil(t, links[1].Source)
}

func TestValidateLinksRejects(t *testing.T) {
	cases := []struct {
		name    string
		product string
		links   []model.ProductMapping
		want    error
	}{
		{"empty product", " ", []model.ProductMapping{{ActivityID: "1", TicketCategoryID: 1}}, ErrInvalidMapping},
		{"no links", "P", nil, ErrInvalidMapping},
		{"missing activity", "P", []model.ProductMapping{{TicketCategoryID: 1}}, ErrInvalidMapping},
		{"unknown category", "P", []model.ProductMapping{{ActivityID: "1", TicketCategoryID: 9}}, ErrInvalidMapping},
		{"bad source", "P", []model.ProductMapping{{ActivityID: "1", TicketCategoryID: 1, Source: str("B2X")}}, ErrInvalidMapping},
		{"source on guide category", "P", []model.ProductMapping{{ActivityID: "1", TicketCategoryID: 2, Source: str("B2B")}}, ErrSourceNotAllowed},
		{"duplicate pair", "P", []model.ProductMapping{
			{ActivityID: "1", TicketCategoryID: 1},
			{ActivityID: "1", TicketCategoryID: 1},
		}, ErrInvalidMapping},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateLinks(tc.product, tc.links, testCategories)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestInFilter(t *testing.T) {
	where, args := inFilter("aa.activity_id", []string{"a", "b"}, []any{"2024-06-01"})
	assert.Equal(t, " AND aa.activity_id IN (?,?)", where)
	assert.Equal(t, []any{"2024-06-01", "a", "b"}, args)

	where, args = inFilter[string]("x", nil, nil)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestChunks(t *testing.T) {
	ids := []int64{1, 2, 3, 4, 5}
	assert.Equal(t, [][]int64{{1, 2}, {3, 4}, {5}}, chunks(ids, 2))
	assert.Equal(t, [][]int64{{1, 2, 3, 4, 5}}, chunks(ids, 10))
	assert.Empty(t, chunks([]int64{}, 3))
}

func TestDayAfter(t *testing.T) {
	assert.Equal(t, "2024-03-01", dayAfter("2024-02-29"))
	assert.Equal(t, "2025-01-01", dayAfter("2024-12-31"))
	assert.Equal(t, "garbage", dayAfter("garbage"))
}

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}), ErrConflict)
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: 1452, Message: "FK"}), ErrNotFound)
	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}
