package provider

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockStore(t *testing.T, driver string) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, driver), ""), mock
}

func TestFetchNavigationPostgresPlaceholders(t *testing.T) {
	s, mock := mockStore(t, DriverPostgres)

	rows := sqlmock.NewRows([]string{"id", "alias", "path", "link", "type", "parent_id",
		"level", "language", "menutype", "lft"}).
		AddRow(101, "home", "home", "index.php?option=com_content&view=featured", "component", 1, 1, "*", "mainmenu", 10).
		AddRow(102, "about", nil, "index.php?option=com_content&view=article&id=5", "component", 1, 1, nil, "mainmenu", 20)

	mock.ExpectQuery(regexp.QuoteMeta("FROM menu m WHERE m.published = $1 AND m.client_id = $2 ORDER BY m.lft, m.id")).
		WithArgs(1, 0).
		WillReturnRows(rows)

	nodes, err := s.FetchNavigationNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "home", nodes[0].Path)
	assert.Empty(t, nodes[1].Path, "NULL path stays empty")
	assert.Empty(t, nodes[1].Language)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchNavigationSQLitePlaceholders(t *testing.T) {
	s, mock := mockStore(t, DriverSQLite)

	mock.ExpectQuery(regexp.QuoteMeta("FROM menu m WHERE m.published = ? AND m.client_id = ? ORDER BY m.lft, m.id")).
		WithArgs(1, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "alias", "path", "link", "type", "parent_id",
			"level", "language", "menutype", "lft"}))

	nodes, err := s.FetchNavigationNodes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, nodes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchContentQueryError(t *testing.T) {
	s, mock := mockStore(t, DriverSQLite)
	mock.ExpectQuery(regexp.QuoteMeta("FROM content a LEFT JOIN categories c ON c.id = a.catid WHERE a.state = ?")).
		WithArgs(1).
		WillReturnError(errors.New("connection reset"))

	_, err := s.FetchContentItems(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider: fetch content")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceSourceRollsBackOnFailure(t *testing.T) {
	s, mock := mockStore(t, DriverSQLite)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM menu WHERE source = ?")).
		WithArgs("site.yaml").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := s.ReplaceSource(context.Background(), "site.yaml", "abc", Snapshot{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear menu rows")
	require.NoError(t, mock.ExpectationsWereMet())
}
