package commonname

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	query string
	args  []any
}

type fakeDB struct {
	exists bool
	names  []string
	err    error
	calls  []call
}

func (f *fakeDB) GetContext(_ context.Context, dest any, query string, args ...any) error {
	f.calls = append(f.calls, call{query, args})
	if f.err != nil {
		return f.err
	}
	*(dest.(*bool)) = f.exists
	return nil
}

func (f *fakeDB) SelectContext(_ context.Context, dest any, query string, args ...any) error {
	f.calls = append(f.calls, call{query, args})
	if f.err != nil {
		return f.err
	}
	*(dest.(*[]string)) = f.names
	return nil
}

func (f *fakeDB) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.calls = append(f.calls, call{query, args})
	return nil, f.err
}

func (f *fakeDB) QueryxContext(context.Context, string, ...any) (*sqlx.Rows, error) { return nil, nil }

func (f *fakeDB) BeginTxx(context.Context, *sql.TxOptions) (*sqlx.Tx, error) { return nil, nil }

func (f *fakeDB) PingContext(context.Context) error { return nil }

func newRepo(db *fakeDB) *Repository {
	return NewRepository(db, ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {}))
}

func TestRepository_Includes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		exists  bool
		want    bool
		wantArg []any
	}{
		{name: "standardizes before lookup", input: "  smith ", exists: true, want: true, wantArg: []any{"SMITH"}},
		{name: "absent", input: "Zzyzx", exists: false, want: false, wantArg: []any{"ZZYZX"}},
		{name: "blank skips the database", input: "   ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{exists: tt.exists}
			got, err := newRepo(db).Includes(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			if tt.wantArg == nil {
				assert.Empty(t, db.calls)
				return
			}
			require.Len(t, db.calls, 1)
			assert.Equal(t, "SELECT COUNT(1) > 0 FROM common_names WHERE name = $1", db.calls[0].query)
			assert.Equal(t, tt.wantArg, db.calls[0].args)
		})
	}
}

func TestRepository_Includes_Error(t *testing.T) {
	_, err := newRepo(&fakeDB{err: errors.New("down")}).Includes(context.Background(), "Smith")
	assert.ErrorContains(t, err, "down")
}

func TestRepository_Create(t *testing.T) {
	db := &fakeDB{}
	name, err := newRepo(db).Create(context.Background(), " o'brien ")
	require.NoError(t, err)
	assert.Equal(t, "O'BRIEN", name)

	require.Len(t, db.calls, 1)
	assert.Equal(t, "INSERT INTO common_names (name) VALUES ($1) ON CONFLICT DO NOTHING", db.calls[0].query)
	assert.Equal(t, []any{"O'BRIEN"}, db.calls[0].args)

	_, err = newRepo(&fakeDB{}).Create(context.Background(), " ")
	assert.True(t, errors.Is(err, ErrBlankName))
}

func TestRepository_List(t *testing.T) {
	db := &fakeDB{names: []string{"DOE", "SMITH"}}
	got, err := newRepo(db).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"DOE", "SMITH"}, got)
	assert.Equal(t, "SELECT name FROM common_names ORDER BY name ASC", db.calls[0].query)
}
