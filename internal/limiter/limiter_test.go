package limiter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/csvx/internal/record"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid limit only",
			cfg:  Config{Limit: 10},
		},
		{
			name: "valid limit and offset",
			cfg:  Config{Limit: 10, Offset: 5},
		},
		{
			name: "tail ignores offset (valid)",
			cfg:  Config{Tail: 10, Offset: 5},
		},
		{
			name:    "limit and tail mutually exclusive",
			cfg:     Config{Limit: 10, Tail: 5},
			wantErr: true,
			errMsg:  "mutually exclusive",
		},
		{
			name:    "negative limit invalid",
			cfg:     Config{Limit: -1},
			wantErr: true,
			errMsg:  "non-negative",
		},
		{
			name:    "negative offset invalid",
			cfg:     Config{Offset: -1},
			wantErr: true,
			errMsg:  "non-negative",
		},
		{
			name:    "negative tail invalid",
			cfg:     Config{Tail: -1},
			wantErr: true,
			errMsg:  "non-negative",
		},
		{
			name: "zero values valid",
			cfg:  Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestIsActive(t *testing.T) {
	assert.False(t, Config{}.IsActive())
	assert.True(t, Config{Limit: 1}.IsActive())
	assert.True(t, Config{Offset: 1}.IsActive())
	assert.True(t, Config{Tail: 1}.IsActive())
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		n         int
		wantStart int
		wantEnd   int
	}{
		{"inactive", Config{}, 10, 0, 10},
		{"limit", Config{Limit: 3}, 10, 0, 3},
		{"offset", Config{Offset: 4}, 10, 4, 10},
		{"offset and limit", Config{Offset: 4, Limit: 3}, 10, 4, 7},
		{"limit past end", Config{Offset: 8, Limit: 5}, 10, 8, 10},
		{"offset past end", Config{Offset: 20}, 10, 10, 10},
		{"tail", Config{Tail: 3}, 10, 7, 10},
		{"tail larger than table", Config{Tail: 30}, 10, 0, 10},
		{"tail ignores offset", Config{Tail: 2, Offset: 1}, 10, 8, 10},
		{"empty table", Config{Limit: 5}, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.cfg.Window(tt.n)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func numberedTable(n int) *record.Table {
	rows := make([]record.Row, n)
	for i := range rows {
		rows[i] = record.NewRow([]string{fmt.Sprint(i)}, 1)
	}
	return record.NewTable(record.NewRow([]string{"n"}, 1), rows, 1)
}

func TestApply(t *testing.T) {
	tbl := numberedTable(10)

	assert.Same(t, tbl, Config{}.Apply(tbl))

	got := Config{Offset: 2, Limit: 3}.Apply(tbl)
	require.Equal(t, 3, got.RowCount())
	assert.Equal(t, "2", got.Cell(0, 0).Value())
	assert.Equal(t, 3, got.RowNumber(0), "row numbers refer to the source file")
	assert.True(t, got.HasHeader())

	got = Config{Tail: 2}.Apply(tbl)
	require.Equal(t, 2, got.RowCount())
	assert.Equal(t, "9", got.Cell(1, 0).Value())

	assert.Nil(t, Config{Limit: 1}.Apply(nil))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", Config{}.Describe(10))
	assert.Equal(t, "rows 3-5 of 10", Config{Offset: 2, Limit: 3}.Describe(10))
	assert.Equal(t, "rows 9-10 of 10", Config{Tail: 2}.Describe(10))
	assert.Equal(t, "no rows of 10", Config{Offset: 10}.Describe(10))
}
