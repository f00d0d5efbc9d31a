package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const scheduleCSV = `stage_id,stage_name,match_id,team_a,team_b,match_time_iso,winner_team
1,Groups,M1,Team X,Team Y,2025-08-01T15:00:00Z,

1,Groups,M2,Team Z,Team W,2025-08-01T18:00:00Z,Team W
`

func TestFactory_GetParser(t *testing.T) {
	factory := NewFactory()
	tests := []struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}{
		{name: "csv file", filename: "schedule.csv", want: "csv"},
		{name: "upper case csv", filename: "SCHEDULE.CSV", want: "csv"},
		{name: "no extension", filename: "schedule", want: "csv"},
		{name: "xlsx file", filename: "schedule.xlsx", want: "xlsx"},
		{name: "unsupported file", filename: "schedule.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := factory.GetParser(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			switch tt.want {
			case "csv":
				_, ok := p.(*CSVParser)
				require.True(t, ok)
			case "xlsx":
				_, ok := p.(*XLSXParser)
				require.True(t, ok)
			}
		})
	}
}

func TestCSVParser_Parse(t *testing.T) {
	table, err := NewCSVParser().Parse([]byte(scheduleCSV))
	require.NoError(t, err)

	assert.Equal(t, ScheduleColumns, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Empty(t, table.Missing(ScheduleColumns))

	assert.Equal(t, "M1", table.Get(table.Rows[0], "match_id"))
	assert.Equal(t, "", table.Get(table.Rows[0], "winner_team"))
	assert.Equal(t, "Team W", table.Get(table.Rows[1], "winner_team"))
	assert.Equal(t, 4, table.Rows[1].Line)
	assert.Equal(t, "", table.Get(table.Rows[0], "no_such_column"))
}

func TestCSVParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "blank lines only", data: "\n,,\n"},
		{name: "bad quoting", data: "stage_id,match_id\n1,\"M1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVParser().Parse([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestTable_Missing(t *testing.T) {
	table, err := NewCSVParser().Parse([]byte("Stage_ID, match_id ,team_a\n1,M1,X\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"stage_name", "team_b", "match_time_iso", "winner_team"}, table.Missing(ScheduleColumns))
}

func TestXLSXParser_Parse(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"stage_id", "stage_name", "match_id", "team_a", "team_b", "match_time_iso", "winner_team"},
		{"1", "Groups", "M1", "Team X", "Team Y", "2025-08-01T15:00:00Z", ""},
		{"2", "Playoffs", "M3", "Team X", "Team Z", "2025-08-03T15:00:00Z", "Team Z"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := NewXLSXParser().Parse(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "M3", table.Get(table.Rows[1], "match_id"))
	assert.Equal(t, "2025-08-03T15:00:00Z", table.Get(table.Rows[1], "match_time_iso"))
}

func TestXLSXParser_NotAWorkbook(t *testing.T) {
	_, err := NewXLSXParser().Parse([]byte(scheduleCSV))
	require.Error(t, err)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	out, err := WriteCSV(ScheduleColumns, [][]string{
		{"1", "Groups", "M1", "Team X", "Team Y", "2025-08-01T15:00:00Z", ""},
	})
	require.NoError(t, err)

	table, err := NewCSVParser().Parse(out)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Team Y", table.Get(table.Rows[0], "team_b"))
}
