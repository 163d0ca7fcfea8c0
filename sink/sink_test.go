package sink_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/suri14878/sqlexec/sink"
)

var (
	header = []string{"id", "name"}
	rows   = [][]any{
		{1, "alpha"},
		{2, "beta"},
		{nil, []byte("gamma")},
	}
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want sink.Format
		ok   bool
	}{
		{"csv", sink.CSV, true},
		{"CSV", sink.CSV, true},
		{"txt", sink.TXT, true},
		{"xlsx", sink.Excel, true},
		{"parquet", "", false},
	}
	for _, tt := range tests {
		got, err := sink.ParseFormat(tt.in)
		if !tt.ok {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")

	s, err := sink.Open(sink.CSV, path)
	require.NoError(t, err)
	require.NoError(t, s.WriteBatch(header, rows[:2]))
	require.NoError(t, s.WriteBatch(header, rows[2:]))
	require.NoError(t, s.Close())

	lines := readLines(t, path+".csv")
	require.Equal(t, []string{"id,name", "1,alpha", "2,beta", ",gamma"}, lines)
}

func TestCSVCustomDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	s, err := sink.Open(sink.CSV, path, sink.WithDelimiter('|'))
	require.NoError(t, err)
	require.NoError(t, s.WriteBatch(header, rows[:1]))
	require.NoError(t, s.Close())

	lines := readLines(t, path)
	require.Equal(t, []string{"id|name", "1|alpha"}, lines)
}

func TestCSVAppendWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	s, err := sink.Open(sink.CSV, path)
	require.NoError(t, err)
	require.NoError(t, s.WriteBatch(header, rows[:1]))
	require.NoError(t, s.Close())

	s, err = sink.Open(sink.CSV, path, sink.WithAppend(), sink.WithoutHeader())
	require.NoError(t, err)
	require.NoError(t, s.WriteBatch(header, rows[1:2]))
	require.NoError(t, s.Close())

	lines := readLines(t, path)
	require.Equal(t, []string{"id,name", "1,alpha", "2,beta"}, lines)
}

func TestTXTTabSeparated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")

	s, err := sink.Open(sink.TXT, path)
	require.NoError(t, err)
	require.NoError(t, s.WriteBatch(header, rows))
	require.NoError(t, s.Close())

	lines := readLines(t, path+".txt")
	require.Equal(t, "id\tname", lines[0])
	require.Equal(t, "1\talpha", lines[1])
	require.Equal(t, "\tgamma", lines[3])
}

func TestExcelRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	s, err := sink.Open(sink.Excel, path)
	require.NoError(t, err)
	require.NoError(t, s.WriteBatch(header, rows[:2]))
	require.NoError(t, s.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []string{"id", "name"}, got[0])
	require.Equal(t, []string{"1", "alpha"}, got[1])
}

func TestExcelAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	s, err := sink.Open(sink.Excel, path)
	require.NoError(t, err)
	require.NoError(t, s.WriteBatch(header, rows[:1]))
	require.NoError(t, s.Close())

	s, err = sink.Open(sink.Excel, path, sink.WithAppend())
	require.NoError(t, err)
	require.NoError(t, s.WriteBatch(header, rows[1:2]))
	require.NoError(t, s.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	// One header plus two data rows; the second open must not repeat the
	// header.
	require.Len(t, got, 3)
	require.Equal(t, []string{"2", "beta"}, got[2])
}

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "out")

	s, err := sink.Open(sink.CSV, path)
	require.NoError(t, err)
	require.NoError(t, s.WriteBatch(header, rows[:1]))
	require.NoError(t, s.Close())

	require.FileExists(t, path+".csv")
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
