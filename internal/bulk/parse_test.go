package bulk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSVSimple(t *testing.T) {
	data := []byte("Name,Phone Number,Email,Campaign,Notes\n" +
		"Jane Doe,111222,jane@example.com,summer,senior\n" +
		"John Roe,333444,john@example.com,,\n")

	rows, err := ParseCSV(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Name: "Jane Doe", PhoneNumber: "111222", Email: "jane@example.com", Campaign: "summer", Notes: "senior"}, rows[0])
	assert.Equal(t, "John Roe", rows[1].Name)
	assert.Empty(t, rows[1].Campaign)
}

func TestParseCSVHeaderNotFirstRow(t *testing.T) {
	data := []byte("Candidate export,,\n" +
		"Generated 2026-01-05,,\n" +
		"Full Name,Telephone,E-Mail\n" +
		"Jane,111,jane@example.com\n")

	rows, err := ParseCSV(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane", rows[0].Name)
	assert.Equal(t, "111", rows[0].PhoneNumber)
	assert.Equal(t, "jane@example.com", rows[0].Email)
}

func TestParseCSVSkipsBlankRows(t *testing.T) {
	data := []byte("Name,Phone\n" +
		"Jane,111\n" +
		",\n" +
		"  ,  \n" +
		"John,222\n")

	rows, err := ParseCSV(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jane", rows[0].Name)
	assert.Equal(t, "John", rows[1].Name)
}

func TestParseCSVRaggedRows(t *testing.T) {
	data := []byte("Name,Phone,Email\n" +
		"Jane,111\n" +
		"John,222,john@example.com,extra\n")

	rows, err := ParseCSV(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Empty(t, rows[0].Email)
	assert.Equal(t, "john@example.com", rows[1].Email)
}

func TestParseCSVNoHeader(t *testing.T) {
	data := []byte("a,b,c\n1,2,3\n")

	_, err := ParseCSV(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestColumnFor(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Name", "name"},
		{"Full Name", "name"},
		{"  PHONE  ", "phone_number"},
		{"Telephone", "phone_number"},
		{"E-Mail", "email"},
		{"Campaign ID", "campaign"},
		{"Notes", "notes"},
		{"Salary", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, columnFor(tt.header), "header %q", tt.header)
	}
}

func buildWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, name, cell))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseExcel(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"Name", "Phone", "Email"},
		{"Jane", "111", "jane@example.com"},
		{"", "", ""},
		{"John", "222", ""},
	})

	rows, err := ParseExcel(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jane", rows[0].Name)
	assert.Equal(t, "222", rows[1].PhoneNumber)
}

func TestParseExcelNotAWorkbook(t *testing.T) {
	_, err := ParseExcel([]byte("definitely not a zip"))
	require.Error(t, err)
}
