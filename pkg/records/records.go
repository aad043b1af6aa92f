// Package records reads raw preference tables. A table has a header row
// naming a person column and one column per badge; every following row is
// one person's answers.
package records

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jakechorley/badge-groups/pkg/core/model"
)

// DefaultNameColumn is the header of the person column when none is configured
const DefaultNameColumn = "Name"

// ErrNoHeader is returned for a table with no rows at all
var ErrNoHeader = errors.New("no header row found")

// Layout names the person column and any columns that are not badges, such
// as a form's Timestamp column
type Layout struct {
	NameColumn string
	Ignore     []string
}

func (l Layout) nameColumn() string {
	if name := strings.TrimSpace(l.NameColumn); name != "" {
		return name
	}
	return DefaultNameColumn
}

func (l Layout) ignored(header string) bool {
	for _, col := range l.Ignore {
		if strings.TrimSpace(col) == header {
			return true
		}
	}
	return false
}

// FromRows parses a table of cell values, as returned by the sheets API.
// Non-string cells are formatted with fmt. Columns with a blank header are
// ignored and rows with a blank name are skipped.
func FromRows(rows [][]interface{}, layout Layout) ([]model.PreferenceRecord, error) {
	table := make([][]string, len(rows))
	for i, row := range rows {
		table[i] = make([]string, len(row))
		for j, cell := range row {
			switch v := cell.(type) {
			case nil:
			case string:
				table[i][j] = v
			default:
				table[i][j] = fmt.Sprint(v)
			}
		}
	}
	return parse(table, layout)
}

// FromCSV parses a CSV table
func FromCSV(r io.Reader, layout Layout) ([]model.PreferenceRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	table, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return parse(table, layout)
}

func parse(table [][]string, layout Layout) ([]model.PreferenceRecord, error) {
	if len(table) == 0 {
		return nil, ErrNoHeader
	}
	nameColumn := layout.nameColumn()

	// Build column index from header row
	nameIndex := -1
	badgeIndexes := make(map[string]int)
	var badgeOrder []string
	for i, cell := range table[0] {
		header := strings.TrimSpace(cell)
		if header == "" || layout.ignored(header) {
			continue
		}
		if header == nameColumn {
			if nameIndex >= 0 {
				return nil, fmt.Errorf("duplicate column in header: %s", header)
			}
			nameIndex = i
			continue
		}
		if _, ok := badgeIndexes[header]; ok {
			return nil, fmt.Errorf("duplicate column in header: %s", header)
		}
		badgeIndexes[header] = i
		badgeOrder = append(badgeOrder, header)
	}
	if nameIndex == -1 {
		return nil, fmt.Errorf("missing required field in header: %s", nameColumn)
	}

	getField := func(index int, row []string) string {
		if index >= len(row) {
			return ""
		}
		return row[index]
	}

	records := make([]model.PreferenceRecord, 0, len(table)-1)
	for i := 1; i < len(table); i++ {
		row := table[i]

		name := strings.TrimSpace(getField(nameIndex, row))
		// Skip empty rows (rows with no name)
		if name == "" {
			continue
		}

		tokens := make(map[string]string, len(badgeOrder))
		for _, badge := range badgeOrder {
			tokens[badge] = strings.TrimSpace(getField(badgeIndexes[badge], row))
		}
		records = append(records, model.PreferenceRecord{Name: name, Tokens: tokens})
	}

	return records, nil
}

// CSVFile is a preference table on disk
type CSVFile struct {
	Path   string
	Layout Layout
}

// Load reads and parses the file
func (f CSVFile) Load(ctx context.Context) ([]model.PreferenceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open preference file: %w", err)
	}
	defer file.Close()

	records, err := FromCSV(file, f.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.Path, err)
	}
	return records, nil
}

// Describe names the source for logs and reports
func (f CSVFile) Describe() string {
	return "csv:" + f.Path
}
