package sheetsclient

import (
	"context"
	"fmt"

	"github.com/jakechorley/badge-groups/pkg/core/model"
	"github.com/jakechorley/badge-groups/pkg/records"
)

// ValuesReader is the part of Client a preference sheet needs
type ValuesReader interface {
	GetValues(ctx context.Context, spreadsheetID, sheetRange string) ([][]interface{}, error)
}

// SheetSource reads preferences from one tab of a spreadsheet, typically
// the responses tab of a Google Form
type SheetSource struct {
	Reader  ValuesReader
	SheetID string
	Tab     string
	Layout  records.Layout
}

// Load fetches the tab and parses it
func (s SheetSource) Load(ctx context.Context) ([]model.PreferenceRecord, error) {
	values, err := s.Reader.GetValues(ctx, s.SheetID, s.Tab)
	if err != nil {
		return nil, fmt.Errorf("failed to get preference data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	prefs, err := records.FromRows(values, s.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}

	return prefs, nil
}

// Describe names the source for logs and reports
func (s SheetSource) Describe() string {
	return fmt.Sprintf("sheet:%s/%s", s.SheetID, s.Tab)
}
