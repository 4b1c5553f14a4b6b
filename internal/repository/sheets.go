package repository

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/RaikyD/wc-tracking-service/internal/domain"
	"github.com/RaikyD/wc-tracking-service/internal/logger"
)

// SheetsStore appends rows to a Google Sheet. The first row of the range is
// the header row.
type SheetsStore struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	readRange     string
}

func NewSheetsStore(ctx context.Context, credentialsFile, spreadsheetID, readRange string) (*SheetsStore, error) {
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &SheetsStore{
		values:        srv.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
	}, nil
}

// EnsureHeader writes the header row when the sheet is empty.
func (s *SheetsStore) EnsureHeader(ctx context.Context, cols domain.Columns) error {
	resp, err := s.values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreRead, err)
	}
	if len(resp.Values) > 0 {
		return nil
	}
	logger.Info("sheet empty, writing header", "sheet", s.spreadsheetID)
	return s.Append(ctx, cols.Headers())
}

func (s *SheetsStore) Append(ctx context.Context, row []string) error {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	_, err := s.values.Append(s.spreadsheetID, s.readRange, &sheets.ValueRange{
		Values: [][]interface{}{cells},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreAppend, err)
	}
	return nil
}

func (s *SheetsStore) ReadAll(ctx context.Context) ([]domain.Record, error) {
	resp, err := s.values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreRead, err)
	}
	return recordsFromGrid(resp.Values), nil
}

func recordsFromGrid(grid [][]interface{}) []domain.Record {
	if len(grid) == 0 {
		return nil
	}
	header := cellsToStrings(grid[0])
	out := make([]domain.Record, 0, len(grid)-1)
	for _, row := range grid[1:] {
		out = append(out, domain.NewRecord(header, cellsToStrings(row)))
	}
	return out
}

func cellsToStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c == nil {
			continue
		}
		out[i] = fmt.Sprint(c)
	}
	return out
}
