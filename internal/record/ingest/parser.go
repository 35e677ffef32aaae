package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shandysiswandi/gorecord/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gorecord/internal/record/entity"
)

// Resolver maps a raw header to a record field name.
type Resolver interface {
	Resolve(header string) string
}

// Parser turns uploaded spreadsheets into normalized records.
type Parser struct {
	resolver Resolver
}

func NewParser(resolver Resolver) *Parser {
	return &Parser{resolver: resolver}
}

// Parse reads the first sheet holding data. The first non-empty row is the
// header row; every following non-empty row becomes one record.
func (p *Parser) Parse(ctx context.Context, filename string, data []byte) ([]entity.Record, error) {
	if len(data) == 0 {
		return nil, pkgerror.NewInvalidInput(errors.New("uploaded file is empty"))
	}

	var rows [][]string
	var err error

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(data)
	case ".xls":
		rows, err = readXLS(data)
	case ".csv":
		rows, err = readCSV(data)
	default:
		return nil, pkgerror.NewInvalidInput(fmt.Errorf("unsupported file type %q", ext))
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to read spreadsheet", "filename", filename, "error", err)
		return nil, pkgerror.NewInvalidInput(fmt.Errorf("read %s: %w", filename, err))
	}

	records := p.toRecords(rows)
	if len(records) == 0 {
		return nil, pkgerror.NewInvalidInput(errors.New("spreadsheet has no data rows"))
	}

	slog.InfoContext(ctx, "spreadsheet parsed", "filename", filename, "rows", len(records))
	return records, nil
}

func (p *Parser) toRecords(rows [][]string) []entity.Record {
	start := 0
	for start < len(rows) && isBlankRow(rows[start]) {
		start++
	}
	if start >= len(rows) {
		return nil
	}

	header := rows[start]
	fields := make([]string, len(header))
	for i, h := range header {
		if cleanHeader(h) == "" {
			continue
		}
		field := cleanHeader(h)
		if p.resolver != nil {
			field = p.resolver.Resolve(h)
		}
		if entity.IsReserved(field) {
			continue
		}
		fields[i] = field
	}

	records := make([]entity.Record, 0, len(rows)-start-1)
	for _, row := range rows[start+1:] {
		if isBlankRow(row) {
			continue
		}

		rec := entity.NewRecord()
		for i, cell := range row {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			rec.Set(fields[i], entity.String(cell))
		}
		if rec.Len() > 0 {
			records = append(records, rec)
		}
	}

	return records
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
