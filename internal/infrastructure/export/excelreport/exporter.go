package excelreport

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

const (
	sheetSources    = "Sources"
	sheetThemes     = "Key Themes"
	sheetCrossLinks = "Cross Links"
)

// Exporter renders a merged knowledge graph as an XLSX workbook with one
// sheet per graph dimension.
type Exporter struct{}

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Export(ctx context.Context, graph *domain.KnowledgeGraph) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSources(f, graph); err != nil {
		return nil, err
	}
	if err := writeThemes(f, graph); err != nil {
		return nil, err
	}
	if err := writeCrossLinks(f, graph); err != nil {
		return nil, err
	}

	// The default sheet is replaced by Sources.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(sheetSources)
	if err != nil {
		return nil, fmt.Errorf("locate sources sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSources(f *excelize.File, graph *domain.KnowledgeGraph) error {
	if _, err := f.NewSheet(sheetSources); err != nil {
		return fmt.Errorf("create sources sheet: %w", err)
	}
	if err := writeRow(f, sheetSources, 1, []any{"Source ID", "Title", "Authors", "Atoms", "Figures"}); err != nil {
		return err
	}
	for i, src := range graph.Sources {
		row := []any{src.SourceID, src.Title, strings.Join(src.Authors, ", "), src.AtomCount, src.FigureCount}
		if err := writeRow(f, sheetSources, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeThemes(f *excelize.File, graph *domain.KnowledgeGraph) error {
	if _, err := f.NewSheet(sheetThemes); err != nil {
		return fmt.Errorf("create themes sheet: %w", err)
	}
	if err := writeRow(f, sheetThemes, 1, []any{"Topic", "Atoms", "Sources"}); err != nil {
		return err
	}
	for i, theme := range graph.KeyThemes {
		row := []any{theme.Topic, theme.AtomCount, strings.Join(theme.SourceIDs, ", ")}
		if err := writeRow(f, sheetThemes, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCrossLinks(f *excelize.File, graph *domain.KnowledgeGraph) error {
	if _, err := f.NewSheet(sheetCrossLinks); err != nil {
		return fmt.Errorf("create cross links sheet: %w", err)
	}
	header := []any{"Link ID", "Source Atom", "Source", "Target Atom", "Target Source", "Relationship", "Confidence"}
	if err := writeRow(f, sheetCrossLinks, 1, header); err != nil {
		return err
	}
	for i, link := range graph.CrossLinks {
		row := []any{
			link.ID, link.SourceAtomID, link.SourceID,
			link.TargetAtomID, link.TargetSourceID,
			link.Relationship, link.Confidence,
		}
		if err := writeRow(f, sheetCrossLinks, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolve cell for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
