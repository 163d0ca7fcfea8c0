package sink

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/xuri/excelize/v2"
)

type excelSink struct {
	f           *excelize.File
	path        string
	sheet       string
	nextRow     int
	existing    bool
	writeHeader bool
}

func openExcel(path string, o options) (Sink, error) {
	if o.append {
		if _, err := os.Stat(path); err == nil {
			return appendExcel(path, o)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("sink: %w", err)
		}
	}
	f := excelize.NewFile()
	return &excelSink{
		f:           f,
		path:        path,
		sheet:       f.GetSheetName(0),
		nextRow:     1,
		writeHeader: o.header,
	}, nil
}

func appendExcel(path string, o options) (Sink, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("sink: %w", err)
	}
	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sink: %w", err)
	}
	return &excelSink{
		f:        f,
		path:     path,
		sheet:    sheet,
		nextRow:  len(rows) + 1,
		existing: true,
		// An existing sheet keeps its header; never write a second one.
		writeHeader: o.header && len(rows) == 0,
	}, nil
}

func (s *excelSink) WriteBatch(header []string, rows [][]any) error {
	if s.writeHeader {
		s.writeHeader = false
		cells := make([]any, len(header))
		for i, h := range header {
			cells[i] = h
		}
		if err := s.setRow(cells); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if err := s.setRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *excelSink) setRow(cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, s.nextRow)
	if err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	if err := s.f.SetSheetRow(s.sheet, cell, &cells); err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	s.nextRow++
	return nil
}

func (s *excelSink) Close() error {
	defer s.f.Close()
	if s.existing {
		if err := s.f.Save(); err != nil {
			return fmt.Errorf("sink: %w", err)
		}
		return nil
	}
	if err := s.f.SaveAs(s.path); err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	return nil
}
