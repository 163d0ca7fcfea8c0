package sink

import (
	"encoding/csv"
	"fmt"
	"os"
)

type csvSink struct {
	file        *os.File
	w           *csv.Writer
	writeHeader bool
}

func openCSV(path string, o options) (Sink, error) {
	f, err := openFile(path, o.append)
	if err != nil {
		return nil, fmt.Errorf("sink: %w", err)
	}
	w := csv.NewWriter(f)
	w.Comma = o.delimiter
	return &csvSink{file: f, w: w, writeHeader: o.header}, nil
}

func (s *csvSink) WriteBatch(header []string, rows [][]any) error {
	if s.writeHeader {
		s.writeHeader = false
		if err := s.w.Write(header); err != nil {
			return fmt.Errorf("sink: %w", err)
		}
	}
	record := make([]string, 0, len(header))
	for _, row := range rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, formatValue(v))
		}
		if err := s.w.Write(record); err != nil {
			return fmt.Errorf("sink: %w", err)
		}
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *csvSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
