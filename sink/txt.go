package sink

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

type txtSink struct {
	file        *os.File
	w           *bufio.Writer
	writeHeader bool
}

func openTXT(path string, o options) (Sink, error) {
	f, err := openFile(path, o.append)
	if err != nil {
		return nil, fmt.Errorf("sink: %w", err)
	}
	return &txtSink{file: f, w: bufio.NewWriter(f), writeHeader: o.header}, nil
}

func (s *txtSink) WriteBatch(header []string, rows [][]any) error {
	if s.writeHeader {
		s.writeHeader = false
		if _, err := s.w.WriteString(strings.Join(header, "\t") + "\n"); err != nil {
			return fmt.Errorf("sink: %w", err)
		}
	}
	fields := make([]string, 0, len(header))
	for _, row := range rows {
		fields = fields[:0]
		for _, v := range row {
			fields = append(fields, formatValue(v))
		}
		if _, err := s.w.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return fmt.Errorf("sink: %w", err)
		}
	}
	return nil
}

func (s *txtSink) Close() error {
	if err := s.w.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
