package harness

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVHeader is the first row of every results file.
var CSVHeader = []string{"MatrixSize", "Run", "TimeSeconds", "RealMemoryMB"}

// csvWriter appends samples to a results file.
type csvWriter struct {
	w *csv.Writer
}

func newCSVWriter(w io.Writer) (*csvWriter, error) {
	cw := &csvWriter{w: csv.NewWriter(w)}
	if err := cw.w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	return cw, nil
}

func (cw *csvWriter) write(s Sample) error {
	if err := cw.w.Write(formatRow(s)); err != nil {
		return fmt.Errorf("write row %d/%d: %w", s.Size, s.Run, err)
	}

	return nil
}

func (cw *csvWriter) flush() error {
	cw.w.Flush()

	return cw.w.Error()
}

func formatRow(s Sample) []string {
	return []string{
		strconv.Itoa(s.Size),
		strconv.Itoa(s.Run),
		strconv.FormatFloat(s.Seconds, 'f', 5, 64),
		strconv.FormatFloat(s.MemoryMB, 'f', 5, 64),
	}
}
