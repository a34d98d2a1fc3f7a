// Package store persists confirmed orders.
package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"maitred/internal/models"

	"go.uber.org/zap"
)

// Record is one line of the JSON Lines order log
type Record struct {
	ID          string         `json:"id"`
	SessionID   string         `json:"session_id"`
	Items       map[string]int `json:"items"`
	Total       float64        `json:"total"`
	ConfirmedAt time.Time      `json:"confirmed_at"`
}

// maxTracked bounds how many recent order IDs a FileStore remembers
const maxTracked = 4096

// fileMark records which of the two files already hold an order
type fileMark uint8

const (
	wroteCSV fileMark = 1 << iota
	wroteJSON
)

// FileStore appends orders to a CSV file of priced lines and a JSON Lines
// file of order records. Either path may be empty to disable that file.
// The two files are not written atomically together, so the store remembers
// per order ID which files were written; a retried confirmation only
// appends to the files that missed it.
type FileStore struct {
	csvPath  string
	jsonPath string
	logger   *zap.Logger

	mu        sync.Mutex
	marks     map[string]fileMark
	markOrder []string
}

// NewFileStore creates a file store
func NewFileStore(csvPath, jsonPath string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{
		csvPath:  csvPath,
		jsonPath: jsonPath,
		logger:   logger,
		marks:    make(map[string]fileMark),
	}
}

// Append writes the order to both files. Existing content is never rewritten,
// and a file that already holds the order ID is skipped.
func (s *FileStore) Append(ctx context.Context, order models.ConfirmedOrder) error {
	if err := ctx.Err(); err != nil {
		return &models.PersistenceError{Sink: "file", Err: err}
	}

	rows, err := encodeCSV(order)
	if err != nil {
		return &models.PersistenceError{Sink: s.csvPath, Err: err}
	}
	record, err := encodeRecord(order)
	if err != nil {
		return &models.PersistenceError{Sink: s.jsonPath, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	done := s.marks[order.ID]
	if done == wroteCSV|wroteJSON {
		s.logger.Debug("Order already in files", zap.String("order", order.ID))
		return nil
	}
	if s.csvPath != "" && done&wroteCSV == 0 {
		if err := appendFile(s.csvPath, rows); err != nil {
			return &models.PersistenceError{Sink: s.csvPath, Err: err}
		}
		done |= wroteCSV
		s.mark(order.ID, done)
	}
	if s.jsonPath != "" && done&wroteJSON == 0 {
		if err := appendFile(s.jsonPath, record); err != nil {
			return &models.PersistenceError{Sink: s.jsonPath, Err: err}
		}
		done |= wroteJSON
		s.mark(order.ID, done)
	}

	s.logger.Debug("Order appended to files",
		zap.String("order", order.ID),
		zap.String("csv", s.csvPath),
		zap.String("jsonl", s.jsonPath))
	return nil
}

// mark remembers which files hold id, evicting the oldest ID past maxTracked.
// Orders without an ID are never tracked. Callers hold s.mu.
func (s *FileStore) mark(id string, m fileMark) {
	if id == "" {
		return
	}
	if _, ok := s.marks[id]; !ok {
		s.markOrder = append(s.markOrder, id)
		if len(s.markOrder) > maxTracked {
			delete(s.marks, s.markOrder[0])
			s.markOrder = s.markOrder[1:]
		}
	}
	s.marks[id] = m
}

// ReadRecords parses a JSON Lines order log
func ReadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read order log: %w", err)
	}

	var records []Record
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var r Record
		if err := dec.Decode(&r); err != nil {
			return records, fmt.Errorf("failed to decode order record %d: %w", len(records)+1, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// encodeCSV renders one item,quantity,line_total row per order line
func encodeCSV(order models.ConfirmedOrder) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, line := range order.Lines {
		row := []string{line.Item, strconv.Itoa(line.Quantity), line.Subtotal.String()}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func encodeRecord(order models.ConfirmedOrder) ([]byte, error) {
	data, err := json.Marshal(Record{
		ID:          order.ID,
		SessionID:   order.SessionID,
		Items:       order.Items(),
		Total:       order.Total.Float(),
		ConfirmedAt: order.ConfirmedAt,
	})
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func appendFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
