// Package repository persists accounts and the transaction log as flat
// header-rowed CSV files.
package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Kamran7679/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// TimeLayout is the timestamp format used in both store files.
const TimeLayout = "2006-01-02 15:04:05"

var txHeader = []string{"username", "timestamp", "amount", "type", "category"}

// TransactionLog is an append-only record store of money-movement events.
// A missing file is treated as an empty log.
type TransactionLog struct {
	path string
	log  *logrus.Logger
	mu   sync.Mutex
}

// NewTransactionLog initializes a transaction log backed by the given file
func NewTransactionLog(path string, log *logrus.Logger) *TransactionLog {
	return &TransactionLog{path: path, log: log}
}

// Append writes a single record to the end of the log. The header row is
// written when the file is created.
func (l *TransactionLog) Append(rec models.TransactionRecord) error {
	return l.AppendAll(rec)
}

// AppendAll writes records through one open-and-flush, so the entries of a
// multi-record operation (both sides of a transfer) land together or not
// at all.
func (l *TransactionLog) AppendAll(records ...models.TransactionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open transaction log: %w", err)
	}

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(txHeader); err != nil {
			f.Close()
			return fmt.Errorf("failed to write log header: %w", err)
		}
	}
	for _, rec := range records {
		row := []string{
			strings.ToLower(rec.Username),
			rec.Timestamp.Format(TimeLayout),
			rec.Amount.String(),
			string(rec.Kind),
			rec.Category,
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("failed to append transaction: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush transaction log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close transaction log: %w", err)
	}
	return nil
}

// ReadAllFor returns every record for the given user in append order.
// Rows with unparsable timestamps or amounts are skipped.
func (l *TransactionLog) ReadAllFor(username string) ([]models.TransactionRecord, error) {
	username = strings.ToLower(username)

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction log: %w", err)
	}

	var records []models.TransactionRecord
	for i, row := range rows {
		if i == 0 || len(row) < 5 {
			continue
		}
		if strings.ToLower(row[0]) != username {
			continue
		}
		ts, err := parseTimestamp(row[1])
		if err != nil {
			l.log.Warnf("Skipping log row %d: bad timestamp %q", i, row[1])
			continue
		}
		amount, err := decimal.NewFromString(row[2])
		if err != nil {
			l.log.Warnf("Skipping log row %d: bad amount %q", i, row[2])
			continue
		}
		records = append(records, models.TransactionRecord{
			Username:  strings.ToLower(row[0]),
			Timestamp: ts,
			Amount:    amount,
			Kind:      models.TransactionKind(row[3]),
			Category:  row[4],
		})
	}
	return records, nil
}

// ReadRecent returns the last n records for the user in reverse-chronological
// order, for display purposes.
func (l *TransactionLog) ReadRecent(username string, n int) ([]models.TransactionRecord, error) {
	all, err := l.ReadAllFor(username)
	if err != nil {
		return nil, err
	}
	if n > len(all) {
		n = len(all)
	}
	recent := make([]models.TransactionRecord, 0, n)
	for i := len(all) - 1; i >= len(all)-n; i-- {
		recent = append(recent, all[i])
	}
	return recent, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{TimeLayout, "2006-01-02 15:04:05.999999", time.RFC3339} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
