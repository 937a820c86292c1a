package repository

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Kamran7679/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func record(t *testing.T, username, amount string, kind models.TransactionKind, category string, ts time.Time) models.TransactionRecord {
	t.Helper()
	return models.TransactionRecord{
		Username:  username,
		Timestamp: ts,
		Amount:    dec(t, amount),
		Kind:      kind,
		Category:  category,
	}
}

func TestTransactionLogMissingFileIsEmpty(t *testing.T) {
	l := NewTransactionLog(filepath.Join(t.TempDir(), "transactions.csv"), testLogger())

	records, err := l.ReadAllFor("alice")
	if err != nil {
		t.Fatalf("ReadAllFor on missing file: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records, want 0", len(records))
	}
}

func TestTransactionLogAppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")
	l := NewTransactionLog(path, testLogger())

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := l.Append(record(t, "alice", "100", models.KindExpense, "Food", base)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Append(record(t, "bob", "50", models.KindIncome, "General", base.Add(time.Hour))); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Append(record(t, "Alice", "25.50", models.KindExpense, "Transport", base.Add(2*time.Hour))); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "username,timestamp,amount,type,category" {
		t.Fatalf("header = %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4 (header + 3 records)", len(lines))
	}

	records, err := l.ReadAllFor("alice")
	if err != nil {
		t.Fatalf("ReadAllFor: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d alice records, want 2", len(records))
	}
	// Append order, usernames lowercased.
	if records[0].Category != "Food" || records[1].Category != "Transport" {
		t.Fatalf("records out of append order: %v", records)
	}
	if records[1].Username != "alice" {
		t.Fatalf("username not lowercased: %q", records[1].Username)
	}
	if !records[0].Amount.Equal(dec(t, "100")) {
		t.Fatalf("amount = %s, want 100", records[0].Amount)
	}
	if !records[0].Timestamp.Equal(base) {
		t.Fatalf("timestamp = %v, want %v", records[0].Timestamp, base)
	}
}

func TestTransactionLogReadRecent(t *testing.T) {
	l := NewTransactionLog(filepath.Join(t.TempDir(), "transactions.csv"), testLogger())

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	categories := []string{"a", "b", "c", "d", "e"}
	for i, c := range categories {
		if err := l.Append(record(t, "alice", "10", models.KindExpense, c, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	recent, err := l.ReadRecent("alice", 3)
	if err != nil {
		t.Fatalf("ReadRecent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d records, want 3", len(recent))
	}
	// Reverse-chronological for display.
	for i, want := range []string{"e", "d", "c"} {
		if recent[i].Category != want {
			t.Fatalf("recent[%d].Category = %q, want %q", i, recent[i].Category, want)
		}
	}

	all, err := l.ReadRecent("alice", 10)
	if err != nil {
		t.Fatalf("ReadRecent over count: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("got %d records, want 5", len(all))
	}
}

func TestTransactionLogAppendAllWritesTogether(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")
	l := NewTransactionLog(path, testLogger())

	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	err := l.AppendAll(
		record(t, "alice", "300", models.KindTransferOut, "bob", ts),
		record(t, "bob", "300", models.KindTransferIn, "alice", ts),
	)
	if err != nil {
		t.Fatalf("AppendAll: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (header + both transfer records)", len(lines))
	}

	out, err := l.ReadAllFor("alice")
	if err != nil {
		t.Fatalf("ReadAllFor: %v", err)
	}
	in, err := l.ReadAllFor("bob")
	if err != nil {
		t.Fatalf("ReadAllFor: %v", err)
	}
	if len(out) != 1 || out[0].Kind != models.KindTransferOut {
		t.Fatalf("sender records = %+v", out)
	}
	if len(in) != 1 || in[0].Kind != models.KindTransferIn {
		t.Fatalf("receiver records = %+v", in)
	}
}

func TestTransactionLogAppendSurfacesIOError(t *testing.T) {
	// The log directory does not exist, so every open must fail.
	path := filepath.Join(t.TempDir(), "missing", "transactions.csv")
	l := NewTransactionLog(path, testLogger())

	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := l.Append(record(t, "alice", "10", models.KindExpense, "Food", ts)); err == nil {
		t.Fatal("Append into missing directory succeeded")
	}
	err := l.AppendAll(
		record(t, "alice", "10", models.KindTransferOut, "bob", ts),
		record(t, "bob", "10", models.KindTransferIn, "alice", ts),
	)
	if err == nil {
		t.Fatal("AppendAll into missing directory succeeded")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("failed append left a log file behind: %v", statErr)
	}
}

func TestTransactionLogSkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.csv")
	content := "username,timestamp,amount,type,category\n" +
		"alice,2025-03-01 12:00:00,100,Expense,Food\n" +
		"alice,not-a-date,100,Expense,Junk\n" +
		"alice,2025-03-02 12:00:00,not-a-number,Expense,Junk\n" +
		"alice,2025-03-03 12:00:00,40,Expense,Books\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	l := NewTransactionLog(path, testLogger())
	records, err := l.ReadAllFor("alice")
	if err != nil {
		t.Fatalf("ReadAllFor: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (malformed rows skipped)", len(records))
	}
	if records[0].Category != "Food" || records[1].Category != "Books" {
		t.Fatalf("unexpected records: %v", records)
	}
}
