package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kamran7679/finance-tracker/internal/models"
)

func testAccount(t *testing.T) *models.Account {
	t.Helper()
	return &models.Account{
		Username:     "alice",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Balance:      dec(t, "1234.56"),
		TotalSpent:   dec(t, "200"),
		Budget:       dec(t, "500"),
		Loans:        dec(t, "1000"),
		Recurring: []models.RecurringCharge{
			{
				Amount:       dec(t, "99.99"),
				Category:     "Netflix",
				IntervalDays: 30,
				NextDue:      time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC),
			},
			{
				Amount:       dec(t, "15"),
				Category:     "Gym",
				IntervalDays: 7,
				NextDue:      time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC),
			},
		},
		Kind: models.StandardAccount,
	}
}

func TestAccountStoreMissingFileIsEmpty(t *testing.T) {
	s := NewAccountStore(filepath.Join(t.TempDir(), "users.txt"), testLogger())

	accounts, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll on missing file: %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("got %d accounts, want 0", len(accounts))
	}
}

func TestAccountStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.txt")
	s := NewAccountStore(path, testLogger())

	want := testAccount(t)
	bare := &models.Account{
		Username:     "bob",
		PasswordHash: "hash",
		Balance:      dec(t, "0"),
		TotalSpent:   dec(t, "0"),
		Budget:       dec(t, "0"),
		Loans:        dec(t, "0"),
		Kind:         models.StandardAccount,
	}

	if err := s.SaveAll([]*models.Account{want, bare}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	got, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d accounts, want 2", len(got))
	}

	a := got[0]
	if a.Username != want.Username || a.PasswordHash != want.PasswordHash {
		t.Fatalf("identity mismatch: %+v", a)
	}
	if !a.Balance.Equal(want.Balance) || !a.TotalSpent.Equal(want.TotalSpent) ||
		!a.Budget.Equal(want.Budget) || !a.Loans.Equal(want.Loans) {
		t.Fatalf("amounts mismatch: %+v", a)
	}
	if len(a.Recurring) != 2 {
		t.Fatalf("got %d recurring charges, want 2", len(a.Recurring))
	}
	for i, rc := range a.Recurring {
		if !rc.Amount.Equal(want.Recurring[i].Amount) ||
			rc.Category != want.Recurring[i].Category ||
			rc.IntervalDays != want.Recurring[i].IntervalDays ||
			!rc.NextDue.Equal(want.Recurring[i].NextDue) {
			t.Fatalf("recurring[%d] = %+v, want %+v", i, rc, want.Recurring[i])
		}
	}
	if len(got[1].Recurring) != 0 {
		t.Fatalf("bare account grew recurring charges: %+v", got[1].Recurring)
	}

	// Second round trip yields the identical collection.
	if err := s.SaveAll(got); err != nil {
		t.Fatalf("second SaveAll: %v", err)
	}
	again, err := s.LoadAll()
	if err != nil {
		t.Fatalf("second LoadAll: %v", err)
	}
	if len(again) != 2 || !again[0].Balance.Equal(want.Balance) {
		t.Fatalf("round trip not stable: %+v", again)
	}
}

func TestAccountStoreRejectsNonPositiveInterval(t *testing.T) {
	// A zero interval would make recurring catch-up loop forever, so the
	// parser must refuse it rather than hand it to the ledger.
	for _, interval := range []string{"0", "-3"} {
		path := filepath.Join(t.TempDir(), "users.txt")
		content := "username,password,amount,budget,total_spent,loans,recurring\n" +
			"alice,hash,1000,0,0,0,10|Gym|" + interval + "|2025-01-01 00:00:00\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write fixture: %v", err)
		}

		s := NewAccountStore(path, testLogger())
		if _, err := s.LoadAll(); err == nil {
			t.Fatalf("LoadAll accepted recurring interval %s", interval)
		}
	}
}

func TestAccountStoreSaveSurfacesIOError(t *testing.T) {
	s := NewAccountStore(filepath.Join(t.TempDir(), "missing", "users.txt"), testLogger())
	if err := s.SaveAll([]*models.Account{testAccount(t)}); err == nil {
		t.Fatal("SaveAll into missing directory succeeded")
	}
}

func TestAccountStoreAtomicReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.txt")
	s := NewAccountStore(path, testLogger())

	first := testAccount(t)
	if err := s.SaveAll([]*models.Account{first}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	second := testAccount(t)
	second.Balance = dec(t, "42")
	if err := s.SaveAll([]*models.Account{second}); err != nil {
		t.Fatalf("second SaveAll: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
	got, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if !got[0].Balance.Equal(dec(t, "42")) {
		t.Fatalf("balance = %s, want 42 (last writer wins)", got[0].Balance)
	}
}
