package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Kamran7679/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var accountHeader = []string{"username", "password", "amount", "budget", "total_spent", "loans", "recurring"}

// AccountStore loads and persists the full account collection as a CSV
// snapshot. Saves go through a temp file and an atomic rename so a crash
// mid-write never corrupts the previous durable state.
type AccountStore struct {
	path string
	log  *logrus.Logger
}

// NewAccountStore initializes an account store backed by the given file
func NewAccountStore(path string, log *logrus.Logger) *AccountStore {
	return &AccountStore{path: path, log: log}
}

// LoadAll reads the account snapshot. A missing file yields an empty set.
func (s *AccountStore) LoadAll() ([]*models.Account, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open account store: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read account store: %w", err)
	}

	var accounts []*models.Account
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 7 {
			s.log.Warnf("Skipping account row %d: have %d fields, want 7", i, len(row))
			continue
		}
		acct, err := parseAccount(row)
		if err != nil {
			return nil, fmt.Errorf("failed to parse account row %d: %w", i, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// SaveAll rewrites the snapshot with the full account collection. The
// previous file stays intact until the rename succeeds.
func (s *AccountStore) SaveAll(accounts []*models.Account) error {
	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(accountHeader); err != nil {
		f.Close()
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	for _, acct := range accounts {
		row := []string{
			acct.Username,
			acct.PasswordHash,
			acct.Balance.String(),
			acct.Budget.String(),
			acct.TotalSpent.String(),
			acct.Loans.String(),
			encodeRecurring(acct.Recurring),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("failed to write account %s: %w", acct.Username, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

func parseAccount(row []string) (*models.Account, error) {
	balance, err := decimal.NewFromString(row[2])
	if err != nil {
		return nil, fmt.Errorf("bad balance %q: %w", row[2], err)
	}
	budget, err := decimal.NewFromString(row[3])
	if err != nil {
		return nil, fmt.Errorf("bad budget %q: %w", row[3], err)
	}
	spent, err := decimal.NewFromString(row[4])
	if err != nil {
		return nil, fmt.Errorf("bad total_spent %q: %w", row[4], err)
	}
	loans, err := decimal.NewFromString(row[5])
	if err != nil {
		return nil, fmt.Errorf("bad loans %q: %w", row[5], err)
	}
	recurring, err := parseRecurring(row[6])
	if err != nil {
		return nil, err
	}
	return &models.Account{
		Username:     strings.ToLower(row[0]),
		PasswordHash: row[1],
		Balance:      balance,
		Budget:       budget,
		TotalSpent:   spent,
		Loans:        loans,
		Recurring:    recurring,
		Kind:         models.StandardAccount,
	}, nil
}

// encodeRecurring serializes charges as amount|category|interval|timestamp
// items joined with ";".
func encodeRecurring(charges []models.RecurringCharge) string {
	items := make([]string, 0, len(charges))
	for _, c := range charges {
		items = append(items, fmt.Sprintf("%s|%s|%d|%s",
			c.Amount.String(), c.Category, c.IntervalDays, c.NextDue.Format(TimeLayout)))
	}
	return strings.Join(items, ";")
}

func parseRecurring(encoded string) ([]models.RecurringCharge, error) {
	if encoded == "" {
		return nil, nil
	}
	var charges []models.RecurringCharge
	for _, item := range strings.Split(encoded, ";") {
		parts := strings.Split(item, "|")
		if len(parts) != 4 {
			return nil, fmt.Errorf("bad recurring item %q", item)
		}
		amount, err := decimal.NewFromString(parts[0])
		if err != nil {
			return nil, fmt.Errorf("bad recurring amount %q: %w", parts[0], err)
		}
		interval, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("bad recurring interval %q: %w", parts[2], err)
		}
		if interval <= 0 {
			return nil, fmt.Errorf("non-positive recurring interval %d", interval)
		}
		due, err := time.Parse(TimeLayout, parts[3])
		if err != nil {
			return nil, fmt.Errorf("bad recurring due date %q: %w", parts[3], err)
		}
		charges = append(charges, models.RecurringCharge{
			Amount:       amount,
			Category:     parts[1],
			IntervalDays: interval,
			NextDue:      due,
		})
	}
	return charges, nil
}
