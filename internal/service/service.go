// Package service implements the ledger engine: account registration,
// authentication, and every money-movement operation.
package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Kamran7679/finance-tracker/internal/config"
	"github.com/Kamran7679/finance-tracker/internal/models"
	"github.com/Kamran7679/finance-tracker/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Notifier delivers out-of-band alerts. Implementations must be safe for
// concurrent use.
type Notifier interface {
	BudgetExceeded(username string, spent, budget decimal.Decimal)
	RecurringApplied(username string, count int, total decimal.Decimal)
}

// Service handles business logic. A single mutex guards the in-memory
// account collection so a transfer is one logical mutation and snapshot
// saves are serialized (last writer wins).
type Service struct {
	mu       sync.Mutex
	accounts []*models.Account
	store    *repository.AccountStore
	txlog    *repository.TransactionLog
	log      *logrus.Logger
	config   *config.Config
	notifier Notifier
	now      func() time.Time
}

// NewService loads the account collection and initializes the service
func NewService(store *repository.AccountStore, txlog *repository.TransactionLog, log *logrus.Logger, cfg *config.Config) (*Service, error) {
	accounts, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return &Service{
		accounts: accounts,
		store:    store,
		txlog:    txlog,
		log:      log,
		config:   cfg,
		now:      time.Now,
	}, nil
}

// SetNotifier installs an optional alert sink.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Register creates a new account with a hashed password and an initial
// deposit. Usernames are case-insensitive.
func (s *Service) Register(username, password string, initial decimal.Decimal) (*models.Account, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if initial.IsNegative() {
		return nil, fmt.Errorf("%w: initial deposit may not be negative", models.ErrInvalidAmount)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findAccount(username) != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrUserAlreadyExists, username)
	}

	acct := &models.Account{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Balance:      initial,
		TotalSpent:   decimal.Zero,
		Budget:       decimal.Zero,
		Loans:        decimal.Zero,
		Kind:         models.StandardAccount,
	}
	s.accounts = append(s.accounts, acct)

	if err := s.save(); err != nil {
		s.accounts = s.accounts[:len(s.accounts)-1]
		return nil, err
	}

	s.log.Infof("User registered: %s", username)
	return acct, nil
}

// Login authenticates a user, applies any due recurring charges, and
// returns a JWT token.
func (s *Service) Login(username, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.findAccount(strings.ToLower(strings.TrimSpace(username)))
	if acct == nil {
		return "", fmt.Errorf("%w: %s", models.ErrUserNotFound, username)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	// Recurring charges are processed lazily at login, catching up any
	// cycles missed while offline.
	applied, err := s.processRecurringLocked(acct)
	if err != nil {
		return "", err
	}
	if applied > 0 {
		if err := s.save(); err != nil {
			return "", err
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   acct.Username,
		ExpiresAt: jwt.NewNumericDate(s.now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", acct.Username)
	return tokenString, nil
}

// Deposit adds income to the account balance.
func (s *Service) Deposit(username string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: deposit may not be negative", models.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.findAccount(username)
	if acct == nil {
		return fmt.Errorf("%w: %s", models.ErrUserNotFound, username)
	}

	if err := s.logTx(acct.Username, amount, models.KindIncome, "General"); err != nil {
		return err
	}
	acct.Balance = acct.Balance.Add(amount)

	if err := s.save(); err != nil {
		return err
	}
	s.log.Infof("Deposit of %s for %s", amount, acct.Username)
	return nil
}

// Withdraw spends from the balance and accrues total spending. The returned
// budget status is advisory; it never blocks the withdrawal.
func (s *Service) Withdraw(username string, amount decimal.Decimal, category string) (models.BudgetStatus, error) {
	if amount.IsNegative() {
		return "", fmt.Errorf("%w: withdrawal may not be negative", models.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.findAccount(username)
	if acct == nil {
		return "", fmt.Errorf("%w: %s", models.ErrUserNotFound, username)
	}
	if amount.GreaterThan(acct.Balance) {
		return "", fmt.Errorf("%w: balance %s, requested %s", models.ErrInsufficientFunds, acct.Balance, amount)
	}

	if err := s.logTx(acct.Username, amount, models.KindExpense, category); err != nil {
		return "", err
	}
	acct.Balance = acct.Balance.Sub(amount)
	acct.TotalSpent = acct.TotalSpent.Add(amount)

	status := models.WithinBudget
	if acct.Budget.IsPositive() && acct.TotalSpent.GreaterThan(acct.Budget) {
		status = models.BudgetExceeded
		if s.notifier != nil {
			go s.notifier.BudgetExceeded(acct.Username, acct.TotalSpent, acct.Budget)
		}
	}

	if err := s.save(); err != nil {
		return "", err
	}
	s.log.Infof("Withdrawal of %s (%s) for %s", amount, category, acct.Username)
	return status, nil
}

// Transfer moves funds between two accounts as a single logical mutation,
// logging one record per party with the counterparty as category.
func (s *Service) Transfer(from, to string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: transfer may not be negative", models.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sender := s.findAccount(from)
	if sender == nil {
		return fmt.Errorf("%w: %s", models.ErrUserNotFound, from)
	}
	receiver := s.findAccount(to)
	if receiver == nil {
		return fmt.Errorf("%w: %s", models.ErrUserNotFound, to)
	}
	if sender == receiver {
		return fmt.Errorf("cannot transfer to the same account")
	}
	if amount.GreaterThan(sender.Balance) {
		return fmt.Errorf("%w: balance %s, requested %s", models.ErrInsufficientFunds, sender.Balance, amount)
	}

	// Both records go through one log write so a failure never leaves a
	// lone Transfer Out without its matching Transfer In.
	err := s.txlog.AppendAll(
		s.txRecord(sender.Username, amount, models.KindTransferOut, receiver.Username),
		s.txRecord(receiver.Username, amount, models.KindTransferIn, sender.Username),
	)
	if err != nil {
		return err
	}
	sender.Balance = sender.Balance.Sub(amount)
	receiver.Balance = receiver.Balance.Add(amount)

	if err := s.save(); err != nil {
		return err
	}
	s.log.Infof("Transfer of %s from %s to %s", amount, sender.Username, receiver.Username)
	return nil
}

// RequestLoan grants a loan unconditionally. There is no credit check.
func (s *Service) RequestLoan(username string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: loan amount must be positive", models.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.findAccount(username)
	if acct == nil {
		return fmt.Errorf("%w: %s", models.ErrUserNotFound, username)
	}

	if err := s.logTx(acct.Username, amount, models.KindLoanReceived, "Bank"); err != nil {
		return err
	}
	acct.Balance = acct.Balance.Add(amount)
	acct.Loans = acct.Loans.Add(amount)

	if err := s.save(); err != nil {
		return err
	}
	s.log.Infof("Loan of %s granted to %s", amount, acct.Username)
	return nil
}

// RepayLoan applies a repayment unconditionally. Over-repayment is allowed
// and leaves a prepayment credit (negative outstanding loans).
func (s *Service) RepayLoan(username string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: repayment must be positive", models.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.findAccount(username)
	if acct == nil {
		return fmt.Errorf("%w: %s", models.ErrUserNotFound, username)
	}

	if err := s.logTx(acct.Username, amount, models.KindLoanRepayment, "Bank"); err != nil {
		return err
	}
	acct.Balance = acct.Balance.Sub(amount)
	acct.Loans = acct.Loans.Sub(amount)

	if err := s.save(); err != nil {
		return err
	}
	s.log.Infof("Loan repayment of %s for %s", amount, acct.Username)
	return nil
}

// SetBudget replaces the budget limit. Zero clears it. Accumulated spending
// is intentionally not reset.
func (s *Service) SetBudget(username string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: budget may not be negative", models.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.findAccount(username)
	if acct == nil {
		return fmt.Errorf("%w: %s", models.ErrUserNotFound, username)
	}
	acct.Budget = amount

	if err := s.save(); err != nil {
		return err
	}
	s.log.Infof("Budget set to %s for %s", amount, acct.Username)
	return nil
}

// AddRecurring registers a repeating charge. The first application is due
// one interval from now.
func (s *Service) AddRecurring(username string, amount decimal.Decimal, category string, intervalDays int) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: recurring amount must be positive", models.ErrInvalidAmount)
	}
	if intervalDays <= 0 {
		return fmt.Errorf("%w: interval must be positive", models.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.findAccount(username)
	if acct == nil {
		return fmt.Errorf("%w: %s", models.ErrUserNotFound, username)
	}
	acct.Recurring = append(acct.Recurring, models.RecurringCharge{
		Amount:       amount,
		Category:     category,
		IntervalDays: intervalDays,
		NextDue:      s.now().AddDate(0, 0, intervalDays),
	})

	if err := s.save(); err != nil {
		return err
	}
	s.log.Infof("Recurring charge of %s every %d days added for %s", amount, intervalDays, acct.Username)
	return nil
}

// ProcessRecurring applies every due recurring charge for the user, catching
// up missed cycles. It is idempotent within the same instant.
func (s *Service) ProcessRecurring(username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.findAccount(username)
	if acct == nil {
		return 0, fmt.Errorf("%w: %s", models.ErrUserNotFound, username)
	}
	applied, err := s.processRecurringLocked(acct)
	if err != nil {
		return applied, err
	}
	if applied > 0 {
		if err := s.save(); err != nil {
			return applied, err
		}
	}
	return applied, nil
}

// RecentTransactions returns the last n records for display.
func (s *Service) RecentTransactions(username string, n int) ([]models.TransactionRecord, error) {
	s.mu.Lock()
	acct := s.findAccount(username)
	s.mu.Unlock()
	if acct == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrUserNotFound, username)
	}
	return s.txlog.ReadRecent(acct.Username, n)
}

// Summary returns a copy of the account state for presentation.
func (s *Service) Summary(username string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.findAccount(username)
	if acct == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrUserNotFound, username)
	}
	copied := *acct
	copied.PasswordHash = ""
	copied.Recurring = append([]models.RecurringCharge(nil), acct.Recurring...)
	return &copied, nil
}

// Usernames lists every registered account, in load order.
func (s *Service) Usernames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.accounts))
	for _, acct := range s.accounts {
		names = append(names, acct.Username)
	}
	return names
}

// processRecurringLocked applies due charges for one account. Caller holds
// the service lock and is responsible for saving when charges were applied.
func (s *Service) processRecurringLocked(acct *models.Account) (int, error) {
	now := s.now()
	applied := 0
	total := decimal.Zero
	for i := range acct.Recurring {
		charge := &acct.Recurring[i]
		// A non-positive interval would never advance NextDue and spin
		// this loop forever while holding the service lock.
		if charge.IntervalDays <= 0 {
			s.log.Warnf("Skipping recurring charge %q for %s: non-positive interval %d",
				charge.Category, acct.Username, charge.IntervalDays)
			continue
		}
		for !charge.NextDue.After(now) {
			if err := s.logTx(acct.Username, charge.Amount, models.KindRecurringExpense, charge.Category); err != nil {
				return applied, err
			}
			acct.Balance = acct.Balance.Sub(charge.Amount)
			acct.TotalSpent = acct.TotalSpent.Add(charge.Amount)
			charge.NextDue = charge.NextDue.AddDate(0, 0, charge.IntervalDays)
			total = total.Add(charge.Amount)
			applied++
		}
	}
	if applied > 0 {
		s.log.Infof("Applied %d recurring charges totaling %s for %s", applied, total, acct.Username)
		if s.notifier != nil {
			go s.notifier.RecurringApplied(acct.Username, applied, total)
		}
	}
	return applied, nil
}

func (s *Service) findAccount(username string) *models.Account {
	username = strings.ToLower(username)
	for _, acct := range s.accounts {
		if acct.Username == username {
			return acct
		}
	}
	return nil
}

func (s *Service) logTx(username string, amount decimal.Decimal, kind models.TransactionKind, category string) error {
	return s.txlog.Append(s.txRecord(username, amount, kind, category))
}

func (s *Service) txRecord(username string, amount decimal.Decimal, kind models.TransactionKind, category string) models.TransactionRecord {
	return models.TransactionRecord{
		Username:  username,
		Timestamp: s.now(),
		Amount:    amount,
		Kind:      kind,
		Category:  category,
	}
}

func (s *Service) save() error {
	if err := s.store.SaveAll(s.accounts); err != nil {
		return fmt.Errorf("failed to persist accounts: %w", err)
	}
	return nil
}
