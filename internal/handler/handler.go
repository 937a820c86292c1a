package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Kamran7679/finance-tracker/internal/forecast"
	"github.com/Kamran7679/finance-tracker/internal/integrations/rates"
	"github.com/Kamran7679/finance-tracker/internal/middleware"
	"github.com/Kamran7679/finance-tracker/internal/models"
	"github.com/Kamran7679/finance-tracker/internal/service"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Handler exposes the ledger and forecast operations over HTTP
type Handler struct {
	svc      *service.Service
	forecast *forecast.Engine
	rates    *rates.Client
	log      *logrus.Logger
}

// NewHandler initializes the HTTP handler set
func NewHandler(svc *service.Service, engine *forecast.Engine, ratesClient *rates.Client, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, forecast: engine, rates: ratesClient, log: log}
}

type registerRequest struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Initial  decimal.Decimal `json:"initial_deposit"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type amountRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category,omitempty"`
}

type transferRequest struct {
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type recurringRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
	IntervalDays int             `json:"interval_days"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	acct, err := h.svc.Register(req.Username, req.Password, req.Initial)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, acct)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	token, err := h.svc.Login(req.Username, req.Password)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Account returns the authenticated user's account summary
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	acct, err := h.svc.Summary(username)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, acct)
}

// Deposit handles income deposits
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.Deposit(username, req.Amount); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Withdraw handles expenses and reports the advisory budget status
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	status, err := h.svc.Withdraw(username, req.Amount, req.Category)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]models.BudgetStatus{"budget_status": status})
}

// Transfer moves funds to another account
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.Transfer(username, req.To, req.Amount); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RequestLoan grants a loan to the authenticated user
func (h *Handler) RequestLoan(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.RequestLoan(username, req.Amount); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RepayLoan applies a loan repayment
func (h *Handler) RepayLoan(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.RepayLoan(username, req.Amount); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SetBudget replaces the budget limit
func (h *Handler) SetBudget(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.SetBudget(username, req.Amount); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AddRecurring registers a recurring charge
func (h *Handler) AddRecurring(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req recurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.AddRecurring(username, req.Amount, req.Category, req.IntervalDays); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RecentTransactions returns the latest records for display
func (h *Handler) RecentTransactions(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	n := queryInt(r, "n", 10)
	records, err := h.svc.RecentTransactions(username, n)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

// ForecastTotal predicts accumulated spending over the horizon (default 30 days)
func (h *Handler) ForecastTotal(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	days := queryInt(r, "days", 30)
	result, err := h.forecast.ForecastTotal(username, days)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// ForecastSeries returns per-day predictions plus trailing history for charting
// (default 15 days)
func (h *Handler) ForecastSeries(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	days := queryInt(r, "days", 15)
	result, err := h.forecast.ForecastSeries(username, days)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Rates returns today's exchange rates for secondary-currency display
func (h *Handler) Rates(w http.ResponseWriter, r *http.Request) {
	result, err := h.rates.GetRates()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get rates: %v", err), http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, models.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrUserAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, models.ErrInsufficientHistory):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrModelUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.log.Errorf("Request failed: %v", err)
	}
	http.Error(w, err.Error(), status)
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}
