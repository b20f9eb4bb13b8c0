package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bankroll/models"
	"bankroll/service"

	"github.com/go-chi/chi/v5"
)

type contextKey string

const ownerIDKey contextKey = "ownerID"

// Handler holds the services the HTTP surface delegates to
type Handler struct {
	accounts     service.AccountService
	transactions service.TransactionService
	bets         service.BetService
	importer     service.ImportService
	recalc       service.RecalcService
}

// NewHandler creates a new handler backed by the given services
func NewHandler(
	accounts service.AccountService,
	transactions service.TransactionService,
	bets service.BetService,
	importer service.ImportService,
	recalc service.RecalcService,
) *Handler {
	return &Handler{
		accounts:     accounts,
		transactions: transactions,
		bets:         bets,
		importer:     importer,
		recalc:       recalc,
	}
}

// ownerScope extracts the caller identity from the X-Owner-ID header.
// Every route below requires it; data is always scoped to this owner.
func ownerScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := strconv.ParseInt(r.Header.Get("X-Owner-ID"), 10, 64)
		if err != nil || ownerID <= 0 {
			writeError(w, http.StatusUnauthorized, "missing or invalid X-Owner-ID header", nil)
			return
		}
		ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFrom(r *http.Request) int64 {
	return r.Context().Value(ownerIDKey).(int64)
}

// writeServiceError maps domain errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidType),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidWinnings):
		writeError(w, http.StatusBadRequest, "validation failed", err)
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "not found", err)
	case errors.Is(err, models.ErrInsufficientBalance):
		writeError(w, http.StatusUnprocessableEntity, "insufficient balance", err)
	case errors.Is(err, models.ErrAlreadySettled):
		writeError(w, http.StatusConflict, "already settled", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), ownerFrom(r), req.AccountKey, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountDTO(account))
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAccounts(r.Context(), ownerFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = toAccountDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetAccount(r.Context(), ownerFrom(r), chi.URLParam(r, "key"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountDTO(account))
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	balance, err := h.accounts.GetBalance(r.Context(), ownerFrom(r), key)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceDTO{AccountKey: key, Balance: balance})
}

func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	result, err := h.recalc.Recalculate(r.Context(), ownerFrom(r), chi.URLParam(r, "key"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RecalcResultDTO{
		Account: toAccountDTO(result.Account),
		Drift:   result.Drift,
		Changed: result.Changed,
	})
}

// resolveAccount turns the account key of the route into the account
// row, scoped to the caller.
func (h *Handler) resolveAccount(r *http.Request) (*models.Account, error) {
	return h.accounts.GetAccount(r.Context(), ownerFrom(r), chi.URLParam(r, "key"))
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	account, err := h.resolveAccount(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var eventDate time.Time
	if req.EventDate != "" {
		eventDate, err = time.Parse("2006-01-02", req.EventDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid event_date, want YYYY-MM-DD", err)
			return
		}
	}

	tx, err := h.transactions.Create(r.Context(), ownerFrom(r), account.ID,
		models.TransactionType(req.Type), req.Amount, req.Description, eventDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	txID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id", err)
		return
	}

	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	params := service.UpdateTransactionParams{
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.Type != nil {
		t := models.TransactionType(*req.Type)
		params.Type = &t
	}
	if req.EventDate != nil {
		d, err := time.Parse("2006-01-02", *req.EventDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid event_date, want YYYY-MM-DD", err)
			return
		}
		params.EventDate = &d
	}

	tx, err := h.transactions.Update(r.Context(), ownerFrom(r), txID, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	txID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id", err)
		return
	}

	if err := h.transactions.Delete(r.Context(), ownerFrom(r), txID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateBet(w http.ResponseWriter, r *http.Request) {
	account, err := h.resolveAccount(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req CreateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	bet, err := h.bets.Create(r.Context(), ownerFrom(r), account.ID, service.CreateBetParams{
		Amount:        req.Amount,
		DisplayAmount: req.DisplayAmount,
		Description:   req.Description,
		IsBonusBet:    req.IsBonusBet,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBetDTO(bet))
}

func (h *Handler) SettleBet(w http.ResponseWriter, r *http.Request) {
	betID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bet id", err)
		return
	}

	var req SettleBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	bet, err := h.bets.Settle(r.Context(), ownerFrom(r), betID, models.BetStatus(req.Status), req.Winnings)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBetDTO(bet))
}

func (h *Handler) DeleteBet(w http.ResponseWriter, r *http.Request) {
	betID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bet id", err)
		return
	}

	if err := h.bets.Delete(r.Context(), ownerFrom(r), betID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	account, err := h.resolveAccount(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	stats, err := h.bets.GetStats(r.Context(), ownerFrom(r), account.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStatsDTO(stats))
}

func (h *Handler) GetStreaks(w http.ResponseWriter, r *http.Request) {
	account, err := h.resolveAccount(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	streaks, err := h.bets.GetStreaks(r.Context(), ownerFrom(r), account.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StreaksDTO{
		Current:        streaks.Current,
		CurrentOutcome: string(streaks.CurrentOutcome),
		LongestWin:     streaks.LongestWin,
		LongestLoss:    streaks.LongestLoss,
	})
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.importer.Import(r.Context(), ownerFrom(r), req.Records)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toImportResultDTO(result))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
