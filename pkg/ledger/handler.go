package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kassa/kassa/internal/date"
	"github.com/kassa/kassa/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type EntryDTO struct {
	Id              int    `json:"id"`
	Uid             string `json:"uid"`
	Kind            string `json:"kind"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	CategoryId      *int   `json:"categoryId,omitempty"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	TransactionDate string `json:"transactionDate"`
	RuleId          *int   `json:"ruleId,omitempty"`
	OccurrenceDate  string `json:"occurrenceDate,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// GetTransactions godoc
// @Summary List transactions in a date range
// @Description Materializes recurring occurrences falling inside [from, to] and returns all entries of the window
// @Tags Ledger
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {array} EntryDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Router /api/transactions [get]
// @Security XUserId
func (handler *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing ledger entries")
	w.Header().Set("Content-Type", "application/json")
	from, err := date.Parse(r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	to, err := date.Parse(r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if to.Before(from) {
		http.Error(w, "range end is before range start", http.StatusBadRequest)
		return
	}

	entries, err := handler.service.ListRange(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeEntries(w, entries)
}

// GetDashboardTransactions godoc
// @Summary List the current month's transactions
// @Description The dashboard view: materializes and returns the calendar month of today
// @Tags Ledger
// @Produce json
// @Success 200 {array} EntryDTO
// @Failure 403 {string} string "User not found"
// @Router /api/dashboard/transactions [get]
// @Security XUserId
func (handler *Handler) GetDashboardTransactions(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing dashboard ledger entries")
	w.Header().Set("Content-Type", "application/json")

	entries, err := handler.service.ListCurrentMonth(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeEntries(w, entries)
}

// CreateTransaction godoc
// @Summary Record a manual transaction
// @Tags Ledger
// @Accept json
// @Produce json
// @Param entry body EntryDTO true "Ledger Entry"
// @Success 201 {object} EntryDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Router /api/transactions [post]
// @Security XUserId
func (handler *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating manual ledger entry")
	w.Header().Set("Content-Type", "application/json")
	var entryDTO EntryDTO
	if err := json.NewDecoder(r.Body).Decode(&entryDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, err := DTOToEntry(entryDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	createdEntry, err := handler.service.Create(r.Context(), entry)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(EntryToDTO(createdEntry)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// DeleteTransaction godoc
// @Summary Delete a ledger entry
// @Tags Ledger
// @Param entryUid path string true "Entry UID"
// @Success 204 "No Content"
// @Failure 403 {string} string "User not found"
// @Failure 404 {string} string "Entry Not Found"
// @Router /api/transactions/{entryUid} [delete]
// @Security XUserId
func (handler *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	log.Debug("Deleting ledger entry")
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	uid := vars["entryUid"]

	deleted, err := handler.service.Delete(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		http.Error(w, "entry not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeEntries(w http.ResponseWriter, entries []Entry) {
	entriesDTO := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		entriesDTO = append(entriesDTO, EntryToDTO(entry))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(entriesDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, user.ErrNoOwner) {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func EntryToDTO(entry Entry) EntryDTO {
	dto := EntryDTO{
		Id:              entry.Id,
		Uid:             entry.Uid,
		Kind:            string(entry.Kind),
		Amount:          entry.Amount.String(),
		Currency:        entry.Currency,
		CategoryId:      entry.CategoryId,
		Title:           entry.Title,
		Description:     entry.Description,
		TransactionDate: entry.TransactionDate.String(),
		RuleId:          entry.RuleId,
	}
	if entry.OccurrenceDate != nil {
		dto.OccurrenceDate = entry.OccurrenceDate.String()
	}
	return dto
}

func DTOToEntry(dto EntryDTO) (Entry, error) {
	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid amount %q: %w", dto.Amount, err)
	}
	transactionDate, err := date.Parse(dto.TransactionDate)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Id:              dto.Id,
		Uid:             dto.Uid,
		Kind:            EntryKind(dto.Kind),
		Amount:          amount,
		Currency:        dto.Currency,
		CategoryId:      dto.CategoryId,
		Title:           dto.Title,
		Description:     dto.Description,
		TransactionDate: transactionDate,
	}, nil
}
