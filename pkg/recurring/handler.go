package recurring

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kassa/kassa/internal/date"
	"github.com/kassa/kassa/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type RuleDTO struct {
	Id          int    `json:"id"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	CategoryId  *int   `json:"categoryId,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	Frequency   string `json:"frequency"`
	Interval    int    `json:"interval"`
	Timezone    string `json:"timezone,omitempty"`
	Active      bool   `json:"active"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// ListRules godoc
// @Summary List recurring rules
// @Description Get all recurring rules for the current user; pass active=true to exclude deactivated ones
// @Tags Recurring
// @Produce json
// @Success 200 {array} RuleDTO
// @Failure 403 {string} string "User not found"
// @Router /api/recurring [get]
// @Security XUserId
func (handler *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing recurring rules")
	w.Header().Set("Content-Type", "application/json")
	activeOnly := r.URL.Query().Get("active") == "true"

	rules, err := handler.service.List(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	rulesDTO := make([]RuleDTO, 0, len(rules))
	for _, rule := range rules {
		rulesDTO = append(rulesDTO, RuleToDTO(rule))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(rulesDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// GetRule godoc
// @Summary Get a recurring rule by ID
// @Tags Recurring
// @Produce json
// @Param ruleId path int true "Rule ID"
// @Success 200 {object} RuleDTO
// @Failure 403 {string} string "User not found"
// @Failure 404 {string} string "Rule Not Found"
// @Router /api/recurring/{ruleId} [get]
// @Security XUserId
func (handler *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	ruleId, err := strconv.Atoi(vars["ruleId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rule, err := handler.service.Get(r.Context(), ruleId)
	if err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(RuleToDTO(rule)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// CreateRule godoc
// @Summary Create a new recurring rule
// @Description Create a recurring rule; future reads of any window covering its cadence will materialize ledger entries for it
// @Tags Recurring
// @Accept json
// @Produce json
// @Param rule body RuleDTO true "Recurring Rule"
// @Success 201 {object} RuleDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Router /api/recurring [post]
// @Security XUserId
func (handler *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new recurring rule")
	w.Header().Set("Content-Type", "application/json")
	var ruleDTO RuleDTO
	if err := json.NewDecoder(r.Body).Decode(&ruleDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rule, err := DTOToRule(ruleDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	createdRule, err := handler.service.Create(r.Context(), rule)
	if err != nil {
		if errors.Is(err, ErrInvalidRule) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(RuleToDTO(createdRule)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// UpdateRule godoc
// @Summary Update an existing recurring rule
// @Tags Recurring
// @Accept json
// @Produce json
// @Param ruleId path int true "Rule ID"
// @Param rule body RuleDTO true "Recurring Rule"
// @Success 200 {object} RuleDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Failure 404 {string} string "Rule Not Found"
// @Router /api/recurring/{ruleId} [put]
// @Security XUserId
func (handler *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating recurring rule")
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	ruleId, err := strconv.Atoi(vars["ruleId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var ruleDTO RuleDTO
	if err := json.NewDecoder(r.Body).Decode(&ruleDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if ruleDTO.Id == 0 || ruleDTO.Id != ruleId {
		http.Error(w, "Invalid rule id in request body", http.StatusBadRequest)
		return
	}
	rule, err := DTOToRule(ruleDTO)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updatedRule, err := handler.service.Update(r.Context(), rule)
	if err != nil {
		if errors.Is(err, ErrRuleNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrInvalidRule) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(RuleToDTO(updatedRule)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// DeactivateRule godoc
// @Summary Deactivate a recurring rule
// @Description Deactivating a rule stops future materialization; already materialized entries are kept
// @Tags Recurring
// @Param ruleId path int true "Rule ID"
// @Success 204 "No Content"
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Failure 404 {string} string "Rule Not Found"
// @Router /api/recurring/{ruleId} [delete]
// @Security XUserId
func (handler *Handler) DeactivateRule(w http.ResponseWriter, r *http.Request) {
	log.Debug("Deactivating recurring rule")
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	ruleId, err := strconv.Atoi(vars["ruleId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	deactivated, err := handler.service.Deactivate(r.Context(), ruleId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deactivated {
		http.Error(w, "rule not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Materialize godoc
// @Summary Materialize ledger entries for a window
// @Description Expand every active rule over [from, to] into ledger entries. Idempotent: repeated or overlapping calls never duplicate entries.
// @Tags Recurring
// @Param from query string true "Window start (YYYY-MM-DD)"
// @Param to query string true "Window end (YYYY-MM-DD)"
// @Success 204 "No Content"
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Router /api/recurring/materialize [post]
// @Security XUserId
func (handler *Handler) Materialize(w http.ResponseWriter, r *http.Request) {
	log.Debug("Materializing recurring rules")
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
		http.Error(w, "window end is before window start", http.StatusBadRequest)
		return
	}

	if err := handler.service.Materialize(r.Context(), from, to); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, user.ErrNoOwner) {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func RuleToDTO(rule Rule) RuleDTO {
	dto := RuleDTO{
		Id:          rule.Id,
		Kind:        string(rule.Kind),
		Amount:      rule.Amount.String(),
		Currency:    rule.Currency,
		CategoryId:  rule.CategoryId,
		Title:       rule.Title,
		Description: rule.Description,
		StartDate:   rule.StartDate.String(),
		Frequency:   string(rule.Frequency),
		Interval:    rule.Interval,
		Timezone:    rule.Timezone,
		Active:      rule.Active,
	}
	if !rule.EndDate.IsZero() {
		dto.EndDate = rule.EndDate.String()
	}
	return dto
}

func DTOToRule(dto RuleDTO) (Rule, error) {
	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid amount %q: %w", dto.Amount, err)
	}
	startDate, err := date.Parse(dto.StartDate)
	if err != nil {
		return Rule{}, err
	}
	var endDate date.Date
	if dto.EndDate != "" {
		endDate, err = date.Parse(dto.EndDate)
		if err != nil {
			return Rule{}, err
		}
	}
	return Rule{
		Id:          dto.Id,
		Kind:        RuleKind(dto.Kind),
		Amount:      amount,
		Currency:    dto.Currency,
		CategoryId:  dto.CategoryId,
		Title:       dto.Title,
		Description: dto.Description,
		StartDate:   startDate,
		EndDate:     endDate,
		Frequency:   Frequency(dto.Frequency),
		Interval:    dto.Interval,
		Timezone:    dto.Timezone,
		Active:      dto.Active,
	}, nil
}
