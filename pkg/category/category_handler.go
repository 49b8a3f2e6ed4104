package category

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kassa/kassa/pkg/user"
	log "github.com/sirupsen/logrus"
)

type CategoryDTO struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type CategoryHandler struct {
	service CategoryService
}

func NewCategoryHandler(service CategoryService) *CategoryHandler {
	return &CategoryHandler{service}
}

// GetCategories godoc
// @Summary List all categories
// @Tags Category
// @Produce json
// @Success 200 {array} CategoryDTO
// @Failure 403 {string} string "User not found"
// @Router /api/category [get]
// @Security XUserId
func (handler *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing categories")
	w.Header().Set("Content-Type", "application/json")
	categories, err := handler.service.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	categoriesDTO := make([]CategoryDTO, 0, len(categories))
	for _, category := range categories {
		categoriesDTO = append(categoriesDTO, toDTO(category))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(categoriesDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// CreateCategory godoc
// @Summary Create a new category
// @Tags Category
// @Accept json
// @Produce json
// @Param category body CategoryDTO true "Category"
// @Success 201 {object} CategoryDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Router /api/category [post]
// @Security XUserId
func (handler *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new category")
	w.Header().Set("Content-Type", "application/json")
	var categoryDTO CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&categoryDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	category, err := handler.service.Create(r.Context(), fromDTO(categoryDTO))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toDTO(category)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// UpdateCategory godoc
// @Summary Update an existing category
// @Tags Category
// @Accept json
// @Param categoryId path int true "Category ID"
// @Param category body CategoryDTO true "Category"
// @Success 200 "OK"
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Router /api/category/{categoryId} [put]
// @Security XUserId
func (handler *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating category")
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	categoryId, err := strconv.Atoi(vars["categoryId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var categoryDTO CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&categoryDTO); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if categoryDTO.Id == 0 || categoryDTO.Id != categoryId {
		http.Error(w, "Invalid category id in request body", http.StatusBadRequest)
		return
	}

	updated, err := handler.service.Update(r.Context(), fromDTO(categoryDTO))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !updated {
		http.Error(w, "category not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Tags Category
// @Param categoryId path int true "Category ID"
// @Success 204 "No Content"
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Failure 404 {string} string "Category Not Found"
// @Router /api/category/{categoryId} [delete]
// @Security XUserId
func (handler *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	log.Debug("Deleting category")
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	categoryId, err := strconv.Atoi(vars["categoryId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	deleted, err := handler.service.Delete(r.Context(), categoryId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		http.Error(w, "category not found", http.StatusNotFound)
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

func toDTO(category Category) CategoryDTO {
	return CategoryDTO{
		Id:   category.Id,
		Name: category.Name,
		Icon: category.Icon,
	}
}

func fromDTO(dto CategoryDTO) Category {
	return Category{
		Id:   dto.Id,
		Name: dto.Name,
		Icon: dto.Icon,
	}
}
