package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/recipe"
)

type AddComponentRequest struct {
	SupplyID     int64   `json:"supply_id" validate:"required"`
	QuantityUsed float64 `json:"quantity_used" validate:"required,gt=0"`
}

type RecipeHandler struct {
	recipes  recipe.Resolver
	validate *validator.Validate
}

func NewRecipeHandler(recipes recipe.Resolver) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, validate: validator.New()}
}

func (h *RecipeHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products/{id}/recipe", h.handleGetRecipe)
	router.Get("/products/{id}/recipe/cost", h.handleRecipeCost)
	router.Post("/products/{id}/recipe", h.handleAddComponent)
	router.Delete("/recipes/{id}", h.handleRemoveComponent)
}

func (h *RecipeHandler) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	components, err := h.recipes.ResolveDetailed(r.Context(), productID)
	if err != nil {
		log.Error().Err(err).Int64("product_id", productID).Msg("Failed to resolve recipe")
		components = []recipe.Component{}
	}
	if components == nil {
		components = []recipe.Component{}
	}
	respondWithJSON(w, http.StatusOK, components)
}

func (h *RecipeHandler) handleRecipeCost(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	cost, err := h.recipes.Cost(r.Context(), productID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to compute recipe cost")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]float64{"cost": cost})
}

func (h *RecipeHandler) handleAddComponent(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req AddComponentRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	recipeID, err := h.recipes.AddComponent(r.Context(), productID, req.SupplyID, req.QuantityUsed)
	if err != nil {
		log.Error().Err(err).Int64("product_id", productID).Msg("Failed to add recipe component")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to add recipe component")
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]int64{"recipe_id": recipeID})
}

func (h *RecipeHandler) handleRemoveComponent(w http.ResponseWriter, r *http.Request) {
	recipeID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.recipes.RemoveComponent(r.Context(), recipeID); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to remove recipe component")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Recipe component removed"})
}
