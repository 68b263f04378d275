package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/recipefootprint/backend/internal/domain"
	"github.com/recipefootprint/backend/internal/usecase"
	"go.uber.org/zap"
)

const (
	serviceName    = "recipe-footprint"
	serviceVersion = "1.0.0"
)

// RecipeRequest carries either explicit ingredient lines or a raw ingredient block
type RecipeRequest struct {
	Ingredients []string `json:"ingredients"`
	Text        string   `json:"text"`
}

// SelectionRequest carries catalog products picked by name
type SelectionRequest struct {
	Items []domain.SelectionItem `json:"items" binding:"dive"`
}

// FootprintResponse is a calculated footprint plus request metadata
type FootprintResponse struct {
	*domain.RecipeFootprint
	Source    string `json:"source,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorResponse is the body of every failed request.
// Footprint carries the all-zero result of an empty ingredient list.
type ErrorResponse struct {
	Code      string                  `json:"code"`
	Message   string                  `json:"message"`
	Footprint *domain.RecipeFootprint `json:"footprint,omitempty"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recipes *usecase.RecipeService
	catalog *usecase.CatalogService
	units   *domain.UnitVocabulary
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	recipes *usecase.RecipeService,
	catalog *usecase.CatalogService,
	units *domain.UnitVocabulary,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		recipes: recipes,
		catalog: catalog,
		units:   units,
		logger:  logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"service":    serviceName,
		"version":    serviceVersion,
		"indicators": h.catalog.Indicators(),
	})
}

// CalculateRecipe computes the footprint of a recipe's ingredients
func (h *Handler) CalculateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var (
		footprint *domain.RecipeFootprint
		source    string
		err       error
	)
	if len(req.Ingredients) > 0 {
		footprint, source, err = h.recipes.Calculate(c.Request.Context(), req.Ingredients)
	} else {
		footprint, source, err = h.recipes.CalculateText(c.Request.Context(), req.Text)
	}
	if err != nil {
		respondFootprintError(c, err, footprint)
		return
	}

	h.logger.Debug("recipe footprint calculated",
		zap.Int("ingredients", len(footprint.PerIngredient)),
		zap.String("source", source),
	)

	c.JSON(http.StatusOK, FootprintResponse{
		RecipeFootprint: footprint,
		Source:          source,
		RequestID:       requestid.Get(c),
	})
}

// CalculateSelection computes the footprint of products chosen from the catalog
func (h *Handler) CalculateSelection(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	footprint, err := h.recipes.CalculateSelection(req.Items)
	if err != nil {
		respondFootprintError(c, err, footprint)
		return
	}

	c.JSON(http.StatusOK, FootprintResponse{
		RecipeFootprint: footprint,
		Source:          usecase.SourceComputed,
		RequestID:       requestid.Get(c),
	})
}

// ListIndicators returns the impact indicators carried by the catalog
func (h *Handler) ListIndicators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"indicators": h.catalog.Indicators()})
}

// SubgroupTotals returns the indicator summed per food group and subgroup
func (h *Handler) SubgroupTotals(c *gin.Context) {
	indicator := indicatorParam(c)

	totals, err := h.catalog.SubgroupTotals(indicator)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"indicator": indicator,
		"subgroups": totals,
	})
}

// ListProducts browses the catalog by subgroup and name fragment
func (h *Handler) ListProducts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, domain.ErrInvalidRequest)
			return
		}
		limit = n
	}

	products := h.catalog.Products(c.Query("subgroup"), c.Query("q"), limit)
	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"products": products,
	})
}

// LookupProduct returns a product and its subgroup peers for one indicator
func (h *Handler) LookupProduct(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		respondError(c, domain.ErrInvalidRequest)
		return
	}

	peers, err := h.catalog.SubgroupPeers(name, indicatorParam(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, peers)
}

// ListUnits returns the unit vocabulary
func (h *Handler) ListUnits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"units": h.units.Entries()})
}

func indicatorParam(c *gin.Context) domain.Indicator {
	return domain.Indicator(c.DefaultQuery("indicator", string(domain.IndicatorClimateChange)))
}

// respondBindError reports a malformed request body
func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Code:    "INVALID_REQUEST",
		Message: err.Error(),
	})
}

// respondError maps domain errors to status codes
func respondError(c *gin.Context, err error) {
	respondFootprintError(c, err, nil)
}

// respondFootprintError is respondError for calculations; the empty-list footprint is kept in the body
func respondFootprintError(c *gin.Context, err error, footprint *domain.RecipeFootprint) {
	_ = c.Error(err)

	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, domain.ErrEmptyIngredientList):
		status, code = http.StatusBadRequest, "EMPTY_INGREDIENT_LIST"
	case errors.Is(err, domain.ErrInvalidRequest):
		status, code = http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, domain.ErrUnknownIndicator):
		status, code = http.StatusBadRequest, "UNKNOWN_INDICATOR"
	case errors.Is(err, domain.ErrProductNotFound):
		status, code = http.StatusNotFound, "PRODUCT_NOT_FOUND"
	case errors.Is(err, domain.ErrRateLimited):
		status, code = http.StatusTooManyRequests, "RATE_LIMITED"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	resp := ErrorResponse{Code: code, Message: message}
	if errors.Is(err, domain.ErrEmptyIngredientList) {
		resp.Footprint = footprint
	}
	c.AbortWithStatusJSON(status, resp)
}
