package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeHandler serves recipes, the favorite and cart ledger and the
// shopping list download.
type RecipeHandler struct {
	recipes  service.IRecipeService
	ledger   service.ILedgerService
	shopping service.IShoppingListService

	creationLimiter     *middleware.RateLimiter
	modificationLimiter *middleware.RateLimiter
}

// NewRecipeHandler creates a RecipeHandler. Limiters may be nil.
func NewRecipeHandler(
	recipes service.IRecipeService,
	ledger service.ILedgerService,
	shopping service.IShoppingListService,
	creationLimiter, modificationLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:             recipes,
		ledger:              ledger,
		shopping:            shopping,
		creationLimiter:     creationLimiter,
		modificationLimiter: modificationLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, validator middleware.TokenValidator) {
	required := middleware.AuthMiddleware(validator)
	optional := middleware.OptionalAuth(validator)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.POST("", required, h.creationLimiter.RateLimitMiddleware(), h.CreateRecipe)
		recipes.PATCH("/:id", required, h.modificationLimiter.PerRecipeRateLimitMiddleware(), h.UpdateRecipe)
		recipes.PUT("/:id", required, h.modificationLimiter.PerRecipeRateLimitMiddleware(), h.UpdateRecipe)
		recipes.DELETE("/:id", required, h.DeleteRecipe)

		recipes.POST("/:id/favorite", required, h.addTo(service.Favorites))
		recipes.DELETE("/:id/favorite", required, h.removeFrom(service.Favorites))
		recipes.POST("/:id/shopping_cart", required, h.addTo(service.ShoppingCart))
		recipes.DELETE("/:id/shopping_cart", required, h.removeFrom(service.ShoppingCart))
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter, err := recipeFilter(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	list, err := h.recipes.List(c.Request.Context(), filter, middleware.Viewer(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id, middleware.Viewer(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var input types.RecipeInput
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := h.authorize(c)
	if !ok {
		return
	}

	var input types.RecipeInput
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), id, input, middleware.Viewer(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := h.authorize(c)
	if !ok {
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// authorize resolves the recipe id and lets only its author continue.
func (h *RecipeHandler) authorize(c *gin.Context) (id uuid.UUID, ok bool) {
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return id, false
	}

	author, err := h.recipes.AuthorOf(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return id, false
	}

	if userID, _ := middleware.UserID(c); userID != author {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "only the author may change this recipe"})
		return id, false
	}
	return id, true
}

func (h *RecipeHandler) addTo(kind service.SetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		userID, _ := middleware.UserID(c)

		summary, err := h.ledger.Add(c.Request.Context(), userID, id, kind)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, summary)
	}
}

func (h *RecipeHandler) removeFrom(kind service.SetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		userID, _ := middleware.UserID(c)

		if err := h.ledger.Remove(c.Request.Context(), userID, id, kind); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart sends the aggregated shopping list as an attachment.
// format=txt selects plain text; PDF is the default.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	items, err := h.shopping.Aggregate(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	switch format := c.DefaultQuery("format", "pdf"); format {
	case "txt":
		c.Header("Content-Disposition", "attachment; filename=shopping_list.txt")
		c.Data(http.StatusOK, "text/plain; charset=utf-8", h.shopping.RenderText(items))
	case "pdf":
		doc, err := h.shopping.RenderPDF(items)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=shopping_list.pdf")
		c.Data(http.StatusOK, "application/pdf", doc)
	default:
		_ = c.Error(service.NewValidationError("format", "must be one of: txt, pdf"))
	}
}
