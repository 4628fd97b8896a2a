package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const maxPageSize = 100

// pathID parses the ":id" route parameter.
func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, &service.NotFoundError{Entity: "resource"}
	}
	return id, nil
}

func queryFlag(c *gin.Context, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// recipeFilter reads listing filters from the query string:
// author, tags (repeatable), is_favorited, is_in_shopping_cart, limit, page.
func recipeFilter(c *gin.Context) (types.RecipeFilter, error) {
	filter := types.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
	}

	if raw := c.Query("author"); raw != "" {
		author, err := uuid.Parse(raw)
		if err != nil {
			return filter, service.NewValidationError("author", "must be a valid id")
		}
		filter.AuthorID = &author
	}

	verr := &service.ValidationError{}
	limit, page := 0, 1
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			verr.Add("limit", "must be a positive integer")
		}
		limit = min(n, maxPageSize)
	}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			verr.Add("page", "must be a positive integer")
		}
		page = n
	}
	if err := verr.OrNil(); err != nil {
		return filter, err
	}

	if limit == 0 {
		limit = service.DefaultPageSize
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit
	return filter, nil
}

// bindJSON decodes the request body, reporting malformed input as a validation error.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return service.NewValidationError("body", err.Error())
	}
	return nil
}
