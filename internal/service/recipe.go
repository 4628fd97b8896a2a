package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPageSize is the page size used when a listing does not ask for one.
const DefaultPageSize = 6

// RecipeService composes recipes together with their ingredient lines and
// tags, and serves the hydrated read side.
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{db: db, images: images}
}

// composition is a validated RecipeInput. nil slices mean "unchanged".
type composition struct {
	name        *string
	text        *string
	cookingTime *int
	image       *string
	lines       []models.IngredientLine
	tagIDs      []uuid.UUID
}

func (c composition) ingredientIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.lines))
	for i, l := range c.lines {
		ids[i] = l.IngredientID
	}
	return ids
}

// validateInput checks every field of input and reports all problems at
// once. With full set, every field is required (creation).
func validateInput(input types.RecipeInput, full bool) (composition, error) {
	verr := &ValidationError{}
	comp := composition{}

	if input.Name == nil {
		if full {
			verr.Add("name", "this field is required")
		}
	} else {
		name := strings.TrimSpace(*input.Name)
		switch {
		case name == "":
			verr.Add("name", "this field may not be blank")
		case utf8.RuneCountInString(name) > models.MaxNameLength:
			verr.Add("name", fmt.Sprintf("ensure this field has no more than %d characters", models.MaxNameLength))
		}
		comp.name = &name
	}

	if input.Text == nil {
		if full {
			verr.Add("text", "this field is required")
		}
	} else {
		if strings.TrimSpace(*input.Text) == "" {
			verr.Add("text", "this field may not be blank")
		}
		comp.text = input.Text
	}

	if input.CookingTime == nil {
		if full {
			verr.Add("cooking_time", "this field is required")
		}
	} else {
		if *input.CookingTime < models.MinCookingTime || *input.CookingTime > models.MaxCookingTime {
			verr.Add("cooking_time", fmt.Sprintf("must be between %d and %d minutes", models.MinCookingTime, models.MaxCookingTime))
		}
		comp.cookingTime = input.CookingTime
	}

	if input.Image == nil {
		if full {
			verr.Add("image", "this field is required")
		}
	} else {
		if strings.TrimSpace(*input.Image) == "" {
			verr.Add("image", "this field may not be blank")
		}
		comp.image = input.Image
	}

	if (input.Ingredients == nil && full) || (input.Ingredients != nil && len(input.Ingredients) == 0) {
		verr.Add("ingredients", "at least one ingredient is required")
	}
	if len(input.Ingredients) > 0 {
		seen := make(map[uuid.UUID]bool, len(input.Ingredients))
		comp.lines = make([]models.IngredientLine, 0, len(input.Ingredients))
		for _, in := range input.Ingredients {
			if in.ID == uuid.Nil {
				verr.Add("ingredients", "ingredient id is required")
				continue
			}
			if seen[in.ID] {
				verr.Add("ingredients", fmt.Sprintf("duplicate ingredient %s", in.ID))
				continue
			}
			seen[in.ID] = true
			if in.Amount < models.MinIngredientAmount {
				verr.Add("ingredients", fmt.Sprintf("amount of ingredient %s must be at least %d", in.ID, models.MinIngredientAmount))
			}
			comp.lines = append(comp.lines, models.IngredientLine{IngredientID: in.ID, Amount: in.Amount})
		}
	}

	if (input.Tags == nil && full) || (input.Tags != nil && len(input.Tags) == 0) {
		verr.Add("tags", "at least one tag is required")
	}
	if len(input.Tags) > 0 {
		seen := make(map[uuid.UUID]bool, len(input.Tags))
		comp.tagIDs = make([]uuid.UUID, 0, len(input.Tags))
		for _, id := range input.Tags {
			if id == uuid.Nil {
				verr.Add("tags", "tag id is required")
				continue
			}
			if !seen[id] {
				seen[id] = true
				comp.tagIDs = append(comp.tagIDs, id)
			}
		}
	}

	return comp, verr.OrNil()
}

// Create persists a recipe with its ingredient lines and tags in one
// transaction and returns it hydrated for the author.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, input types.RecipeInput) (resp *types.RecipeResponse, err error) {
	defer func() { metrics.RecordComposition("create", err) }()

	comp, err := validateInput(input, true)
	if err != nil {
		return nil, err
	}

	image, uploaded, err := s.storeImage(ctx, *comp.image)
	if err != nil {
		return nil, err
	}
	if uploaded == "" {
		return nil, NewValidationError("image", "expected a base64 data URL")
	}

	recipe := models.Recipe{
		Name:        *comp.name,
		Text:        *comp.text,
		CookingTime: *comp.cookingTime,
		Image:       image,
		AuthorID:    authorID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNameAvailable(tx, recipe.Name, uuid.Nil); err != nil {
			return err
		}
		if err := resolveReferences(tx, comp); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := replaceLines(tx, recipe.ID, comp.lines, false); err != nil {
			return err
		}
		if err := replaceTags(tx, recipe.ID, comp.tagIDs, false); err != nil {
			return err
		}
		return checkComposition(tx, recipe.ID)
	})
	if err != nil {
		s.discardImage(ctx, uploaded)
		return nil, mapStorageError(err, "recipe")
	}

	logging.Debug().Str("recipe_id", recipe.ID.String()).Str("author_id", authorID.String()).Msg("recipe created")
	return s.Get(ctx, recipe.ID, &authorID)
}

// Update changes the supplied fields of a recipe. Supplied ingredient and tag
// lists replace the stored sets as a whole.
func (s *RecipeService) Update(ctx context.Context, id uuid.UUID, input types.RecipeInput, viewer *uuid.UUID) (resp *types.RecipeResponse, err error) {
	defer func() { metrics.RecordComposition("update", err) }()

	comp, err := validateInput(input, false)
	if err != nil {
		return nil, err
	}

	var newImage, uploaded string
	if comp.image != nil {
		newImage, uploaded, err = s.storeImage(ctx, *comp.image)
		if err != nil {
			return nil, err
		}
	}

	var oldImage string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := lockForUpdate(tx).First(&recipe, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newNotFound("recipe", id)
			}
			return err
		}
		oldImage = recipe.Image
		if comp.image != nil && uploaded == "" && newImage != recipe.Image {
			return NewValidationError("image", "expected a base64 data URL or the current image")
		}

		if comp.name != nil && *comp.name != recipe.Name {
			if err := ensureNameAvailable(tx, *comp.name, id); err != nil {
				return err
			}
		}
		if err := resolveReferences(tx, comp); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if comp.name != nil {
			updates["name"] = *comp.name
		}
		if comp.text != nil {
			updates["text"] = *comp.text
		}
		if comp.cookingTime != nil {
			updates["cooking_time"] = *comp.cookingTime
		}
		if comp.image != nil {
			updates["image"] = newImage
		}
		if len(updates) > 0 {
			if err := tx.Model(&recipe).Omit(clause.Associations).Updates(updates).Error; err != nil {
				return err
			}
		}

		if comp.lines != nil {
			if err := replaceLines(tx, id, comp.lines, true); err != nil {
				return err
			}
		}
		if comp.tagIDs != nil {
			if err := replaceTags(tx, id, comp.tagIDs, true); err != nil {
				return err
			}
		}
		return checkComposition(tx, id)
	})
	if err != nil {
		s.discardImage(ctx, uploaded)
		return nil, mapStorageError(err, "recipe")
	}

	if comp.image != nil && newImage != oldImage {
		s.discardImage(ctx, oldImage)
	}

	logging.Debug().Str("recipe_id", id.String()).Msg("recipe updated")
	return s.Get(ctx, id, viewer)
}

// Delete removes a recipe. Lines, tag links and ledger entries cascade.
func (s *RecipeService) Delete(ctx context.Context, id uuid.UUID) error {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := lockForUpdate(tx).First(&recipe, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newNotFound("recipe", id)
			}
			return err
		}
		image = recipe.Image

		// dependents go first; FK cascades are not enforced on every driver
		for _, model := range []interface{}{&models.IngredientLine{}, &models.Favorite{}, &models.CartEntry{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
	if err != nil {
		return mapStorageError(err, "recipe")
	}

	s.discardImage(ctx, image)
	return nil
}

// AuthorOf returns the author of a recipe for ownership checks.
func (s *RecipeService) AuthorOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id", "author_id").First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, newNotFound("recipe", id)
		}
		return uuid.Nil, mapStorageError(err, "recipe")
	}
	return recipe.AuthorID, nil
}

// Get returns a hydrated recipe. Viewer-relative flags are false when viewer is nil.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Preload("Author").First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFound("recipe", id)
		}
		return nil, mapStorageError(err, "recipe")
	}

	hydrated, err := s.hydrate(ctx, []models.Recipe{recipe}, viewer)
	if err != nil {
		return nil, err
	}
	return &hydrated[0], nil
}

// List returns one page of recipes ordered by publication time.
func (s *RecipeService) List(ctx context.Context, filter types.RecipeFilter, viewer *uuid.UUID) (*types.RecipeList, error) {
	db := s.db.WithContext(ctx)
	query := db.Model(&models.Recipe{})

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if viewer != nil && filter.IsFavorited {
		query = query.Where("recipes.id IN (?)",
			db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", *viewer))
	}
	if viewer != nil && filter.IsInShoppingCart {
		query = query.Where("recipes.id IN (?)",
			db.Model(&models.CartEntry{}).Select("recipe_id").Where("user_id = ?", *viewer))
	}

	var count int64
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, mapStorageError(err, "recipe")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var recipes []models.Recipe
	err := query.Preload("Author").
		Order("recipes.created_at ASC").Order("recipes.id").
		Limit(limit).Offset(offset).
		Find(&recipes).Error
	if err != nil {
		return nil, mapStorageError(err, "recipe")
	}

	results, err := s.hydrate(ctx, recipes, viewer)
	if err != nil {
		return nil, err
	}
	return &types.RecipeList{Count: count, Results: results}, nil
}

type tagRow struct {
	RecipeID uuid.UUID
	ID       uuid.UUID
	Name     string
	Color    string
	Slug     string
}

type lineRow struct {
	RecipeID        uuid.UUID
	ID              uuid.UUID
	Name            string
	MeasurementUnit string
	Amount          int
}

// hydrate loads tags, ingredient lines and viewer flags for a page of
// recipes with one query per relation.
func (s *RecipeService) hydrate(ctx context.Context, recipes []models.Recipe, viewer *uuid.UUID) ([]types.RecipeResponse, error) {
	if len(recipes) == 0 {
		return []types.RecipeResponse{}, nil
	}
	db := s.db.WithContext(ctx)

	ids := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		authorIDs = append(authorIDs, r.AuthorID)
	}

	var tags []tagRow
	err := db.Table("recipe_tags").
		Select("recipe_tags.recipe_id, tags.id, tags.name, tags.color, tags.slug").
		Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
		Where("recipe_tags.recipe_id IN ?", ids).
		Order("tags.name").
		Scan(&tags).Error
	if err != nil {
		return nil, mapStorageError(err, "tag")
	}

	var lines []lineRow
	err = db.Table("recipe_ingredients").
		Select("recipe_ingredients.recipe_id, ingredients.id, ingredients.name, ingredients.measurement_unit, recipe_ingredients.amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id IN ?", ids).
		Order("ingredients.name").
		Scan(&lines).Error
	if err != nil {
		return nil, mapStorageError(err, "ingredient")
	}

	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	subscribed := map[uuid.UUID]bool{}
	if viewer != nil {
		if err := pluckSet(db.Model(&models.Favorite{}).Where("user_id = ? AND recipe_id IN ?", *viewer, ids), "recipe_id", favorited); err != nil {
			return nil, err
		}
		if err := pluckSet(db.Model(&models.CartEntry{}).Where("user_id = ? AND recipe_id IN ?", *viewer, ids), "recipe_id", inCart); err != nil {
			return nil, err
		}
		if err := pluckSet(db.Model(&models.Follow{}).Where("user_id = ? AND author_id IN ?", *viewer, authorIDs), "author_id", subscribed); err != nil {
			return nil, err
		}
	}

	tagsByRecipe := make(map[uuid.UUID][]types.TagResponse, len(recipes))
	for _, t := range tags {
		tagsByRecipe[t.RecipeID] = append(tagsByRecipe[t.RecipeID], types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug})
	}
	linesByRecipe := make(map[uuid.UUID][]types.RecipeIngredientResponse, len(recipes))
	for _, l := range lines {
		linesByRecipe[l.RecipeID] = append(linesByRecipe[l.RecipeID], types.RecipeIngredientResponse{
			ID: l.ID, Name: l.Name, MeasurementUnit: l.MeasurementUnit, Amount: l.Amount,
		})
	}

	result := make([]types.RecipeResponse, len(recipes))
	for i, r := range recipes {
		resp := types.RecipeResponse{
			ID: r.ID,
			Author: types.AuthorResponse{
				ID:           r.Author.ID,
				Email:        r.Author.Email,
				Username:     r.Author.Username,
				FirstName:    r.Author.FirstName,
				LastName:     r.Author.LastName,
				IsSubscribed: subscribed[r.AuthorID],
			},
			Tags:             tagsByRecipe[r.ID],
			Ingredients:      linesByRecipe[r.ID],
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			CreatedAt:        r.CreatedAt,
		}
		if resp.Tags == nil {
			resp.Tags = []types.TagResponse{}
		}
		if resp.Ingredients == nil {
			resp.Ingredients = []types.RecipeIngredientResponse{}
		}
		result[i] = resp
	}
	return result, nil
}

func pluckSet(query *gorm.DB, column string, into map[uuid.UUID]bool) error {
	var ids []uuid.UUID
	if err := query.Pluck(column, &ids).Error; err != nil {
		return mapStorageError(err, "recipe")
	}
	for _, id := range ids {
		into[id] = true
	}
	return nil
}

// lockForUpdate takes a row lock on drivers that support SELECT ... FOR UPDATE.
// SQLite serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func ensureNameAvailable(tx *gorm.DB, name string, exclude uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.Recipe{}).Where("name = ? AND id <> ?", name, exclude).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return newConflict("recipe", fmt.Sprintf("recipe named %q already exists", name))
	}
	return nil
}

// resolveReferences reports every ingredient and tag id that does not exist.
func resolveReferences(tx *gorm.DB, comp composition) error {
	if missing, err := missingIDs(tx, &models.Ingredient{}, comp.ingredientIDs()); err != nil {
		return err
	} else if len(missing) > 0 {
		return newNotFound("ingredient", missing...)
	}

	if missing, err := missingIDs(tx, &models.Tag{}, comp.tagIDs); err != nil {
		return err
	} else if len(missing) > 0 {
		return newNotFound("tag", missing...)
	}
	return nil
}

func missingIDs(tx *gorm.DB, model interface{}, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []uuid.UUID
	if err := tx.Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	present := make(map[uuid.UUID]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func replaceLines(tx *gorm.DB, recipeID uuid.UUID, lines []models.IngredientLine, clear bool) error {
	if clear {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.IngredientLine{}).Error; err != nil {
			return err
		}
	}

	rows := make([]models.IngredientLine, len(lines))
	for i, l := range lines {
		rows[i] = models.IngredientLine{RecipeID: recipeID, IngredientID: l.IngredientID, Amount: l.Amount}
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

func replaceTags(tx *gorm.DB, recipeID uuid.UUID, tagIDs []uuid.UUID, clear bool) error {
	if clear {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
	}

	rows := make([]models.RecipeTag, len(tagIDs))
	for i, id := range tagIDs {
		rows[i] = models.RecipeTag{RecipeID: recipeID, TagID: id}
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

// checkComposition verifies, inside the writing transaction, that the recipe
// keeps at least one ingredient line and one tag.
func checkComposition(tx *gorm.DB, recipeID uuid.UUID) error {
	var lines, tags int64
	if err := tx.Model(&models.IngredientLine{}).Where("recipe_id = ?", recipeID).Count(&lines).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.RecipeTag{}).Where("recipe_id = ?", recipeID).Count(&tags).Error; err != nil {
		return err
	}

	verr := &ValidationError{}
	if lines == 0 {
		verr.Add("ingredients", "at least one ingredient is required")
	}
	if tags == 0 {
		verr.Add("tags", "at least one tag is required")
	}
	return verr.OrNil()
}

// storeImage persists a data URL and returns the stored reference. Any other
// string comes back unchanged with an empty uploaded; callers accept it only
// as the recipe's own current image.
func (s *RecipeService) storeImage(ctx context.Context, raw string) (ref, uploaded string, err error) {
	data, contentType, isData, err := decodeDataURL(raw)
	if err != nil {
		return "", "", err
	}
	if !isData {
		return raw, "", nil
	}
	if s.images == nil {
		return "", "", errors.New("image storage is not configured")
	}

	ref, err = s.images.Save(ctx, data, contentType)
	if err != nil {
		return "", "", fmt.Errorf("failed to store recipe image: %w", err)
	}
	return ref, ref, nil
}

func (s *RecipeService) discardImage(ctx context.Context, ref string) {
	if ref == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		logging.Warn().Err(err).Str("image", ref).Msg("failed to delete recipe image")
	}
}
