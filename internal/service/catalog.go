package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	tagCacheKey = "catalog:tags"
	tagCacheTTL = 10 * time.Minute
)

var (
	slugPattern  = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the "slug" rule registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// validateStruct runs the shared validator and converts failures to a ValidationError.
func validateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError("input", err.Error())
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(strings.ToLower(fe.Field()), fmt.Sprintf("failed on the '%s' rule", fe.Tag()))
	}
	return verr
}

// IngredientService serves the read-only ingredient catalog
type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// List returns ingredients ordered by name. A non-empty prefix filters by
// name prefix, ignoring case.
func (s *IngredientService) List(ctx context.Context, prefix string) ([]types.IngredientResponse, error) {
	query := s.db.WithContext(ctx).Model(&models.Ingredient{}).Order("name")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", strings.ToLower(escapeLike(prefix))+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, mapStorageError(err, "ingredient")
	}

	result := make([]types.IngredientResponse, len(ingredients))
	for i, ing := range ingredients {
		result[i] = toIngredientResponse(ing)
	}
	return result, nil
}

func (s *IngredientService) Get(ctx context.Context, id uuid.UUID) (*types.IngredientResponse, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFound("ingredient", id)
		}
		return nil, mapStorageError(err, "ingredient")
	}
	resp := toIngredientResponse(ingredient)
	return &resp, nil
}

func toIngredientResponse(i models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// IngredientRow is one record of an ingredient import.
type IngredientRow struct {
	Name            string
	MeasurementUnit string
}

// ParseIngredientCSV reads "name,measurement_unit" records. The first row
// is a header and is skipped.
func ParseIngredientCSV(r io.Reader) ([]IngredientRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse ingredient csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]IngredientRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, IngredientRow{
			Name:            strings.TrimSpace(rec[0]),
			MeasurementUnit: strings.TrimSpace(rec[1]),
		})
	}
	return rows, nil
}

// ImportIngredients upserts rows by name in one transaction and returns the
// number of rows written. Rows without a name are skipped; the last row wins
// for repeated names. With replace set, ingredients missing from rows are
// deleted unless a recipe still uses them, so no recipe loses a line.
func ImportIngredients(ctx context.Context, db *gorm.DB, rows []IngredientRow, replace bool) (int, error) {
	seen := make(map[string]int, len(rows))
	batch := make([]models.Ingredient, 0, len(rows))
	for _, row := range rows {
		if row.Name == "" {
			continue
		}
		if idx, ok := seen[row.Name]; ok {
			batch[idx].MeasurementUnit = row.MeasurementUnit
			continue
		}
		seen[row.Name] = len(batch)
		batch = append(batch, models.Ingredient{Name: row.Name, MeasurementUnit: row.MeasurementUnit})
	}

	var removed, kept int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(batch) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"measurement_unit"}),
			}).CreateInBatches(&batch, 500).Error
			if err != nil {
				return err
			}
		}
		if !replace {
			return nil
		}

		var existing []models.Ingredient
		used := tx.Model(&models.IngredientLine{}).Distinct("ingredient_id")
		if err := tx.Select("id", "name").Where("id NOT IN (?)", used).Find(&existing).Error; err != nil {
			return err
		}
		stale := make([]uuid.UUID, 0, len(existing))
		for _, ing := range existing {
			if _, ok := seen[ing.Name]; !ok {
				stale = append(stale, ing.ID)
			}
		}
		for start := 0; start < len(stale); start += 500 {
			end := min(start+500, len(stale))
			if err := tx.Where("id IN ?", stale[start:end]).Delete(&models.Ingredient{}).Error; err != nil {
				return err
			}
		}
		removed = len(stale)

		var total int64
		if err := tx.Model(&models.Ingredient{}).Count(&total).Error; err != nil {
			return err
		}
		kept = int(total) - len(batch)
		return nil
	})
	if err != nil {
		return 0, mapStorageError(err, "ingredient")
	}

	event := logging.Info().Int("rows", len(batch)).Bool("replace", replace)
	if replace {
		event = event.Int("removed", removed).Int("kept_in_use", kept)
	}
	event.Msg("imported ingredients")
	return len(batch), nil
}

// TagService serves the tag catalog, cached in Redis when a client is set
type TagService struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewTagService creates a TagService. redisClient may be nil.
func NewTagService(db *gorm.DB, redisClient *redis.Client) *TagService {
	return &TagService{db: db, redis: redisClient}
}

// List returns every tag ordered by name
func (s *TagService) List(ctx context.Context) ([]types.TagResponse, error) {
	if cached, ok := s.cachedTags(ctx); ok {
		return cached, nil
	}

	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, mapStorageError(err, "tag")
	}

	result := make([]types.TagResponse, len(tags))
	for i, t := range tags {
		result[i] = toTagResponse(t)
	}

	s.cacheTags(ctx, result)
	return result, nil
}

func (s *TagService) Get(ctx context.Context, id uuid.UUID) (*types.TagResponse, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFound("tag", id)
		}
		return nil, mapStorageError(err, "tag")
	}
	resp := toTagResponse(tag)
	return &resp, nil
}

// Create adds a tag after validating its name, slug and color
func (s *TagService) Create(ctx context.Context, input types.TagInput) (*types.TagResponse, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	tag := models.Tag{Name: input.Name, Slug: input.Slug, Color: strings.ToUpper(input.Color)}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, newConflict("tag", fmt.Sprintf("tag %q conflicts with an existing tag", input.Slug))
		}
		return nil, mapStorageError(err, "tag")
	}

	s.invalidate(ctx)
	resp := toTagResponse(tag)
	return &resp, nil
}

func (s *TagService) cachedTags(ctx context.Context) ([]types.TagResponse, bool) {
	if s.redis == nil {
		return nil, false
	}

	data, err := s.redis.Get(ctx, tagCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Warn().Err(err).Msg("tag cache read failed")
		}
		return nil, false
	}

	var tags []types.TagResponse
	if err := json.Unmarshal(data, &tags); err != nil {
		logging.Warn().Err(err).Msg("tag cache entry is corrupt")
		return nil, false
	}
	return tags, true
}

func (s *TagService) cacheTags(ctx context.Context, tags []types.TagResponse) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, tagCacheKey, data, tagCacheTTL).Err(); err != nil {
		logging.Warn().Err(err).Msg("tag cache write failed")
	}
}

func (s *TagService) invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, tagCacheKey).Err(); err != nil {
		logging.Warn().Err(err).Msg("tag cache invalidation failed")
	}
}

func toTagResponse(t models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}
