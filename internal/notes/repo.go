package notes

import (
	"context"
	stderrors "errors"
	"strings"

	"gorm.io/gorm"

	"github.com/skillsenselab/medscribe/internal/errors"
	"github.com/skillsenselab/medscribe/internal/logger"
	"github.com/skillsenselab/medscribe/internal/observability"
)

// Repository persists notes. Every operation is scoped to a user id;
// accessing another user's note reads as not found.
type Repository struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewRepository creates a repository. Migrate must be called before use
// unless the schema already exists.
func NewRepository(db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, log: log.WithComponent("notes")}
}

// Migrate creates or updates the notes schema.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&Note{}); err != nil {
		return errors.Database(err)
	}
	return nil
}

// Save inserts or updates a note.
func (r *Repository) Save(ctx context.Context, note *Note) error {
	if note.UserID == "" {
		return errors.InvalidInput("userId", "must not be empty")
	}
	ctx, span := observability.StartSpan(ctx, observability.SpanDBQuery)
	defer span.End()
	observability.SetSpanAttribute(ctx, "db.operation", "save")

	if err := r.db.WithContext(ctx).Save(note).Error; err != nil {
		return errors.Database(err)
	}
	return nil
}

// Get returns the user's note by id.
func (r *Repository) Get(ctx context.Context, userID, id string) (*Note, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanDBQuery)
	defer span.End()
	observability.SetSpanAttribute(ctx, "db.operation", "get")

	var note Note
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&note).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("note", id)
		}
		return nil, errors.Database(err)
	}
	return &note, nil
}

// List returns one page of the user's notes, newest first. page is
// 1-based; pageSize values below 1 fall back to 20.
func (r *Repository) List(ctx context.Context, userID string, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	ctx, span := observability.StartSpan(ctx, observability.SpanDBQuery)
	defer span.End()
	observability.SetSpanAttribute(ctx, "db.operation", "list")

	var items []Note
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize + 1).
		Find(&items).Error
	if err != nil {
		return nil, errors.Database(err)
	}

	hasMore := len(items) > pageSize
	if hasMore {
		items = items[:pageSize]
	}
	return &Page{Items: items, HasMore: hasMore}, nil
}

// Search returns the user's notes whose content, transcript or procedure
// type contains the keyword, newest first.
func (r *Repository) Search(ctx context.Context, userID, keyword string) ([]Note, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, errors.InvalidInput("keyword", "must not be empty")
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanDBQuery)
	defer span.End()
	observability.SetSpanAttribute(ctx, "db.operation", "search")

	pattern := "%" + keyword + "%"
	var items []Note
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("content LIKE ? OR transcript LIKE ? OR procedure_type LIKE ?", pattern, pattern, pattern).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, errors.Database(err)
	}
	return items, nil
}

// Delete soft-deletes the user's note by id.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanDBQuery)
	defer span.End()
	observability.SetSpanAttribute(ctx, "db.operation", "delete")

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Note{})
	if result.Error != nil {
		return errors.Database(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("note", id)
	}
	return nil
}
