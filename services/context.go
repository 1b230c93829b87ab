package services

import (
	"context"
	"errors"
	"strings"

	"agencyops/utils"

	"gorm.io/gorm"
)

type actorKey struct{}

// WithActor records the acting user id on the context for activity logging.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom returns the acting user id, if any.
func ActorFrom(ctx context.Context) *string {
	if id, ok := ctx.Value(actorKey{}).(string); ok && id != "" {
		return &id
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// findOr loads one row by id, mapping a missing row to a NotFoundError.
func findOr(tx *gorm.DB, dest interface{}, id, entity string) error {
	if err := tx.First(dest, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return utils.NewNotFoundError("%s not found", entity)
		}
		return utils.NewInternalError("Failed to load "+strings.ToLower(entity), err)
	}
	return nil
}

// exists reports whether a row with the id is present in the model's table.
func exists(tx *gorm.DB, model interface{}, id string) (bool, error) {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// optionalID normalizes an optional reference; blank and "none" mean no reference.
func optionalID(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" || v == "none" {
		return nil
	}
	return &v
}
