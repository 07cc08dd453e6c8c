package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskhub/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

// TaskRepositoryInterface is the storage contract the handlers depend
// on. Every operation is scoped to an owner: rows belonging to other
// users are invisible.
type TaskRepositoryInterface interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, ownerID uuid.UUID, id uint) (*model.Task, error)
	Update(ctx context.Context, ownerID uuid.UUID, id uint, fields map[string]interface{}) (*model.Task, error)
	Delete(ctx context.Context, ownerID uuid.UUID, id uint) error
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// ListByOwner retrieves all tasks belonging to ownerID, newest first.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// Create inserts a new task. The store assigns id and timestamps.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by id, restricted to the given owner.
func (r *TaskRepository) GetByID(ctx context.Context, ownerID uuid.UUID, id uint) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ? AND user_id = ?", id, ownerID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// Update applies only the columns present in fields to the owner's
// task and returns the updated row. An empty fields map is a plain
// read. Keys are column names; a nil value clears a nullable column
// (used for due_date).
func (r *TaskRepository) Update(ctx context.Context, ownerID uuid.UUID, id uint, fields map[string]interface{}) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ? AND user_id = ?", id, ownerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if len(fields) == 0 {
			return nil
		}

		if err := tx.Model(&model.Task{}).
			Where("id = ? AND user_id = ?", id, ownerID).
			Updates(fields).Error; err != nil {
			return err
		}

		return tx.First(&task, "id = ? AND user_id = ?", id, ownerID).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes the owner's task by id. Deleting a row that does not
// exist (or is owned by someone else) is not an error: delete is
// idempotent from the caller's point of view.
func (r *TaskRepository) Delete(ctx context.Context, ownerID uuid.UUID, id uint) error {
	return r.db.WithContext(ctx).
		Delete(&model.Task{}, "id = ? AND user_id = ?", id, ownerID).Error
}
