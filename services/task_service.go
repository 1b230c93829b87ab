package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"agencyops/models"
	"agencyops/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskInput is used for create and partial update; nil fields are left alone
// on update.
type TaskInput struct {
	Name                 *string `json:"name"`
	Description          *string `json:"description"`
	ClientID             *string `json:"clientId"`
	AssignedTo           *string `json:"assignedTo"`
	Priority             *string `json:"priority"`
	Status               *string `json:"status"`
	DueDate              *string `json:"dueDate"`
	CategoryID           *string `json:"categoryId"`
	PostingFrequency     *int    `json:"postingFrequency"`
	IdealDurationMinutes *int    `json:"idealDurationMinutes"`
}

type TaskFilter struct {
	Status     string
	Priority   string
	AssignedTo string
	ClientID   string
	CategoryID string
}

type TaskService struct {
	db       *gorm.DB
	activity *ActivityService
	now      func() time.Time
}

func NewTaskService(db *gorm.DB, activity *ActivityService) *TaskService {
	return &TaskService{db: db, activity: activity, now: time.Now}
}

func assetRank(t *models.Task) int {
	if t.TemplateSiteAsset != nil {
		for i, typ := range models.AssetTypeOrder {
			if t.TemplateSiteAsset.Type == typ {
				return i
			}
		}
	}
	return len(models.AssetTypeOrder)
}

// SortClientTasks orders tasks by asset type, then priority (most urgent
// first), then due date (earliest first, undated last).
func SortClientTasks(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := &tasks[i], &tasks[j]
		if ra, rb := assetRank(a), assetRank(b); ra != rb {
			return ra < rb
		}
		if pa, pb := models.TaskPriorityRank[a.Priority], models.TaskPriorityRank[b.Priority]; pa != pb {
			return pa > pb
		}
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return false
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		}
		return a.DueDate.Before(*b.DueDate)
	})
}

func (s *TaskService) preloaded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("TemplateSiteAsset").
		Preload("Assignee").
		Preload("Category")
}

func (s *TaskService) List(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	q := s.preloaded(ctx)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.AssignedTo != "" {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	tasks := []models.Task{}
	if err := q.Order("due_date").Find(&tasks).Error; err != nil {
		return nil, utils.NewInternalError("Failed to fetch tasks", err)
	}
	return tasks, nil
}

// ListByClient returns the client's tasks in SortClientTasks order.
func (s *TaskService) ListByClient(ctx context.Context, clientID string) ([]models.Task, error) {
	ok, err := exists(s.db.WithContext(ctx), &models.Client{}, clientID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to check client", err)
	}
	if !ok {
		return nil, utils.NewNotFoundError("Client not found")
	}
	tasks, err := s.List(ctx, TaskFilter{ClientID: clientID})
	if err != nil {
		return nil, err
	}
	SortClientTasks(tasks)
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := findOr(s.preloaded(ctx), &task, id, "Task"); err != nil {
		return nil, err
	}
	return &task, nil
}

// apply copies the non-nil input fields onto task, validating each.
func (s *TaskService) apply(tx *gorm.DB, in TaskInput, task *models.Task) error {
	if in.Name != nil {
		task.Name = strings.TrimSpace(*in.Name)
	}
	if task.Name == "" {
		return utils.NewValidationError("Task name is required")
	}
	if in.Description != nil {
		task.Description = strings.TrimSpace(*in.Description)
	}
	if in.ClientID != nil {
		task.ClientID = strings.TrimSpace(*in.ClientID)
	}
	if task.ClientID == "" {
		return utils.NewValidationError("Client is required")
	}
	ok, err := exists(tx, &models.Client{}, task.ClientID)
	if err != nil {
		return utils.NewInternalError("Failed to check client", err)
	}
	if !ok {
		return utils.NewValidationError("Client does not exist")
	}
	if in.AssignedTo != nil {
		task.AssignedTo = optionalID(in.AssignedTo)
		if task.AssignedTo != nil {
			ok, err := exists(tx, &models.User{}, *task.AssignedTo)
			if err != nil {
				return utils.NewInternalError("Failed to check assignee", err)
			}
			if !ok {
				return utils.NewValidationError("Assignee does not exist")
			}
		}
	}
	if in.CategoryID != nil {
		task.CategoryID = optionalID(in.CategoryID)
		if task.CategoryID != nil {
			ok, err := exists(tx, &models.TaskCategory{}, *task.CategoryID)
			if err != nil {
				return utils.NewInternalError("Failed to check category", err)
			}
			if !ok {
				return utils.NewValidationError("Category does not exist")
			}
		}
	}
	if in.Priority != nil {
		p := models.TaskPriority(strings.TrimSpace(*in.Priority))
		if _, ok := models.TaskPriorityRank[p]; !ok {
			return utils.NewValidationError("Invalid priority %q", *in.Priority)
		}
		task.Priority = p
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if in.Status != nil {
		st := models.TaskStatus(strings.TrimSpace(*in.Status))
		if !models.ValidTaskStatuses[st] {
			return utils.NewValidationError("Invalid status %q", *in.Status)
		}
		if st == models.TaskCompleted && task.Status != models.TaskCompleted {
			now := s.now()
			task.CompletedAt = &now
		} else if st != models.TaskCompleted {
			task.CompletedAt = nil
		}
		task.Status = st
	}
	if task.Status == "" {
		task.Status = models.TaskPending
	}
	if in.DueDate != nil {
		due, err := parseDate("dueDate", *in.DueDate)
		if err != nil {
			return err
		}
		task.DueDate = due
	}
	if in.PostingFrequency != nil {
		task.PostingFrequency = clampPositive(in.PostingFrequency, models.DefaultPostingFrequency)
	}
	if task.PostingFrequency == 0 {
		task.PostingFrequency = models.DefaultPostingFrequency
	}
	if in.IdealDurationMinutes != nil {
		task.IdealDurationMinutes = clampPositive(in.IdealDurationMinutes, models.DefaultIdealDurationMinutes)
	}
	if task.IdealDurationMinutes == 0 {
		task.IdealDurationMinutes = models.DefaultIdealDurationMinutes
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, in TaskInput) (*models.Task, error) {
	db := s.db.WithContext(ctx)
	var task models.Task
	if err := s.apply(db, in, &task); err != nil {
		return nil, err
	}
	if err := db.Omit(clause.Associations).Create(&task).Error; err != nil {
		return nil, utils.NewInternalError("Failed to create task", err)
	}
	s.activity.Record(ctx, models.ActionCreate, "task", task.ID, fmt.Sprintf("Created task %s", task.Name), nil)
	return s.Get(ctx, task.ID)
}

func (s *TaskService) Update(ctx context.Context, id string, in TaskInput) (*models.Task, error) {
	db := s.db.WithContext(ctx)
	var task models.Task
	if err := findOr(db, &task, id, "Task"); err != nil {
		return nil, err
	}
	previous := task.Status
	if in.AssignedTo != nil && optionalID(in.AssignedTo) != nil &&
		(task.AssignedTo == nil || *task.AssignedTo != *optionalID(in.AssignedTo)) {
		// a new assignee should hear about the task
		task.NotifiedAt = nil
	}
	if err := s.apply(db, in, &task); err != nil {
		return nil, err
	}
	if err := db.Omit(clause.Associations).Save(&task).Error; err != nil {
		return nil, utils.NewInternalError("Failed to update task", err)
	}

	action := models.ActionUpdate
	if previous != task.Status {
		action = models.ActionStatusChange
	}
	s.activity.Record(ctx, action, "task", id, fmt.Sprintf("Updated task %s", task.Name),
		map[string]interface{}{"status": task.Status})
	return s.Get(ctx, id)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if res.Error != nil {
		return utils.NewInternalError("Failed to delete task", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NewNotFoundError("Task not found")
	}
	s.activity.Record(ctx, models.ActionDelete, "task", id, "Deleted task", nil)
	return nil
}

// MarkOverdue flags open tasks whose due date has passed.
func (s *TaskService) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("status IN ? AND due_date IS NOT NULL AND due_date < ?",
			[]models.TaskStatus{models.TaskPending, models.TaskInProgress}, now).
		Update("status", models.TaskOverdue)
	if res.Error != nil {
		return 0, utils.NewInternalError("Failed to mark overdue tasks", res.Error)
	}
	return res.RowsAffected, nil
}

// PendingNotifications returns assigned, open tasks nobody has been told about yet.
func (s *TaskService) PendingNotifications(ctx context.Context, limit int) ([]models.Task, error) {
	tasks := []models.Task{}
	err := s.db.WithContext(ctx).
		Preload("Assignee").
		Preload("Client").
		Where("notified_at IS NULL AND assigned_to IS NOT NULL AND status IN ?",
			[]models.TaskStatus{models.TaskPending, models.TaskInProgress}).
		Order("created_at").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, utils.NewInternalError("Failed to fetch tasks to notify", err)
	}
	return tasks, nil
}

func (s *TaskService) MarkNotified(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Task{}).Where("id IN ?", ids).Update("notified_at", at).Error; err != nil {
		return utils.NewInternalError("Failed to mark tasks notified", err)
	}
	return nil
}

type TaskCategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type TaskCategoryService struct {
	db       *gorm.DB
	activity *ActivityService
}

func NewTaskCategoryService(db *gorm.DB, activity *ActivityService) *TaskCategoryService {
	return &TaskCategoryService{db: db, activity: activity}
}

func (s *TaskCategoryService) List(ctx context.Context) ([]models.TaskCategory, error) {
	categories := []models.TaskCategory{}
	if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, utils.NewInternalError("Failed to fetch task categories", err)
	}
	return categories, nil
}

func (s *TaskCategoryService) save(ctx context.Context, id string, in TaskCategoryInput) (*models.TaskCategory, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, utils.NewValidationError("Category name is required")
	}
	db := s.db.WithContext(ctx)
	var category models.TaskCategory
	if id != "" {
		if err := findOr(db, &category, id, "Task category"); err != nil {
			return nil, err
		}
	}
	taken, err := nameTaken(db, &models.TaskCategory{}, name, id)
	if err != nil {
		return nil, utils.NewInternalError("Failed to check category name", err)
	}
	if taken {
		return nil, utils.NewConflictError("Category name already exists")
	}
	category.Name = name
	category.Description = strings.TrimSpace(in.Description)
	if err := db.Save(&category).Error; err != nil {
		if isDuplicate(err) {
			return nil, utils.NewConflictError("Category name already exists")
		}
		return nil, utils.NewInternalError("Failed to save task category", err)
	}
	return &category, nil
}

func (s *TaskCategoryService) Create(ctx context.Context, in TaskCategoryInput) (*models.TaskCategory, error) {
	category, err := s.save(ctx, "", in)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, models.ActionCreate, "task_category", category.ID, fmt.Sprintf("Created task category %s", category.Name), nil)
	return category, nil
}

func (s *TaskCategoryService) Update(ctx context.Context, id string, in TaskCategoryInput) (*models.TaskCategory, error) {
	category, err := s.save(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, models.ActionUpdate, "task_category", id, fmt.Sprintf("Updated task category %s", category.Name), nil)
	return category, nil
}

// Delete removes the category and clears it from its tasks.
func (s *TaskCategoryService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.TaskCategory
		if err := findOr(tx, &category, id, "Task category"); err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return utils.NewInternalError("Failed to detach tasks", err)
		}
		if err := tx.Delete(&category).Error; err != nil {
			return utils.NewInternalError("Failed to delete task category", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.activity.Record(ctx, models.ActionDelete, "task_category", id, "Deleted task category", nil)
	return nil
}
