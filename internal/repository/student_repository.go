package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "studentrecords/internal/errors"
	"studentrecords/internal/logger"
	"studentrecords/internal/model"
)

// StudentRepository defines student persistence operations.
// Lookups return (nil, nil) when no row matches.
type StudentRepository interface {
	GetAll(ctx context.Context, pageSize, offset int, name string) ([]model.Student, error)
	Count(ctx context.Context, name string) (int64, error)
	GetByID(ctx context.Context, id uint) (*model.Student, error)
	GetByRA(ctx context.Context, ra string) (*model.Student, error)
	GetByCPF(ctx context.Context, cpf string) (*model.Student, error)
	Create(ctx context.Context, student *model.Student) (*model.Student, error)
	Update(ctx context.Context, id uint, patch model.StudentPatch) (*model.Student, error)
	Delete(ctx context.Context, id uint) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// byName applies the case-insensitive substring filter on name when set.
func (r *studentRepository) byName(ctx context.Context, name string) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Student{})
	if name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+likeEscaper.Replace(strings.ToLower(name))+"%")
	}
	return query
}

// GetAll lists one page of students ordered by name.
func (r *studentRepository) GetAll(ctx context.Context, pageSize, offset int, name string) ([]model.Student, error) {
	students := []model.Student{}
	err := r.byName(ctx, name).
		Order("name ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&students).Error
	if err != nil {
		logger.From(ctx).Error("fetch students", zap.String("name_filter", name), zap.Error(err))
		return nil, err
	}
	return students, nil
}

// Count counts the students matching the name filter.
func (r *studentRepository) Count(ctx context.Context, name string) (int64, error) {
	var total int64
	if err := r.byName(ctx, name).Count(&total).Error; err != nil {
		logger.From(ctx).Error("count students", zap.String("name_filter", name), zap.Error(err))
		return 0, err
	}
	return total, nil
}

// GetByID finds a student by ID.
func (r *studentRepository) GetByID(ctx context.Context, id uint) (*model.Student, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByRA finds a student by registration number.
func (r *studentRepository) GetByRA(ctx context.Context, ra string) (*model.Student, error) {
	return r.first(ctx, "ra = ?", ra)
}

// GetByCPF finds a student by CPF.
func (r *studentRepository) GetByCPF(ctx context.Context, cpf string) (*model.Student, error) {
	return r.first(ctx, "cpf = ?", cpf)
}

func (r *studentRepository) first(ctx context.Context, cond string, arg interface{}) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).Where(cond, arg).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.From(ctx).Error("fetch student", zap.String("where", cond), zap.Any("value", arg), zap.Error(err))
		return nil, err
	}
	return &student, nil
}

// Create inserts a student and returns the stored row.
func (r *studentRepository) Create(ctx context.Context, student *model.Student) (*model.Student, error) {
	row := model.Student{
		Name:  student.Name,
		Email: student.Email,
		RA:    student.RA,
		CPF:   student.CPF,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		logger.From(ctx).Error("create student", zap.String("ra", student.RA), zap.Error(err))
		return nil, err
	}
	return r.reload(ctx, row.ID)
}

// Update writes the patch fields of an existing student and refreshes updated_at.
func (r *studentRepository) Update(ctx context.Context, id uint, patch model.StudentPatch) (*model.Student, error) {
	if err := r.mustExist(ctx, id); err != nil {
		return nil, err
	}

	cols := patch.Columns()
	cols["updated_at"] = time.Now()
	err := r.db.WithContext(ctx).Model(&model.Student{}).Where("id = ?", id).Updates(cols).Error
	if err != nil {
		logger.From(ctx).Error("update student", logger.StudentID(id), zap.Error(err))
		return nil, err
	}
	return r.reload(ctx, id)
}

// Delete removes an existing student.
func (r *studentRepository) Delete(ctx context.Context, id uint) error {
	if err := r.mustExist(ctx, id); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Student{}).Error; err != nil {
		logger.From(ctx).Error("delete student", logger.StudentID(id), zap.Error(err))
		return err
	}
	return nil
}

func (r *studentRepository) mustExist(ctx context.Context, id uint) error {
	student, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if student == nil {
		return apperrors.NotFound(fmt.Sprintf("Student with ID %d not found", id))
	}
	return nil
}

func (r *studentRepository) reload(ctx context.Context, id uint) (*model.Student, error) {
	student, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, fmt.Errorf("student %d vanished after write", id)
	}
	return student, nil
}
