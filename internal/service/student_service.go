package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	apperrors "studentrecords/internal/errors"
	"studentrecords/internal/model"
	"studentrecords/internal/repository"
)

const (
	// DefaultPageSize is used when a listing does not specify a page size.
	DefaultPageSize = 10
	// DefaultPage is used when a listing does not specify a page.
	DefaultPage = 1
	// MaxPageSize bounds the rows returned by one listing.
	MaxPageSize = 100
)

const msgInvalidPagination = "Invalid pagination parameters"

// ListParams filters and pages a student listing.
type ListParams struct {
	PageSize int
	Page     int
	Name     *string
}

// Pagination describes the page returned by a listing.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int64 `json:"totalPages"`
}

// StudentPage is one page of students.
type StudentPage struct {
	Data       []model.Student `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// RAAvailability reports whether a registration number is free.
type RAAvailability struct {
	Available bool   `json:"available"`
	RA        string `json:"ra"`
	Message   string `json:"message"`
}

// StudentService handles student business rules.
type StudentService interface {
	GetAllStudents(ctx context.Context, params ListParams) (*StudentPage, error)
	GetStudentByID(ctx context.Context, id uint) (*model.Student, error)
	CreateStudent(ctx context.Context, input model.Student) (*model.Student, error)
	UpdateStudent(ctx context.Context, id uint, patch model.StudentPatch) (*model.Student, error)
	DeleteStudent(ctx context.Context, id uint) error
	CheckRAAvailability(ctx context.Context, ra string) (*RAAvailability, error)
}

type studentService struct {
	repo      repository.StudentRepository
	validator *StudentValidator
}

// NewStudentService creates a new student service.
func NewStudentService(repo repository.StudentRepository, validator *StudentValidator) StudentService {
	if validator == nil {
		validator = NewStudentValidator()
	}
	return &studentService{repo: repo, validator: validator}
}

// GetAllStudents lists a page of students ordered by name. Pages past the end
// return no data.
func (s *studentService) GetAllStudents(ctx context.Context, params ListParams) (*StudentPage, error) {
	if params.PageSize == 0 {
		params.PageSize = DefaultPageSize
	}
	if params.Page == 0 {
		params.Page = DefaultPage
	}

	if params.Page < 1 || params.PageSize < 1 || params.PageSize > MaxPageSize ||
		params.Page-1 > math.MaxInt/params.PageSize {
		return nil, apperrors.Validation(msgInvalidPagination)
	}

	var name string
	if params.Name != nil {
		name = *params.Name
	}

	offset := (params.Page - 1) * params.PageSize
	students, err := s.repo.GetAll(ctx, params.PageSize, offset, name)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	total, err := s.repo.Count(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}

	pageSize := int64(params.PageSize)
	return &StudentPage{
		Data: students,
		Pagination: Pagination{
			Total:      total,
			Page:       params.Page,
			PageSize:   params.PageSize,
			TotalPages: (total + pageSize - 1) / pageSize,
		},
	}, nil
}

// GetStudentByID returns a student or a not found error.
func (s *studentService) GetStudentByID(ctx context.Context, id uint) (*model.Student, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, apperrors.NotFound(fmt.Sprintf("Student with ID %d not found", id))
	}
	return student, nil
}

// CreateStudent validates the input, checks RA then CPF uniqueness and stores
// the student.
func (s *studentService) CreateStudent(ctx context.Context, input model.Student) (*model.Student, error) {
	if result := s.validator.Validate(&input); !result.IsValid {
		return nil, apperrors.Validation("Invalid student data", result.Errors...)
	}

	if err := s.ensureRAFree(ctx, input.RA, 0); err != nil {
		return nil, err
	}
	if err := s.ensureCPFFree(ctx, input.CPF, 0); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &input)
}

// UpdateStudent merges patch onto the stored student, revalidates it and
// rechecks RA and CPF only when the patch changes them.
func (s *studentService) UpdateStudent(ctx context.Context, id uint, patch model.StudentPatch) (*model.Student, error) {
	existing, err := s.GetStudentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := patch.Apply(*existing)
	if result := s.validator.Validate(&merged); !result.IsValid {
		return nil, apperrors.Validation("Invalid student data", result.Errors...)
	}

	if patch.RA != nil && *patch.RA != existing.RA {
		if err := s.ensureRAFree(ctx, *patch.RA, id); err != nil {
			return nil, err
		}
	}
	if patch.CPF != nil && *patch.CPF != existing.CPF {
		if err := s.ensureCPFFree(ctx, *patch.CPF, id); err != nil {
			return nil, err
		}
	}

	return s.repo.Update(ctx, id, patch)
}

// DeleteStudent removes an existing student.
func (s *studentService) DeleteStudent(ctx context.Context, id uint) error {
	if _, err := s.GetStudentByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// CheckRAAvailability reports whether ra is held by any student.
func (s *studentService) CheckRAAvailability(ctx context.Context, ra string) (*RAAvailability, error) {
	if strings.TrimSpace(ra) == "" {
		return nil, apperrors.Validation("Please provide a registration number to check")
	}

	existing, err := s.repo.GetByRA(ctx, ra)
	if err != nil {
		return nil, fmt.Errorf("check ra: %w", err)
	}

	if existing != nil {
		return &RAAvailability{
			Available: false,
			RA:        ra,
			Message:   fmt.Sprintf("Registration number %s is already in use", ra),
		}, nil
	}
	return &RAAvailability{
		Available: true,
		RA:        ra,
		Message:   fmt.Sprintf("Registration number %s is available", ra),
	}, nil
}

// ensureRAFree fails when ra belongs to a student other than exceptID.
func (s *studentService) ensureRAFree(ctx context.Context, ra string, exceptID uint) error {
	holder, err := s.repo.GetByRA(ctx, ra)
	if err != nil {
		return fmt.Errorf("check ra: %w", err)
	}
	if holder != nil && holder.ID != exceptID {
		return apperrors.Validation(fmt.Sprintf("Registration number %s is already in use by another student", ra))
	}
	return nil
}

// ensureCPFFree fails when cpf belongs to a student other than exceptID.
func (s *studentService) ensureCPFFree(ctx context.Context, cpf string, exceptID uint) error {
	holder, err := s.repo.GetByCPF(ctx, cpf)
	if err != nil {
		return fmt.Errorf("check cpf: %w", err)
	}
	if holder != nil && holder.ID != exceptID {
		return apperrors.Validation(fmt.Sprintf("CPF %s is already registered in the system", cpf))
	}
	return nil
}
