package handler

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "studentrecords/internal/errors"
	"studentrecords/internal/model"
	"studentrecords/internal/service"
)

// StudentHandler handles student endpoints.
type StudentHandler struct {
	svc service.StudentService
}

// NewStudentHandler creates a new student handler.
func NewStudentHandler(svc service.StudentService) *StudentHandler {
	return &StudentHandler{svc: svc}
}

// CreateStudentRequest represents a student creation request.
type CreateStudentRequest struct {
	Name  string `json:"name" example:"Rafael Henrique"`
	Email string `json:"email" example:"rafael@example.com"`
	RA    string `json:"ra" example:"102030"`
	CPF   string `json:"cpf" example:"52998224725"`
}

// UpdateStudentRequest represents a partial student update. Omitted fields are kept.
type UpdateStudentRequest = model.StudentPatch

// StudentResponse wraps a single student.
type StudentResponse struct {
	Data *model.Student `json:"data"`
}

// StudentMessageResponse wraps a written student with a confirmation message.
type StudentMessageResponse struct {
	Message string         `json:"message"`
	Data    *model.Student `json:"data"`
}

// MessageResponse is a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// RAAvailabilityResponse wraps an RA availability check.
type RAAvailabilityResponse struct {
	Data *service.RAAvailability `json:"data"`
}

// GetAll godoc
// @Summary List students
// @Description Lists students ordered by name, optionally filtered by a case-insensitive name substring.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (max 100)" default(10)
// @Param name query string false "Name filter"
// @Success 200 {object} service.StudentPage
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /students [get]
func (h *StudentHandler) GetAll(c echo.Context) error {
	page, err := positiveQueryInt(c, "page", service.DefaultPage, math.MaxInt)
	if err != nil {
		return err
	}
	pageSize, err := positiveQueryInt(c, "pageSize", service.DefaultPageSize, service.MaxPageSize)
	if err != nil {
		return err
	}

	params := service.ListParams{Page: page, PageSize: pageSize}
	if name := c.QueryParam("name"); name != "" {
		params.Name = &name
	}

	result, err := h.svc.GetAllStudents(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// GetByID godoc
// @Summary Get student by id
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} StudentResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /students/{id} [get]
func (h *StudentHandler) GetByID(c echo.Context) error {
	id, err := studentID(c)
	if err != nil {
		return err
	}

	student, err := h.svc.GetStudentByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StudentResponse{Data: student})
}

// Create godoc
// @Summary Create student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param student body CreateStudentRequest true "Student data"
// @Success 201 {object} StudentMessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /students [post]
func (h *StudentHandler) Create(c echo.Context) error {
	var req CreateStudentRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}
	c.Set(payloadKey, req)

	student, err := h.svc.CreateStudent(c.Request().Context(), model.Student{
		Name:  req.Name,
		Email: req.Email,
		RA:    req.RA,
		CPF:   req.CPF,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, StudentMessageResponse{
		Message: "Student created successfully",
		Data:    student,
	})
}

// Update godoc
// @Summary Update student
// @Description Applies the supplied fields to the student; omitted fields keep their value.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param student body UpdateStudentRequest true "Fields to change"
// @Success 200 {object} StudentMessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c echo.Context) error {
	id, err := studentID(c)
	if err != nil {
		return err
	}

	var req UpdateStudentRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(err)
	}
	c.Set(payloadKey, req)

	student, err := h.svc.UpdateStudent(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StudentMessageResponse{
		Message: "Student updated successfully",
		Data:    student,
	})
}

// Delete godoc
// @Summary Delete student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c echo.Context) error {
	id, err := studentID(c)
	if err != nil {
		return err
	}

	if err := h.svc.DeleteStudent(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Student deleted successfully"})
}

// CheckRAAvailability godoc
// @Summary Check registration number availability
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param ra path string true "Registration number"
// @Success 200 {object} RAAvailabilityResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /students/check-ra/{ra} [get]
func (h *StudentHandler) CheckRAAvailability(c echo.Context) error {
	result, err := h.svc.CheckRAAvailability(c.Request().Context(), c.Param("ra"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, RAAvailabilityResponse{Data: result})
}

// studentID parses the id path parameter. A non-numeric id names no student.
func studentID(c echo.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NotFound(fmt.Sprintf("Student with ID %s not found", raw))
	}
	return uint(id), nil
}

// positiveQueryInt reads an optional query parameter that must be an integer
// in [1, limit].
func positiveQueryInt(c echo.Context, name string, def, limit int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > limit {
		return 0, apperrors.Validation("Invalid pagination parameters")
	}
	return n, nil
}

func invalidBody(err error) error {
	return &apperrors.Error{Kind: apperrors.KindValidation, Message: "Invalid request body", Err: err}
}
