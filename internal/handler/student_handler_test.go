package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "studentrecords/internal/errors"
	"studentrecords/internal/model"
	"studentrecords/internal/service"
)

// MockStudentService is a mock implementation of StudentService.
type MockStudentService struct {
	mock.Mock
}

func (m *MockStudentService) GetAllStudents(ctx context.Context, params service.ListParams) (*service.StudentPage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StudentPage), args.Error(1)
}

func (m *MockStudentService) GetStudentByID(ctx context.Context, id uint) (*model.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Student), args.Error(1)
}

func (m *MockStudentService) CreateStudent(ctx context.Context, input model.Student) (*model.Student, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Student), args.Error(1)
}

func (m *MockStudentService) UpdateStudent(ctx context.Context, id uint, patch model.StudentPatch) (*model.Student, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Student), args.Error(1)
}

func (m *MockStudentService) DeleteStudent(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStudentService) CheckRAAvailability(ctx context.Context, ra string) (*service.RAAvailability, error) {
	args := m.Called(ctx, ra)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RAAvailability), args.Error(1)
}

type structValidator struct {
	v *validator.Validate
}

func (s *structValidator) Validate(i interface{}) error {
	return s.v.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = &structValidator{v: validator.New()}
	return e
}

func newStudentServer(svc service.StudentService) *echo.Echo {
	e := newTestEcho()
	h := NewStudentHandler(svc)
	e.GET("/students", h.GetAll)
	e.GET("/students/check-ra/:ra", h.CheckRAAvailability)
	e.GET("/students/:id", h.GetByID)
	e.POST("/students", h.Create)
	e.PUT("/students/:id", h.Update)
	e.DELETE("/students/:id", h.Delete)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestStudentHandler_GetAll(t *testing.T) {
	page := &service.StudentPage{
		Data:       []model.Student{{ID: 1, Name: "Rita de Cassia"}},
		Pagination: service.Pagination{Total: 1, Page: 1, PageSize: 10, TotalPages: 1},
	}

	t.Run("defaults", func(t *testing.T) {
		svc := new(MockStudentService)
		svc.On("GetAllStudents", mock.Anything, service.ListParams{Page: 1, PageSize: 10}).Return(page, nil)

		rec := do(newStudentServer(svc), http.MethodGet, "/students", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		var body service.StudentPage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, page.Pagination, body.Pagination)
		assert.Len(t, body.Data, 1)
		assert.Contains(t, rec.Body.String(), `"pageSize":10`)
		assert.Contains(t, rec.Body.String(), `"totalPages":1`)
		svc.AssertExpectations(t)
	})

	t.Run("query params", func(t *testing.T) {
		svc := new(MockStudentService)
		svc.On("GetAllStudents", mock.Anything, mock.MatchedBy(func(p service.ListParams) bool {
			return p.Page == 2 && p.PageSize == 5 && p.Name != nil && *p.Name == "rita"
		})).Return(page, nil)

		rec := do(newStudentServer(svc), http.MethodGet, "/students?page=2&pageSize=5&name=rita", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("max page size", func(t *testing.T) {
		svc := new(MockStudentService)
		svc.On("GetAllStudents", mock.Anything, mock.MatchedBy(func(p service.ListParams) bool {
			return p.PageSize == service.MaxPageSize
		})).Return(page, nil)

		rec := do(newStudentServer(svc), http.MethodGet, "/students?pageSize=100", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	for _, query := range []string{
		"page=abc",
		"pageSize=0",
		"page=-1",
		"pageSize=1.5",
		"pageSize=101",
		"pageSize=1099511627776",
		"page=99999999999999999999",
	} {
		t.Run("rejects "+query, func(t *testing.T) {
			svc := new(MockStudentService)

			rec := do(newStudentServer(svc), http.MethodGet, "/students?"+query, "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid pagination parameters", decodeError(t, rec).Message)
			svc.AssertNotCalled(t, "GetAllStudents", mock.Anything, mock.Anything)
		})
	}
}

func TestStudentHandler_GetByID(t *testing.T) {
	svc := new(MockStudentService)
	svc.On("GetStudentByID", mock.Anything, uint(1)).Return(&model.Student{ID: 1, RA: "123456"}, nil)
	svc.On("GetStudentByID", mock.Anything, uint(9999)).Return(nil, apperrors.NotFound("Student with ID 9999 not found"))
	e := newStudentServer(svc)

	rec := do(e, http.MethodGet, "/students/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"","email":"","ra":"123456","cpf":"","created_at":"0001-01-01T00:00:00Z","updated_at":"0001-01-01T00:00:00Z"}`,
		extractData(t, rec))

	rec = do(e, http.MethodGet, "/students/9999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.ErrorResponse{Status: "error", Code: 404, Message: "Student with ID 9999 not found", Errors: []string{}}, decodeError(t, rec))

	rec = do(e, http.MethodGet, "/students/abc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Student with ID abc not found", decodeError(t, rec).Message)
}

func TestStudentHandler_Create(t *testing.T) {
	input := model.Student{Name: "New Test Student", Email: "newtest@example.com", RA: "987654", CPF: "12345678901"}
	body := `{"name":"New Test Student","email":"newtest@example.com","ra":"987654","cpf":"12345678901"}`

	tests := []struct {
		name        string
		body        string
		setupMock   func(*MockStudentService)
		wantStatus  int
		wantMessage string
		wantErrors  []string
	}{
		{
			name: "created",
			body: body,
			setupMock: func(m *MockStudentService) {
				created := input
				created.ID = 5
				m.On("CreateStudent", mock.Anything, input).Return(&created, nil)
			},
			wantStatus:  http.StatusCreated,
			wantMessage: "Student created successfully",
		},
		{
			name: "validation errors",
			body: `{"name":"","email":"invalid-email","ra":"1","cpf":"123"}`,
			setupMock: func(m *MockStudentService) {
				m.On("CreateStudent", mock.Anything, mock.Anything).
					Return(nil, apperrors.Validation("Invalid student data", "Name is required", "Email is invalid", "CPF is invalid"))
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid student data",
			wantErrors:  []string{"Name is required", "Email is invalid", "CPF is invalid"},
		},
		{
			name: "ra already in use",
			body: body,
			setupMock: func(m *MockStudentService) {
				m.On("CreateStudent", mock.Anything, input).
					Return(nil, apperrors.Validation("Registration number 987654 is already in use by another student"))
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Registration number 987654 is already in use by another student",
		},
		{
			name: "unique index violation",
			body: body,
			setupMock: func(m *MockStudentService) {
				m.On("CreateStudent", mock.Anything, input).Return(nil, gorm.ErrDuplicatedKey)
			},
			wantStatus:  http.StatusConflict,
			wantMessage: "A record with this data already exists",
		},
		{
			name: "store failure is not leaked",
			body: body,
			setupMock: func(m *MockStudentService) {
				m.On("CreateStudent", mock.Anything, input).Return(nil, errors.New("pq: connection refused"))
			},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Internal server error",
		},
		{
			name:        "malformed json",
			body:        `{"name":`,
			setupMock:   func(m *MockStudentService) {},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid request body",
		},
		{
			name:        "wrongly typed field",
			body:        `{"name": 5}`,
			setupMock:   func(m *MockStudentService) {},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockStudentService)
			tt.setupMock(svc)

			rec := do(newStudentServer(svc), http.MethodPost, "/students", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusCreated {
				var resp StudentMessageResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantMessage, resp.Message)
				assert.Equal(t, "987654", resp.Data.RA)
				assert.Equal(t, uint(5), resp.Data.ID)
			} else {
				errBody := decodeError(t, rec)
				assert.Equal(t, "error", errBody.Status)
				assert.Equal(t, tt.wantStatus, errBody.Code)
				assert.Equal(t, tt.wantMessage, errBody.Message)
				wantErrors := tt.wantErrors
				if wantErrors == nil {
					wantErrors = []string{}
				}
				assert.Equal(t, wantErrors, errBody.Errors)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestStudentHandler_Update(t *testing.T) {
	svc := new(MockStudentService)
	email := "stephanne.bento@example.com"
	svc.On("UpdateStudent", mock.Anything, uint(2), model.StudentPatch{Email: &email}).
		Return(&model.Student{ID: 2, Email: email, RA: "203040"}, nil)
	svc.On("UpdateStudent", mock.Anything, uint(7), mock.Anything).
		Return(nil, apperrors.NotFound("Student with ID 7 not found"))
	e := newStudentServer(svc)

	rec := do(e, http.MethodPut, "/students/2", `{"email":"stephanne.bento@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp StudentMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Student updated successfully", resp.Message)
	assert.Equal(t, email, resp.Data.Email)

	rec = do(e, http.MethodPut, "/students/7", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPut, "/students/2", `{"cpf":52998224725}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeError(t, rec).Message)
	assert.NotContains(t, rec.Body.String(), "Unmarshal")

	svc.AssertExpectations(t)
}

func TestStudentHandler_Delete(t *testing.T) {
	svc := new(MockStudentService)
	svc.On("DeleteStudent", mock.Anything, uint(4)).Return(nil)
	svc.On("DeleteStudent", mock.Anything, uint(5)).Return(apperrors.NotFound("Student with ID 5 not found"))
	e := newStudentServer(svc)

	rec := do(e, http.MethodDelete, "/students/4", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Student deleted successfully"}`, rec.Body.String())

	rec = do(e, http.MethodDelete, "/students/5", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Student with ID 5 not found", decodeError(t, rec).Message)
}

func TestStudentHandler_CheckRAAvailability(t *testing.T) {
	svc := new(MockStudentService)
	svc.On("CheckRAAvailability", mock.Anything, "123456").Return(&service.RAAvailability{
		Available: false, RA: "123456", Message: "Registration number 123456 is already in use",
	}, nil)
	svc.On("CheckRAAvailability", mock.Anything, " ").
		Return(nil, apperrors.Validation("Please provide a registration number to check"))
	e := newStudentServer(svc)

	rec := do(e, http.MethodGet, "/students/check-ra/123456", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"available":false,"ra":"123456","message":"Registration number 123456 is already in use"}}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/students/check-ra/%20", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPErrorHandler_UnknownRoute(t *testing.T) {
	e := newStudentServer(new(MockStudentService))

	rec := do(e, http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.ErrorResponse{Status: "error", Code: 404, Message: "Route not found", Errors: []string{}}, decodeError(t, rec))
}

func extractData(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return string(body.Data)
}
