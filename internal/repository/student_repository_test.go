package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "studentrecords/internal/errors"
	"studentrecords/internal/model"
)

var studentColumns = []string{"id", "name", "email", "ra", "cpf", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return gdb, mock
}

func studentRow(rows *sqlmock.Rows, s model.Student) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(s.ID, s.Name, s.Email, s.RA, s.CPF, now, now)
}

func TestStudentRepository_GetByID(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantNil bool
	}{
		{
			name: "found",
			rows: studentRow(sqlmock.NewRows(studentColumns), model.Student{
				ID: 1, Name: "Rafael Henrique", Email: "rafael@example.com", RA: "102030", CPF: "52998224725",
			}),
		},
		{
			name:    "not found returns nil",
			rows:    sqlmock.NewRows(studentColumns),
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gdb, mock := newMockDB(t)
			mock.ExpectQuery("SELECT \\* FROM `students` WHERE id = \\?").WillReturnRows(tt.rows)

			student, err := NewStudentRepository(gdb).GetByID(context.Background(), 1)

			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, student)
			} else {
				require.NotNil(t, student)
				assert.Equal(t, "102030", student.RA)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStudentRepository_GetByRA_PropagatesStoreError(t *testing.T) {
	gdb, mock := newMockDB(t)
	storeErr := errors.New("connection reset")
	mock.ExpectQuery("SELECT \\* FROM `students` WHERE ra = \\?").WillReturnError(storeErr)

	student, err := NewStudentRepository(gdb).GetByRA(context.Background(), "102030")

	assert.Nil(t, student)
	assert.ErrorIs(t, err, storeErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_GetByCPF(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `students` WHERE cpf = \\?").
		WillReturnRows(studentRow(sqlmock.NewRows(studentColumns), model.Student{ID: 3, CPF: "52998224725"}))

	student, err := NewStudentRepository(gdb).GetByCPF(context.Background(), "52998224725")

	require.NoError(t, err)
	require.NotNil(t, student)
	assert.Equal(t, uint(3), student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_GetAll(t *testing.T) {
	gdb, mock := newMockDB(t)
	rows := sqlmock.NewRows(studentColumns)
	rows = studentRow(rows, model.Student{ID: 3, Name: "Rita de Cassia", RA: "213150"})
	mock.ExpectQuery("SELECT \\* FROM `students` WHERE LOWER\\(name\\) LIKE \\? ORDER BY name ASC LIMIT").
		WillReturnRows(rows)

	students, err := NewStudentRepository(gdb).GetAll(context.Background(), 10, 0, "Rita")

	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Rita de Cassia", students[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_GetAllWithoutFilter(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `students` ORDER BY name ASC LIMIT").
		WillReturnRows(sqlmock.NewRows(studentColumns))

	students, err := NewStudentRepository(gdb).GetAll(context.Background(), 10, 20, "")

	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_GetAllLargeLimit(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `students` ORDER BY name ASC LIMIT").
		WillReturnRows(sqlmock.NewRows(studentColumns))

	var students []model.Student
	var err error
	assert.NotPanics(t, func() {
		students, err = NewStudentRepository(gdb).GetAll(context.Background(), 1<<60, 0, "")
	})

	require.NoError(t, err)
	assert.Empty(t, students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_Count(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `students`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := NewStudentRepository(gdb).Count(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_Create(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO `students`").WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT \\* FROM `students` WHERE id = \\?").
		WillReturnRows(studentRow(sqlmock.NewRows(studentColumns), model.Student{
			ID: 5, Name: "New Test Student", Email: "newtest@example.com", RA: "987654", CPF: "12345678901",
		}))

	created, err := NewStudentRepository(gdb).Create(context.Background(), &model.Student{
		Name: "New Test Student", Email: "newtest@example.com", RA: "987654", CPF: "12345678901",
	})

	require.NoError(t, err)
	assert.Equal(t, uint(5), created.ID)
	assert.Equal(t, "987654", created.RA)
	assert.False(t, created.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_CreateDuplicateKey(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO `students`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry '987654' for key 'idx_students_ra'"})

	created, err := NewStudentRepository(gdb).Create(context.Background(), &model.Student{RA: "987654"})

	assert.Nil(t, created)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_Update(t *testing.T) {
	gdb, mock := newMockDB(t)
	existing := model.Student{ID: 2, Name: "Stephanne Bento", Email: "stephanne@example.com", RA: "203040", CPF: "11144477735"}
	updated := existing
	updated.Email = "stephanne.bento@example.com"

	mock.ExpectQuery("SELECT \\* FROM `students` WHERE id = \\?").
		WillReturnRows(studentRow(sqlmock.NewRows(studentColumns), existing))
	mock.ExpectExec("UPDATE `students` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM `students` WHERE id = \\?").
		WillReturnRows(studentRow(sqlmock.NewRows(studentColumns), updated))

	email := "stephanne.bento@example.com"
	student, err := NewStudentRepository(gdb).Update(context.Background(), 2, model.StudentPatch{Email: &email})

	require.NoError(t, err)
	assert.Equal(t, "stephanne.bento@example.com", student.Email)
	assert.Equal(t, "203040", student.RA)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_UpdateMissing(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `students` WHERE id = \\?").WillReturnRows(sqlmock.NewRows(studentColumns))

	name := "Ghost"
	student, err := NewStudentRepository(gdb).Update(context.Background(), 99, model.StudentPatch{Name: &name})

	assert.Nil(t, student)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.EqualError(t, err, "Student with ID 99 not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_Delete(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `students` WHERE id = \\?").
		WillReturnRows(studentRow(sqlmock.NewRows(studentColumns), model.Student{ID: 4}))
	mock.ExpectExec("DELETE FROM `students` WHERE id = \\?").WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewStudentRepository(gdb).Delete(context.Background(), 4)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_DeleteMissing(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `students` WHERE id = \\?").WillReturnRows(sqlmock.NewRows(studentColumns))

	err := NewStudentRepository(gdb).Delete(context.Background(), 4)

	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeEscaper(t *testing.T) {
	assert.Equal(t, `100\%\_a\\b`, likeEscaper.Replace(`100%_a\b`))
}
