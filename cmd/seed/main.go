package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"studentrecords/internal/config"
	"studentrecords/internal/db"
	"studentrecords/internal/logger"
	"studentrecords/internal/model"
	"studentrecords/internal/repository"
	"studentrecords/internal/service"
)

// defaultAdmin is created when no user with its email exists.
var defaultAdmin = model.User{
	Name:  "Administrator",
	Email: "admin@example.com",
	Role:  model.RoleAdmin,
}

const defaultAdminPassword = "admin"

var sampleStudents = []model.Student{
	{Name: "Ana Beatriz Souza", Email: "ana.souza@example.com", RA: "100001", CPF: "52998224725"},
	{Name: "Bruno Carvalho", Email: "bruno.carvalho@example.com", RA: "100002", CPF: "11144477735"},
	{Name: "Camila Ferreira", Email: "camila.ferreira@example.com", RA: "100003", CPF: "12345678909"},
	{Name: "Diego Martins", Email: "diego.martins@example.com", RA: "100004", CPF: "98765432100"},
	{Name: "Elisa Rocha", Email: "elisa.rocha@example.com", RA: "100005", CPF: "39053344705"},
	{Name: "Felipe Gomes", Email: "felipe.gomes@example.com", RA: "100006", CPF: "71460238001"},
	{Name: "Gabriela Lima", Email: "gabriela.lima@example.com", RA: "100007", CPF: "24843803480"},
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
	defer func() { _ = logger.Sync() }()
	log := logger.Named("seed")

	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB, cfg.Database.Driver, db.Up); err != nil {
		return err
	}
	log.Info("database migrations completed")

	created, err := seedAdmin(ctx, repository.NewUserRepository(gormDB), defaultAdmin, defaultAdminPassword)
	if err != nil {
		return err
	}
	log.Info("admin user", zap.String("email", defaultAdmin.Email), zap.Bool("created", created))

	seeded, skipped, err := seedStudents(ctx, repository.NewStudentRepository(gormDB), sampleStudents)
	if err != nil {
		return err
	}
	log.Info("seed completed", zap.Int("students_created", seeded), zap.Int("students_skipped", skipped))
	return nil
}

// seedAdmin creates admin unless a user with the same email exists.
func seedAdmin(ctx context.Context, repo repository.UserRepository, admin model.User, password string) (bool, error) {
	existing, err := repo.FindByEmail(ctx, admin.Email)
	if err != nil {
		return false, fmt.Errorf("check admin %s: %w", admin.Email, err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return false, err
	}
	admin.PasswordHash = hash
	if err := repo.Create(ctx, &admin); err != nil {
		return false, fmt.Errorf("create admin %s: %w", admin.Email, err)
	}
	return true, nil
}

// seedStudents inserts students whose RA and CPF are both unused.
func seedStudents(ctx context.Context, repo repository.StudentRepository, students []model.Student) (seeded, skipped int, err error) {
	for _, s := range students {
		byRA, err := repo.GetByRA(ctx, s.RA)
		if err != nil {
			return seeded, skipped, fmt.Errorf("check student %s: %w", s.RA, err)
		}
		byCPF, err := repo.GetByCPF(ctx, s.CPF)
		if err != nil {
			return seeded, skipped, fmt.Errorf("check student %s: %w", s.RA, err)
		}
		if byRA != nil || byCPF != nil {
			skipped++
			continue
		}

		student := s
		if _, err := repo.Create(ctx, &student); err != nil {
			return seeded, skipped, fmt.Errorf("create student %s: %w", s.RA, err)
		}
		seeded++
	}
	return seeded, skipped, nil
}
