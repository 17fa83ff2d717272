package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cleberrangel/teamsync-api/internal/database"
	"github.com/cleberrangel/teamsync-api/internal/migration"
	"github.com/cleberrangel/teamsync-api/internal/model"
	_ "github.com/lib/pq"
)

func setupTestDB(t *testing.T) *sql.DB {
	// Configuração de teste do banco
	dbConfig := database.Config{
		Host:     getEnvOrDefault("TEST_DB_HOST", "127.0.0.1"),
		Port:     getEnvOrDefault("TEST_DB_PORT", "5432"),
		User:     getEnvOrDefault("TEST_DB_USER", "postgres"),
		Password: getEnvOrDefault("TEST_DB_PASSWORD", "postgres"),
		DBName:   fmt.Sprintf("test_teamsync_%d", time.Now().UnixNano()),
		SSLMode:  "disable",
	}

	// Conecta ao postgres para criar o banco de teste
	adminConfig := dbConfig
	adminConfig.DBName = "postgres"

	adminDB, err := database.Connect(adminConfig)
	if err != nil {
		t.Skipf("Pulando teste: não foi possível conectar ao PostgreSQL: %v", err)
	}
	defer adminDB.Close()

	// Cria banco de teste
	_, err = adminDB.Exec(fmt.Sprintf("CREATE DATABASE %s", dbConfig.DBName))
	if err != nil {
		t.Fatalf("Erro ao criar banco de teste: %v", err)
	}

	// Conecta ao banco de teste
	testDB, err := database.Connect(dbConfig)
	if err != nil {
		t.Fatalf("Erro ao conectar ao banco de teste: %v", err)
	}

	// Executa migrações
	migrator := migration.NewMigrator(testDB)
	if err := migrator.Run(); err != nil {
		testDB.Close()
		t.Fatalf("Erro ao executar migrações: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
		adminDB, _ := database.Connect(adminConfig)
		if adminDB != nil {
			adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbConfig.DBName))
			adminDB.Close()
		}
	})

	return testDB
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func TestProjectGetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	var userID int
	err := db.QueryRow(`
		INSERT INTO users (name, email, password_hash)
		VALUES ('Alice', 'alice@teamsync.dev', 'hash')
		RETURNING id
	`).Scan(&userID)
	if err != nil {
		t.Fatalf("Erro ao inserir usuário: %v", err)
	}

	var projectID int
	err = db.QueryRow(`
		INSERT INTO projects (title, description, created_by)
		VALUES ('TeamSync', 'colaboração de times', $1)
		RETURNING id
	`, userID).Scan(&projectID)
	if err != nil {
		t.Fatalf("Erro ao inserir projeto: %v", err)
	}

	project, err := repo.GetByID(ctx, projectID)
	if err != nil {
		t.Fatalf("GetByID() erro inesperado: %v", err)
	}
	if project.Title != "TeamSync" {
		t.Errorf("Title = %q", project.Title)
	}
	if !project.CreatedBy.Valid || project.CreatedBy.Int64 != int64(userID) {
		t.Errorf("CreatedBy = %+v, esperado %d", project.CreatedBy, userID)
	}
}

func TestProjectGetByIDWithDeletedCreator(t *testing.T) {
	// ON DELETE SET NULL: projeto sobrevive à remoção do criador e ainda
	// precisa ser encontrado
	db := setupTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	var userID int
	err := db.QueryRow(`
		INSERT INTO users (name, email, password_hash)
		VALUES ('Bob', 'bob@teamsync.dev', 'hash')
		RETURNING id
	`).Scan(&userID)
	if err != nil {
		t.Fatalf("Erro ao inserir usuário: %v", err)
	}

	var projectID int
	err = db.QueryRow(`
		INSERT INTO projects (title, created_by)
		VALUES ('Projeto Órfão', $1)
		RETURNING id
	`, userID).Scan(&projectID)
	if err != nil {
		t.Fatalf("Erro ao inserir projeto: %v", err)
	}

	if _, err := db.Exec(`DELETE FROM users WHERE id = $1`, userID); err != nil {
		t.Fatalf("Erro ao remover usuário: %v", err)
	}

	project, err := repo.GetByID(ctx, projectID)
	if err != nil {
		t.Fatalf("GetByID() erro inesperado com created_by NULL: %v", err)
	}
	if project.CreatedBy.Valid {
		t.Errorf("CreatedBy.Valid = true, esperado NULL após remoção do criador")
	}
}

func TestProjectGetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepository(db)

	_, err := repo.GetByID(context.Background(), 999999)
	if err != model.ErrProjectNotFound {
		t.Fatalf("esperado ErrProjectNotFound, obtido %v", err)
	}
}
