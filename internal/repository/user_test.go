package repository

import (
	"context"
	"testing"

	"github.com/cleberrangel/teamsync-api/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func TestUserGetByEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3nha-forte"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Erro ao gerar hash: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (name, email, password_hash, designation)
		VALUES ('Carol', 'carol@teamsync.dev', $1, 'Tech Lead')
	`, string(hash))
	if err != nil {
		t.Fatalf("Erro ao inserir usuário: %v", err)
	}

	user, err := repo.GetByEmail(ctx, "carol@teamsync.dev")
	if err != nil {
		t.Fatalf("GetByEmail() erro inesperado: %v", err)
	}
	if user.Name != "Carol" {
		t.Errorf("Name = %q", user.Name)
	}
	if !user.Designation.Valid || user.Designation.String != "Tech Lead" {
		t.Errorf("Designation = %+v", user.Designation)
	}

	if _, err := repo.GetByEmail(ctx, "ninguem@teamsync.dev"); err != model.ErrUserNotFound {
		t.Fatalf("esperado ErrUserNotFound, obtido %v", err)
	}
}

func TestUserCheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3nha-forte"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Erro ao gerar hash: %v", err)
	}

	u := &User{PasswordHash: string(hash)}

	if !u.CheckPassword("s3nha-forte") {
		t.Error("CheckPassword rejeitou a senha correta")
	}
	if u.CheckPassword("senha-errada") {
		t.Error("CheckPassword aceitou senha incorreta")
	}
	if u.CheckPassword("") {
		t.Error("CheckPassword aceitou senha vazia")
	}
}
