package store

import (
	"context"
	"fmt"

	"github.com/antedotal/waitlist-manager/internal/dependency"
)

type adminStore struct {
	*MYSQLStore
}

// Admin returns an object implementing the Admin interface
func (ms *MYSQLStore) Admin() dependency.Admin {
	return &adminStore{
		MYSQLStore: ms,
	}
}

func (ms *MYSQLStore) AddAdmin(ctx context.Context, username, passwordHash string) error {
	query := `INSERT INTO admins (username, password_hash) VALUES (:username, :passwordHash)`
	err := ExecNamed(ctx, ms.DB(), query, map[string]any{
		"username":     username,
		"passwordHash": passwordHash,
	})
	if err != nil {
		return fmt.Errorf("failed to add admin: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) DeleteAdminByUsername(ctx context.Context, username string) error {
	err := ExecNamed(ctx, ms.DB(), `DELETE FROM admins WHERE username = :username`, map[string]any{
		"username": username,
	})
	if err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) PasswordHashByUsername(ctx context.Context, username string) (string, error) {
	var hash struct {
		PasswordHash string `db:"password_hash"`
	}
	err := ms.DB().GetContext(ctx, &hash, "SELECT password_hash FROM admins WHERE username = ?", username)
	if err != nil {
		return "", fmt.Errorf("failed to get password hash: %w", err)
	}
	return hash.PasswordHash, nil
}
