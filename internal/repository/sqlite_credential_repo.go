package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteCredentialRepo はSQLiteを使用した認証情報リポジトリ。
type SQLiteCredentialRepo struct {
	db *sql.DB
}

// NewSQLiteCredentialRepo はSQLiteCredentialRepoを生成する。
func NewSQLiteCredentialRepo(db *sql.DB) *SQLiteCredentialRepo {
	return &SQLiteCredentialRepo{db: db}
}

// Get は指定キーの値を取得する。キーが存在しない場合はok=falseを返す。
func (r *SQLiteCredentialRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE key = ?`,
		key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get credential %q: %w", key, err)
	}

	return value, true, nil
}

// Set は指定キーの値を書き込む。既存の値は上書きされる。
func (r *SQLiteCredentialRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credentials (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set credential %q: %w", key, err)
	}
	return nil
}

// Delete は指定キーを削除する。キーが存在しない場合も成功扱いとする。
func (r *SQLiteCredentialRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE key = ?`,
		key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete credential %q: %w", key, err)
	}
	return nil
}
