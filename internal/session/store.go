// Package session は業者セッション（業者IDとベアラートークン）を管理する。
//
// ストアはプロセス起動時に1回生成・ロードされ、プロセス全体で共有される。
// ログイン・ログアウト時に即座に永続化されるため、プロセス再起動をまたいで
// セッションが復元される。トークンの有効性検証は行わない（サーバーが
// 各リクエストで拒否するまで信頼する）。
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/hitoshi/weddingmatch/internal/repository"
)

// 永続化ストレージのキー。外部仕様のため変更してはならない。
const (
	KeyVendorID    = "vendorId"
	KeyVendorToken = "vendorToken"
)

// Store は業者セッションを保持する。
// vendorIDとtokenは常に両方揃っているか両方空のいずれか。
type Store struct {
	repo repository.CredentialRepository

	mu       sync.RWMutex
	vendorID string
	token    string
}

// New はStoreを生成する。メモリ上のセッションは空の状態で返る。
// 永続化された値を復元するにはLoadを呼ぶこと。
func New(repo repository.CredentialRepository) *Store {
	return &Store{repo: repo}
}

// Load は永続化ストレージからセッションを復元する。
// 両方のキーが存在する場合のみメモリ状態に反映する。
// 片方しか存在しない場合は「未ログイン」として扱い、修復も報告もしない。
func (s *Store) Load(ctx context.Context) error {
	vendorID, okID, err := s.repo.Get(ctx, KeyVendorID)
	if err != nil {
		return fmt.Errorf("failed to load vendor ID: %w", err)
	}

	token, okToken, err := s.repo.Get(ctx, KeyVendorToken)
	if err != nil {
		return fmt.Errorf("failed to load vendor token: %w", err)
	}

	if !okID || !okToken {
		return nil
	}

	s.mu.Lock()
	s.vendorID = vendorID
	s.token = token
	s.mu.Unlock()

	return nil
}

// Login は業者IDとトークンを永続化ストレージとメモリ状態の両方に書き込む。
// 値の正当性検証は行わない（サーバーが後続の各呼び出しで検証する）。
func (s *Store) Login(ctx context.Context, vendorID, token string) error {
	if err := s.repo.Set(ctx, KeyVendorToken, token); err != nil {
		return fmt.Errorf("failed to store vendor token: %w", err)
	}
	if err := s.repo.Set(ctx, KeyVendorID, vendorID); err != nil {
		return fmt.Errorf("failed to store vendor ID: %w", err)
	}

	s.mu.Lock()
	s.vendorID = vendorID
	s.token = token
	s.mu.Unlock()

	return nil
}

// Logout は永続化ストレージとメモリ状態の両方からセッションを削除する。
func (s *Store) Logout(ctx context.Context) error {
	if err := s.repo.Delete(ctx, KeyVendorToken); err != nil {
		return fmt.Errorf("failed to delete vendor token: %w", err)
	}
	if err := s.repo.Delete(ctx, KeyVendorID); err != nil {
		return fmt.Errorf("failed to delete vendor ID: %w", err)
	}

	s.mu.Lock()
	s.vendorID = ""
	s.token = ""
	s.mu.Unlock()

	return nil
}

// Current は現在のセッションを返す。
// 未ログインの場合はok=falseを返し、vendorIDとtokenは空文字列になる。
func (s *Store) Current() (vendorID, token string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.vendorID == "" || s.token == "" {
		return "", "", false
	}
	return s.vendorID, s.token, true
}
