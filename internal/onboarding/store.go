// Package onboarding は新郎新婦の検索条件をメモリ上に保持する。
//
// 条件はフォーム送信ごとに丸ごと置き換えられ、マージは行わない。
// クリア操作は提供しない（プロセス終了まで生存し、再起動で失われる）。
package onboarding

import (
	"sync"

	"github.com/hitoshi/weddingmatch/internal/model"
)

// Store はオンボーディング条件を保持する。
// 同時に存在するインスタンスは常に1つ（履歴は持たない）。
type Store struct {
	mu       sync.RWMutex
	criteria *model.OnboardingCriteria
}

// New は空のStoreを生成する。
func New() *Store {
	return &Store{}
}

// Set は条件を丸ごと置き換える。
// 検証はフォーム側の責務であり、ここでは行わない。
func (s *Store) Set(criteria model.OnboardingCriteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = &criteria
}

// Get は現在の条件を返す。未設定の場合はok=falseを返し、
// 呼び出し側は「条件未入力」として扱うこと。
func (s *Store) Get() (model.OnboardingCriteria, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.criteria == nil {
		return model.OnboardingCriteria{}, false
	}
	return *s.criteria, true
}
