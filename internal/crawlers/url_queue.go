package crawlers

import (
	"sync"
)

// URLSet 保持首次出现顺序的去重URL集合
// limit>0 时达到上限后拒绝新URL
type URLSet struct {
	mu    sync.RWMutex
	seen  map[string]bool
	order []string
	limit int
}

// NewURLSet 创建集合
func NewURLSet(limit int) *URLSet {
	return &URLSet{
		seen:  make(map[string]bool),
		limit: limit,
	}
}

// Add 添加URL,返回是否为新URL
func (s *URLSet) Add(u string) bool {
	if u == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[u] {
		return false
	}
	if s.limit > 0 && len(s.order) >= s.limit {
		return false
	}
	s.seen[u] = true
	s.order = append(s.order, u)
	return true
}

// AddAll 批量添加,返回新增数量
func (s *URLSet) AddAll(urls []string) int {
	added := 0
	for _, u := range urls {
		if s.Add(u) {
			added++
		}
	}
	return added
}

// Contains 是否已存在
func (s *URLSet) Contains(u string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seen[u]
}

// Full 是否已达上限
func (s *URLSet) Full() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limit > 0 && len(s.order) >= s.limit
}

// Len 数量
func (s *URLSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// List 按插入顺序返回副本
func (s *URLSet) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}
