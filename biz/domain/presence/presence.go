package presence

import (
	"sort"
	"sync"
)

// Registry 进程内在线用户表, 记录每个用户的存活连接数
// 表中存在某用户 <=> 其连接数 >= 1
type Registry struct {
	mu     sync.RWMutex
	counts map[string]int
}

func NewRegistry() *Registry {
	return &Registry{counts: make(map[string]int)}
}

// Register 连接数加一, 仅当用户由离线变为在线时返回true
func (r *Registry) Register(uid string) (wasFirst bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[uid]++
	return r.counts[uid] == 1
}

// Deregister 连接数减一, 仅当用户由在线变为离线时返回true
// 对不在线的用户调用是空操作
func (r *Registry) Deregister(uid string) (becameAbsent bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.counts[uid]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(r.counts, uid)
		return true
	}
	r.counts[uid] = n - 1
	return false
}

// Snapshot 返回当前在线用户的有序副本
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	users := make([]string, 0, len(r.counts))
	for uid := range r.counts {
		users = append(users, uid)
	}
	r.mu.RUnlock()
	sort.Strings(users)
	return users
}

// Online 用户是否在线
func (r *Registry) Online(uid string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counts[uid] > 0
}

// Connections 用户当前的存活连接数
func (r *Registry) Connections(uid string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counts[uid]
}

// Len 在线用户数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.counts)
}
