package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jon4hz/foxtip/internal/database"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is a mock implementation of database.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	users      map[uint]*database.User
	nextUserID uint

	tips      map[uint]*database.Tip
	nextTipID uint

	chat       []database.ChatMessage
	nextChatID uint

	// Error simulation
	CreateUserError            error
	GetUserByIDError           error
	GetUserByEmailError        error
	GetAllUsersError           error
	UpdateUserLicenseError     error
	UpsertTipByDateError       error
	GetTipsError               error
	PublishTipError            error
	CreateChatMessageError     error
	GetRecentChatMessagesError error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	return &MockDB{
		users:      make(map[uint]*database.User),
		nextUserID: 1,
		tips:       make(map[uint]*database.Tip),
		nextTipID:  1,
		nextChatID: 1,
	}
}

// Reset clears all data and errors from the mock database.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = make(map[uint]*database.User)
	m.nextUserID = 1
	m.tips = make(map[uint]*database.Tip)
	m.nextTipID = 1
	m.chat = nil
	m.nextChatID = 1

	m.CreateUserError = nil
	m.GetUserByIDError = nil
	m.GetUserByEmailError = nil
	m.GetAllUsersError = nil
	m.UpdateUserLicenseError = nil
	m.UpsertTipByDateError = nil
	m.GetTipsError = nil
	m.PublishTipError = nil
	m.CreateChatMessageError = nil
	m.GetRecentChatMessagesError = nil
}

// User operations

func (m *MockDB) CreateUser(ctx context.Context, user *database.User) error {
	if m.CreateUserError != nil {
		return m.CreateUserError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = database.NormalizeEmail(user.Email)
	for _, u := range m.users {
		if u.Email == user.Email {
			return database.ErrDuplicate
		}
	}
	if user.Role == "" {
		user.Role = database.UserRoleMember
	}
	user.ID = m.nextUserID
	m.nextUserID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockDB) GetUserByID(ctx context.Context, id uint) (*database.User, error) {
	if m.GetUserByIDError != nil {
		return nil, m.GetUserByIDError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (m *MockDB) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	if m.GetUserByEmailError != nil {
		return nil, m.GetUserByEmailError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	email = database.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDB) GetAllUsers(ctx context.Context) ([]database.User, error) {
	if m.GetAllUsersError != nil {
		return nil, m.GetAllUsersError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]database.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	return users, nil
}

func (m *MockDB) GetLicensedUsers(ctx context.Context) ([]database.User, error) {
	users, err := m.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	var licensed []database.User
	for _, u := range users {
		if u.HasLicense {
			licensed = append(licensed, u)
		}
	}
	return licensed, nil
}

func (m *MockDB) UpdateUserLicense(ctx context.Context, id uint, hasLicense bool, expiry *time.Time) error {
	if m.UpdateUserLicenseError != nil {
		return m.UpdateUserLicenseError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return database.ErrNotFound
	}
	user.HasLicense = hasLicense
	user.LicenseExpiry = expiry
	return nil
}

func (m *MockDB) UpdateUserRole(ctx context.Context, id uint, role database.UserRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return database.ErrNotFound
	}
	user.Role = role
	return nil
}

func (m *MockDB) RevokeExpiredLicenses(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var revoked int64
	for _, u := range m.users {
		if u.HasLicense && u.LicenseExpiry != nil && u.LicenseExpiry.Before(now) {
			u.HasLicense = false
			u.LicenseExpiry = nil
			revoked++
		}
	}
	return revoked, nil
}

// Tip operations

func (m *MockDB) UpsertTipByDate(ctx context.Context, tip *database.Tip) (*database.Tip, error) {
	if m.UpsertTipByDateError != nil {
		return nil, m.UpsertTipByDateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := *tip
	out.Status = database.TipStatusPending
	out.IsPublished = false
	out.UpdatedAt = time.Now()

	for id, existing := range m.tips {
		if existing.Date == tip.Date {
			out.ID = id
			out.CreatedAt = existing.CreatedAt
			m.tips[id] = &out
			result := out
			return &result, nil
		}
	}

	out.ID = m.nextTipID
	m.nextTipID++
	out.CreatedAt = out.UpdatedAt
	m.tips[out.ID] = &out
	result := out
	return &result, nil
}

func (m *MockDB) GetTipByDate(ctx context.Context, date string) (*database.Tip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, tip := range m.tips {
		if tip.Date == date {
			out := *tip
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDB) GetTips(ctx context.Context, limit int) ([]database.Tip, error) {
	if m.GetTipsError != nil {
		return nil, m.GetTipsError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	tips := make([]database.Tip, 0, len(m.tips))
	for _, tip := range m.tips {
		tips = append(tips, *tip)
	}
	sort.Slice(tips, func(i, j int) bool { return tips[i].Date > tips[j].Date })
	if limit > 0 && len(tips) > limit {
		tips = tips[:limit]
	}
	return tips, nil
}

func (m *MockDB) GetPublishedTipsByStatus(ctx context.Context, status database.TipStatus, limit int) ([]database.Tip, error) {
	all, err := m.GetTips(ctx, 0)
	if err != nil {
		return nil, err
	}
	var tips []database.Tip
	for _, tip := range all {
		if tip.Status == status && tip.IsPublished {
			tips = append(tips, tip)
		}
	}
	if limit > 0 && len(tips) > limit {
		tips = tips[:limit]
	}
	return tips, nil
}

func (m *MockDB) PublishTip(ctx context.Context, id uint) (*database.Tip, error) {
	if m.PublishTipError != nil {
		return nil, m.PublishTipError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tip, ok := m.tips[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	tip.IsPublished = true
	out := *tip
	return &out, nil
}

// Chat operations

func (m *MockDB) CreateChatMessage(ctx context.Context, msg *database.ChatMessage) error {
	if m.CreateChatMessageError != nil {
		return m.CreateChatMessageError
	}
	// a cancelled context fails the write, like the real drivers do
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	msg.ID = m.nextChatID
	m.nextChatID++
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	m.chat = append(m.chat, *msg)
	return nil
}

func (m *MockDB) GetRecentChatMessages(ctx context.Context, limit int) ([]database.ChatMessage, error) {
	if m.GetRecentChatMessagesError != nil {
		return nil, m.GetRecentChatMessagesError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	msgs := make([]database.ChatMessage, 0, limit)
	for i := len(m.chat) - 1; i >= 0 && len(msgs) < limit; i-- {
		msgs = append(msgs, m.chat[i])
	}
	return msgs, nil
}

// ChatMessages returns the whole chat log in insertion order.
func (m *MockDB) ChatMessages() []database.ChatMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]database.ChatMessage(nil), m.chat...)
}

// Statistics

func (m *MockDB) GetStats(ctx context.Context) (*database.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := &database.Stats{
		Users:        int64(len(m.users)),
		Tips:         int64(len(m.tips)),
		ChatMessages: int64(len(m.chat)),
	}
	for _, u := range m.users {
		if u.HasLicense {
			s.LicensedUsers++
		}
	}
	for _, tip := range m.tips {
		if tip.IsPublished {
			s.PublishedTips++
		}
		if tip.Date > s.LatestTipDate {
			s.LatestTipDate = tip.Date
		}
	}
	if n := len(m.chat); n > 0 {
		ts := m.chat[n-1].Timestamp
		s.LatestChatEntry = &ts
	}
	return s, nil
}
