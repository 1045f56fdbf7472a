package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/alieuroshub001/euroshub-management/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MockUserRepository is an in-memory implementation of
// repository.UserRepositoryInterface for tests.
type MockUserRepository struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	nextID uint
	err    error

	beforePresence func(userID uint, isOnline bool)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[uint]*models.User),
		nextID: 1,
	}
}

// Fail makes every subsequent call return err.
func (m *MockUserRepository) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockUserRepository) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if user.ID == 0 {
		user.ID = m.nextID
	}
	if user.ID >= m.nextID {
		m.nextID = user.ID + 1
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if user, ok := m.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, user := range m.users {
		if user.Username == username || user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) ListAll(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, *user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MockUserRepository) SetActive(_ context.Context, userID uint, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	user, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.IsActive = active
	return nil
}

func (m *MockUserRepository) ListContacts(_ context.Context, excludeID uint) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []models.User
	for _, user := range m.users {
		if user.ID != excludeID && user.IsActive {
			out = append(out, *user)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsOnline != out[j].IsOnline {
			return out[i].IsOnline
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MockUserRepository) UpdatePresence(_ context.Context, userID uint, isOnline bool, at time.Time) (bool, error) {
	m.mu.Lock()
	hook := m.beforePresence
	m.mu.Unlock()
	if hook != nil {
		hook(userID, isOnline)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	user, ok := m.users[userID]
	if !ok {
		return false, nil
	}
	if user.LastSeen != nil && user.LastSeen.After(at) {
		return false, nil
	}
	seen := at
	user.IsOnline = isOnline
	user.LastSeen = &seen
	return true, nil
}

// OnPresenceWrite installs fn to run at the start of every UpdatePresence
// call, outside the repository lock.
func (m *MockUserRepository) OnPresenceWrite(fn func(userID uint, isOnline bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beforePresence = fn
}

func (m *MockUserRepository) ResetPresence(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, user := range m.users {
		if user.IsOnline {
			user.IsOnline = false
			n++
		}
	}
	return n, nil
}

func (m *MockUserRepository) UpdateLastLogin(_ context.Context, userID uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if user, ok := m.users[userID]; ok {
		login := at
		user.LastLogin = &login
	}
	return nil
}

// MockMessageRepository is an in-memory implementation of
// repository.MessageRepositoryInterface for tests.
type MockMessageRepository struct {
	mu       sync.Mutex
	users    *MockUserRepository
	messages map[uint]*models.Message
	nextID   uint
	clock    time.Time
	err      error
}

func NewMockMessageRepository(users *MockUserRepository) *MockMessageRepository {
	return &MockMessageRepository{
		users:    users,
		messages: make(map[uint]*models.Message),
		nextID:   1,
		clock:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *MockMessageRepository) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockMessageRepository) Create(_ context.Context, message *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	message.ID = m.nextID
	m.nextID++
	m.clock = m.clock.Add(time.Second)
	message.CreatedAt = m.clock
	stored := *message
	m.messages[message.ID] = &stored
	return nil
}

func (m *MockMessageRepository) FindByID(ctx context.Context, id uint) (*models.Message, error) {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return nil, m.err
	}
	stored, ok := m.messages[id]
	if !ok {
		m.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	message := *stored
	m.mu.Unlock()

	if sender, err := m.users.FindByID(ctx, message.SenderID); err == nil {
		message.Sender = *sender
	}
	return &message, nil
}

func (m *MockMessageRepository) FindConversationAndMarkRead(_ context.Context, readerID, peerID uint, offset, limit int, at time.Time) ([]models.Message, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}

	var conversation []*models.Message
	for _, msg := range m.messages {
		if msg.IsBetween(readerID, peerID) {
			conversation = append(conversation, msg)
		}
	}
	sort.Slice(conversation, func(i, j int) bool {
		if !conversation[i].CreatedAt.Equal(conversation[j].CreatedAt) {
			return conversation[i].CreatedAt.After(conversation[j].CreatedAt)
		}
		return conversation[i].ID > conversation[j].ID
	})

	if offset >= len(conversation) {
		return []models.Message{}, 0, nil
	}
	end := offset + limit
	if end > len(conversation) {
		end = len(conversation)
	}
	page := conversation[offset:end]

	var marked int64
	out := make([]models.Message, 0, len(page))
	for i := len(page) - 1; i >= 0; i-- {
		msg := page[i]
		if msg.ReceiverID == readerID && !msg.IsRead {
			readAt := at
			msg.IsRead = true
			msg.ReadAt = &readAt
			marked++
		}
		out = append(out, *msg)
	}
	return out, marked, nil
}

func (m *MockMessageRepository) CountUnread(_ context.Context, receiverID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var count int64
	for _, msg := range m.messages {
		if msg.ReceiverID == receiverID && !msg.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *MockMessageRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

var errStoreDown = errors.New("store unavailable")

type publication struct {
	userID uint
	connID uuid.UUID
	except uint
	all    bool
	event  Event
}

// recordingBroker captures every publication in order.
type recordingBroker struct {
	mu  sync.Mutex
	log []publication
}

func (b *recordingBroker) PublishToUser(userID uint, ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = append(b.log, publication{userID: userID, event: ev})
}

func (b *recordingBroker) PublishToConn(connID uuid.UUID, ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = append(b.log, publication{connID: connID, event: ev})
}

func (b *recordingBroker) PublishToAll(ev Event, exceptUserID uint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = append(b.log, publication{all: true, except: exceptUserID, event: ev})
}

func (b *recordingBroker) all() []publication {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]publication(nil), b.log...)
}

func (b *recordingBroker) toUser(userID uint) []Event {
	var out []Event
	for _, p := range b.all() {
		if !p.all && p.connID == uuid.Nil && p.userID == userID {
			out = append(out, p.event)
		}
	}
	return out
}

func (b *recordingBroker) toConn(connID uuid.UUID) []Event {
	var out []Event
	for _, p := range b.all() {
		if p.connID == connID {
			out = append(out, p.event)
		}
	}
	return out
}

func (b *recordingBroker) broadcasts() []publication {
	var out []publication
	for _, p := range b.all() {
		if p.all {
			out = append(out, p)
		}
	}
	return out
}

// presenceBroadcasts returns the event types broadcast for userID in
// publication order.
func (b *recordingBroker) presenceBroadcasts(userID uint) []string {
	var out []string
	for _, p := range b.broadcasts() {
		if payload, ok := p.event.Payload.(UserPresencePayload); ok && payload.UserID == userID {
			out = append(out, p.event.Type)
		}
	}
	return out
}

// recordingStore is an in-memory PresenceStore.
type recordingStore struct {
	mu   sync.Mutex
	recs map[uint]models.PresenceRecord
}

func newRecordingStore() *recordingStore {
	return &recordingStore{recs: make(map[uint]models.PresenceRecord)}
}

func (s *recordingStore) Set(rec models.PresenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.UserID] = rec
	return nil
}

func (s *recordingStore) Get(userID uint) (*models.PresenceRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[userID]
	if !ok {
		return nil, false
	}
	return &rec, true
}
