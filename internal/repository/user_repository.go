package repository

import (
	"context"
	"time"

	"github.com/alieuroshub001/euroshub-management/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ? OR email = ?", username, email).First(&user).Error
	return &user, err
}

// ListAll returns every account, newest first.
func (r *UserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&users).Error
	return users, err
}

// SetActive enables or disables an account. It returns
// gorm.ErrRecordNotFound when no such user exists.
func (r *UserRepository) SetActive(ctx context.Context, userID uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListContacts returns every active user except excludeID, online users first
// and then by most recent activity. Users never seen sort last.
func (r *UserRepository) ListContacts(ctx context.Context, excludeID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("id <> ? AND is_active = ?", excludeID, true).
		Order("is_online DESC").
		Order("last_seen IS NULL").
		Order("last_seen DESC").
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// UpdatePresence writes the online flag and last-seen time and reports whether
// the row changed. The write is skipped when a later presence change has
// already been stored, which keeps last_seen monotonic under racing connect
// and disconnect.
func (r *UserRepository) UpdatePresence(ctx context.Context, userID uint, isOnline bool, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND (last_seen IS NULL OR last_seen <= ?)", userID, at).
		Updates(map[string]interface{}{
			"is_online": isOnline,
			"last_seen": at,
		})
	return res.RowsAffected > 0, res.Error
}

// ResetPresence clears every stored online flag. Live connections do not
// survive a restart, so flags left by a previous process are stale.
func (r *UserRepository) ResetPresence(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("is_online = ?", true).
		Update("is_online", false)
	return res.RowsAffected, res.Error
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("last_login", at).Error
}
