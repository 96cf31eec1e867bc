package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/PlanCard/app/models"
)

// accountRepository implements the AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository instance
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new account in the database
func (r *accountRepository) Create(account *models.Account) error {
	return r.db.Create(account).Error
}

// GetByID retrieves an account by its ID
func (r *accountRepository) GetByID(id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByAPIKeyHash retrieves the account owning a non-revoked API key
func (r *accountRepository) GetByAPIKeyHash(hash string) (*models.Account, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var account models.Account
	err := r.db.Where("api_key_hash = ? AND api_key_revoked_at IS NULL", hash).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// TouchAPIKeyUsage updates the last-used timestamp of an account's API key
func (r *accountRepository) TouchAPIKeyUsage(id uint) error {
	return r.db.Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{"api_key_last_used_at": time.Now()}).Error
}

// Update saves all fields of an account
func (r *accountRepository) Update(account *models.Account) error {
	return r.db.Save(account).Error
}
