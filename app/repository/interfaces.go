package repository

import (
	"github.com/ManuelReschke/PlanCard/app/models"
)

// AccountRepository defines the interface for account-related database operations
type AccountRepository interface {
	Create(account *models.Account) error
	GetByID(id uint) (*models.Account, error)
	GetByAPIKeyHash(hash string) (*models.Account, error)
	TouchAPIKeyUsage(id uint) error
	Update(account *models.Account) error
}

// Repositories holds all repository instances
type Repositories struct {
	Account AccountRepository
}
