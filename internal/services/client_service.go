package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/pagination"
)

// clientService handles client business logic.
type clientService struct {
	db *gorm.DB
}

// NewClientService creates a new ClientServicer.
func NewClientService(db *gorm.DB) ClientServicer {
	return &clientService{db: db}
}

// CreateClient creates a new invoicing counterparty.
func (s *clientService) CreateClient(userID, name string, clientType models.ClientType, country, ustIDNr, email string) (*models.Client, error) {
	client := &models.Client{
		UserID:     userID,
		Name:       name,
		ClientType: clientType,
		Country:    strings.ToUpper(country),
		UstIDNr:    strings.ToUpper(strings.ReplaceAll(ustIDNr, " ", "")),
		Email:      email,
		Active:     true,
	}

	if err := s.db.Create(client).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return client, nil
}

// GetUserClients returns a paginated list of clients.
func (s *clientService) GetUserClients(userID string, page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.Client], error) {
	page.Defaults()

	base := s.db.Model(&models.Client{}).Where("user_id = ?", userID)
	if activeOnly {
		base = base.Where("active = ?", true)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var clients []models.Client
	if err := base.Order("name").Scopes(pagination.Paginate(page)).Find(&clients).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(clients, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetClientByID returns a client if it belongs to the user.
func (s *clientService) GetClientByID(userID, clientID string) (*models.Client, error) {
	var client models.Client
	if err := s.db.Where("id = ? AND user_id = ?", clientID, userID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrClientNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &client, nil
}

// UpdateClient updates a client's fields.
func (s *clientService) UpdateClient(userID, clientID, name, country, ustIDNr, email string, active *bool) (*models.Client, error) {
	client, err := s.GetClientByID(userID, clientID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if country != "" {
		updates["country"] = strings.ToUpper(country)
	}
	if ustIDNr != "" {
		updates["ust_id_nr"] = strings.ToUpper(strings.ReplaceAll(ustIDNr, " ", ""))
	}
	if email != "" {
		updates["email"] = email
	}
	if active != nil {
		updates["active"] = *active
	}

	if len(updates) > 0 {
		if err := s.db.Model(client).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return client, nil
}

// DeleteClient soft-deletes a client.
func (s *clientService) DeleteClient(userID, clientID string) error {
	client, err := s.GetClientByID(userID, clientID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(client).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
