package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/pagination"
	"dreistrom/internal/services"
)

// ClientHandler handles invoicing counterparty requests.
type ClientHandler struct {
	clientService services.ClientServicer
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService services.ClientServicer) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// CreateClientRequest represents the client creation payload.
type CreateClientRequest struct {
	Name       string            `json:"name" binding:"required,max=255"`
	ClientType models.ClientType `json:"client_type" binding:"required,client_type"`
	Country    string            `json:"country" binding:"required,len=2"`
	UstIDNr    string            `json:"ust_id_nr" binding:"omitempty,ust_id"`
	Email      string            `json:"email" binding:"omitempty,email"`
}

// UpdateClientRequest represents the client update payload.
type UpdateClientRequest struct {
	Name    string `json:"name" binding:"max=255"`
	Country string `json:"country" binding:"omitempty,len=2"`
	UstIDNr string `json:"ust_id_nr" binding:"omitempty,ust_id"`
	Email   string `json:"email" binding:"omitempty,email"`
	Active  *bool  `json:"active"`
}

// listClientsQuery binds the client list filters.
type listClientsQuery struct {
	pagination.PageRequest
	ActiveOnly bool `form:"active_only"`
}

// CreateClient creates a new client
// @Summary     Create client
// @Description Register an invoicing counterparty; the country and USt-IdNr drive the VAT treatment
// @Tags        clients
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateClientRequest true "Client data"
// @Success     201 {object} models.Client "Created client"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	client, err := h.clientService.CreateClient(userID, req.Name, req.ClientType, req.Country, req.UstIDNr, req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"client": client})
}

// ListClients returns the user's clients
// @Summary     List clients
// @Tags        clients
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       active_only query bool false "Only active clients"
// @Success     200 {object} pagination.PageResponse[models.Client] "Clients"
// @Router      /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query listClientsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	clients, err := h.clientService.GetUserClients(userID, query.PageRequest, query.ActiveOnly)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, clients)
}

// GetClient returns one client
// @Summary     Get client
// @Tags        clients
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Client ID"
// @Success     200 {object} models.Client "Client"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	client, err := h.clientService.GetClientByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}

// UpdateClient updates a client
// @Summary     Update client
// @Tags        clients
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Client ID"
// @Param       request body UpdateClientRequest true "Fields to update"
// @Success     200 {object} models.Client "Updated client"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	client, err := h.clientService.UpdateClient(userID, c.Param("id"), req.Name, req.Country, req.UstIDNr, req.Email, req.Active)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}

// DeleteClient deletes a client
// @Summary     Delete client
// @Tags        clients
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Client ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.clientService.DeleteClient(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
