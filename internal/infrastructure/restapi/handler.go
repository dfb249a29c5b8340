package restapi

import (
	"net/http"

	"wallet_state/internal/accounts"
	"wallet_state/internal/app/port"
	"wallet_state/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PollStatus reports the failures of the latest balance poll.
type PollStatus interface {
	LastErrors() []entity.PollError
}

// Handler serves the HTTP API.
type Handler struct {
	directory port.AccountDirectory
	networks  port.NetworkDefinitionProvider
	prices    accounts.PriceSource
	activity  port.ActivityService
	poller    PollStatus
	logger    *zap.Logger
}

// Deps groups the collaborators of Handler. Prices, Activity and Poller may be nil.
type Deps struct {
	Directory port.AccountDirectory
	Networks  port.NetworkDefinitionProvider
	Prices    accounts.PriceSource
	Activity  port.ActivityService
	Poller    PollStatus
	Logger    *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		directory: d.Directory,
		networks:  d.Networks,
		prices:    d.Prices,
		activity:  d.Activity,
		poller:    d.Poller,
		logger:    d.Logger.Named("RestAPI"),
	}
}

// APIError is the body of every failed request.
type APIError struct {
	Error string `json:"error"`
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, APIError{Error: msg})
}

// addressParam reads and normalizes the :address path segment.
func addressParam(c *gin.Context) (string, bool) {
	address, ok := accounts.NormalizeAddress(c.Param("address"))
	if !ok {
		abortWithError(c, http.StatusBadRequest, "invalid address")
	}
	return address, ok
}

func (h *Handler) dispatch(c *gin.Context, action accounts.Action) (accounts.State, bool) {
	state, err := h.directory.Dispatch(c.Request.Context(), action)
	if err != nil {
		h.logger.Error("Failed to apply action", zap.String("action", accounts.ActionName(action)), zap.Error(err))
		abortWithError(c, http.StatusServiceUnavailable, "account directory unavailable")
		return accounts.State{}, false
	}
	return state, true
}

func (h *Handler) network(c *gin.Context, identifier string) (entity.NetworkDefinition, bool) {
	def, ok := h.networks.GetNetworkDefinitionByName(identifier)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "unknown network "+identifier)
	}
	return def, ok
}
