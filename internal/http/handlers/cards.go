package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/qsl-cards-backend/internal/domain/cards"
	"github.com/yungbote/qsl-cards-backend/internal/http/response"
	"github.com/yungbote/qsl-cards-backend/internal/platform/apierr"
	svc "github.com/yungbote/qsl-cards-backend/internal/services/cards"
)

const maxBodyBytes = 8 << 20

type CardHandler struct {
	cards svc.Service
}

func NewCardHandler(cards svc.Service) *CardHandler {
	return &CardHandler{cards: cards}
}

// GET /api/ping
func (h *CardHandler) Ping(c *gin.Context) {
	response.RespondOK(c, h.cards.Ping(c.Request.Context()))
}

// GET /api/stats
func (h *CardHandler) GetStats(c *gin.Context) {
	stats, err := h.cards.Stats(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/chart
func (h *CardHandler) GetChartData(c *gin.Context) {
	chart, err := h.cards.Chart(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, chart)
}

// GET /api/cards/:role
func (h *CardHandler) ListCards(c *gin.Context) {
	role, err := types.ParseRole(c.Param("role"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	list, err := h.cards.List(c.Request.Context(), role)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, list)
}

// POST /api/cards/:role
func (h *CardHandler) SaveCard(c *gin.Context) {
	role, err := types.ParseRole(c.Param("role"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var card types.Card
	if err := c.ShouldBindJSON(&card); err != nil {
		response.RespondError(c, malformedBody(err))
		return
	}
	saved, err := h.cards.Save(c.Request.Context(), role, card)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, saved)
}

// PUT /api/cards/:role
func (h *CardHandler) ImportCards(c *gin.Context) {
	role, err := types.ParseRole(c.Param("role"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		response.RespondError(c, malformedBody(err))
		return
	}
	if len(raw) == 0 {
		response.RespondError(c, types.ErrNotSequence)
		return
	}
	list, err := h.cards.Import(c.Request.Context(), role, raw)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"count": len(list), "cards": list})
}

// DELETE /api/cards/:role/:id
func (h *CardHandler) DeleteCard(c *gin.Context) {
	role, err := types.ParseRole(c.Param("role"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	id := c.Param("id")
	if err := h.cards.Delete(c.Request.Context(), role, id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"id": id, "deleted": true})
}

func malformedBody(err error) error {
	return &apierr.Error{
		Status:  http.StatusBadRequest,
		Code:    apierr.CodeMalformed,
		Message: "invalid request body",
		Err:     err,
	}
}
