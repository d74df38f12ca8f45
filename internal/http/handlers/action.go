package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/qsl-cards-backend/internal/domain/cards"
	"github.com/yungbote/qsl-cards-backend/internal/http/response"
	"github.com/yungbote/qsl-cards-backend/internal/platform/apierr"
	svc "github.com/yungbote/qsl-cards-backend/internal/services/cards"
)

const (
	ActionPing             = "ping"
	ActionGetStats         = "getStats"
	ActionGetChartData     = "getChartData"
	ActionGetSentCards     = "getSentCards"
	ActionGetReceivedCards = "getReceivedCards"
	ActionSaveCard         = "saveCard"
	ActionDeleteCard       = "deleteCard"
	ActionImportCards      = "importCards"

	// actionLabelUnknown is the metrics label for names outside the table.
	actionLabelUnknown = "unknown"
)

// mutatingActions must arrive over POST so a link or prefetch cannot change data.
var mutatingActions = map[string]bool{
	ActionSaveCard:    true,
	ActionDeleteCard:  true,
	ActionImportCards: true,
}

func isKnownAction(action string) bool {
	switch action {
	case ActionPing, ActionGetStats, ActionGetChartData, ActionGetSentCards, ActionGetReceivedCards:
		return true
	}
	return mutatingActions[action]
}

// ActionRequest is the single-endpoint call shape used by the card admin UI.
type ActionRequest struct {
	Action string          `json:"action" form:"action"`
	Type   string          `json:"type" form:"type"`
	ID     string          `json:"id" form:"id"`
	Card   json.RawMessage `json:"card" form:"-"`
	Cards  json.RawMessage `json:"cards" form:"-"`
}

type ActionHandler struct {
	cards svc.Service
}

func NewActionHandler(cards svc.Service) *ActionHandler {
	return &ActionHandler{cards: cards}
}

// GET|POST /api
func (h *ActionHandler) Dispatch(c *gin.Context) {
	var req ActionRequest
	if c.Request.Method == http.MethodGet {
		if err := c.ShouldBindQuery(&req); err != nil {
			response.RespondError(c, malformedBody(err))
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, malformedBody(err))
		return
	}
	req.Action = strings.TrimSpace(req.Action)
	if isKnownAction(req.Action) {
		c.Set("action", req.Action)
	} else {
		c.Set("action", actionLabelUnknown)
	}
	if c.Request.Method == http.MethodGet && mutatingActions[req.Action] {
		c.Header("Allow", http.MethodPost)
		response.RespondError(c, apierr.Newf(http.StatusMethodNotAllowed, apierr.CodeMalformed, "%s requires POST", req.Action))
		return
	}

	ctx := c.Request.Context()
	var (
		data any
		err  error
	)
	switch req.Action {
	case ActionPing:
		data = h.cards.Ping(ctx)
	case ActionGetStats:
		data, err = h.cards.Stats(ctx)
	case ActionGetChartData:
		data, err = h.cards.Chart(ctx)
	case ActionGetSentCards:
		data, err = h.cards.List(ctx, types.RoleSent)
	case ActionGetReceivedCards:
		data, err = h.cards.List(ctx, types.RoleReceived)
	case ActionSaveCard:
		data, err = h.saveCard(c, req)
	case ActionDeleteCard:
		data, err = h.deleteCard(c, req)
	case ActionImportCards:
		data, err = h.importCards(c, req)
	default:
		err = apierr.Newf(http.StatusBadRequest, apierr.CodeUnknownAction, "unknown action %q", req.Action)
	}
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, data)
}

// saveCard defaults to the sent collection unless type names received.
func (h *ActionHandler) saveCard(c *gin.Context, req ActionRequest) (any, error) {
	if isAbsent(req.Card) {
		return nil, apierr.Newf(http.StatusBadRequest, apierr.CodeMalformed, "card is required")
	}
	var card types.Card
	if err := json.Unmarshal(req.Card, &card); err != nil {
		return nil, malformedBody(err)
	}
	return h.cards.Save(c.Request.Context(), types.RoleFromFlag(req.Type), card)
}

func (h *ActionHandler) deleteCard(c *gin.Context, req ActionRequest) (any, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, types.ErrIDRequired
	}
	role, err := types.ParseRole(req.Type)
	if err != nil {
		return nil, err
	}
	if err := h.cards.Delete(c.Request.Context(), role, req.ID); err != nil {
		return nil, err
	}
	return gin.H{"id": req.ID, "deleted": true}, nil
}

func (h *ActionHandler) importCards(c *gin.Context, req ActionRequest) (any, error) {
	role, err := types.ParseRole(req.Type)
	if err != nil {
		return nil, err
	}
	if isAbsent(req.Cards) {
		return nil, types.ErrNotSequence
	}
	list, err := h.cards.Import(c.Request.Context(), role, req.Cards)
	if err != nil {
		return nil, err
	}
	return gin.H{"count": len(list), "cards": list}, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
