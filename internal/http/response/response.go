package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qsl-cards-backend/internal/platform/ctxutil"
)

const successMessage = "success"

type SuccessEnvelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	RequestID string `json:"requestId"`
}

type ErrorEnvelope struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	RequestID  string `json:"requestId"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, SuccessEnvelope{
		Code:      0,
		Message:   successMessage,
		Data:      payload,
		RequestID: requestID(c),
	})
}

// RespondError classifies err and writes the failure envelope.
func RespondError(c *gin.Context, err error) {
	ae := FromError(err)
	c.Error(err)
	c.JSON(ae.Status, ErrorEnvelope{
		Code:       ae.Code,
		StatusCode: ae.Status,
		Message:    ae.Error(),
		RequestID:  requestID(c),
	})
}

func requestID(c *gin.Context) string {
	if id := ctxutil.RequestID(c.Request.Context()); id != "" {
		return id
	}
	return c.GetString("request_id")
}
