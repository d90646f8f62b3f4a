package public

import (
	"strings"

	handlershared "github.com/wallgreat218-lgtm/zenvora-store/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartTokenHeader identifies an anonymous shopper's cart across views.
const CartTokenHeader = "X-Cart-Token"

// cartToken returns the shopper's cart token, minting one when the
// header is absent. The token in use is always echoed back so the client
// can persist it.
func cartToken(c *gin.Context) string {
	token := strings.TrimSpace(c.GetHeader(CartTokenHeader))
	if token == "" {
		token = uuid.NewString()
	}
	c.Header(CartTokenHeader, token)
	return token
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}
