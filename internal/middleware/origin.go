package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nsbs/certify/internal/app/models/dto"
	"github.com/nsbs/certify/internal/pkg/logger"
)

// requestOrigin returns scheme://host of the Origin header, or of the Referer when Origin is absent
func requestOrigin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" && origin != "null" {
		return strings.TrimRight(origin, "/")
	}
	referer := r.Header.Get("Referer")
	if referer == "" {
		return ""
	}
	u, err := url.Parse(referer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// OriginCheck rejects state-changing requests whose Origin (or Referer) is not in allowed
func OriginCheck(allowed []string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		allowedSet[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := requestOrigin(c.Request)
		if _, ok := allowedSet[strings.ToLower(origin)]; origin == "" || !ok {
			logger.Warn().
				Str("origin", origin).
				Str("path", c.Request.URL.Path).
				Msg("Rejected request from disallowed origin")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(dto.ErrorCodeInvalidOrigin, "Invalid request origin"))
			return
		}
		c.Next()
	}
}
