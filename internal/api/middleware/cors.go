package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func ConfigCORS(allowedDomains []string) gin.HandlerFunc {
	conf := cors.DefaultConfig()
	conf.AllowOrigins = allowedDomains
	conf.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	conf.AllowCredentials = true
	conf.MaxAge = 12 * time.Hour

	return cors.New(conf)
}
