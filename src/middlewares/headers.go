package middlewares

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func SecureHeaders(ctx *gin.Context) {
	ctx.Header("X-Frame-Options", "DENY")
	ctx.Header("X-Content-Type-Options", "nosniff")
	ctx.Header("Referrer-Policy", "no-referrer")
	ctx.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	ctx.Header("Cache-Control", "no-store")
}

// MaintenanceMode rejects every request while MAINTENANCE_MODE is true.
// An unset or unparsable value leaves the service open.
func MaintenanceMode(ctx *gin.Context) {
	on, err := strconv.ParseBool(os.Getenv("MAINTENANCE_MODE"))
	if err == nil && on {
		log.Println("server is under maintenance")
		ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "server is under maintenance"})
		return
	}
}
