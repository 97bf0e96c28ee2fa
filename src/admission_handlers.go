package main

import (
	"admitgate/src/boot"
	"admitgate/src/middlewares"
	"admitgate/src/models"
	"admitgate/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

func admissionHandlers(g *gin.RouterGroup, app *boot.App) *gin.RouterGroup {
	g.
		GET("/admissions/used", middlewares.RequireRole(types.ROLE_ADMIN), func(ctx *gin.Context) {
			used, err := app.Verifier.UsedTickets(ctx.Request.Context())
			if err != nil {
				log.Printf("Error retrieving used tickets: %s\n", err.Error())
				ctx.Status(http.StatusServiceUnavailable)
				return
			}
			ids := lo.Map(used, func(c models.ConsumedTicket, _ int) string {
				return c.TicketID
			})
			ctx.JSON(http.StatusOK, gin.H{"count": len(used), "ticketIds": ids, "admissions": used})
		}).
		POST("/admission", func(ctx *gin.Context) {
			var body types.CreateAdmissionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result := app.Verifier.VerifyAs(ctx.Request.Context(), body.Code, body.Email)
			log.WithFields(log.Fields{
				"operator": ctx.GetString("username"),
				"venue":    ctx.GetString("venue"),
				"status":   result.Status,
			}).Info("[Admission] Scan processed")
			ctx.JSON(http.StatusOK, result)
		}).
		POST("/admission/ownership", func(ctx *gin.Context) {
			var body types.OwnershipRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"matches": app.Verifier.OwnershipMatches(body.Code, body.Email)})
		})
	return g
}
