package main

import (
	"admitgate/src/boot"
	"admitgate/src/middlewares"
	"admitgate/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func deliveryHandlers(g *gin.RouterGroup, app *boot.App) *gin.RouterGroup {
	deliveries := g.Group("/deliveries", middlewares.RequireRole(types.ROLE_ADMIN))
	deliveries.
		GET("", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"deliveries": app.Delivery.ListAll()})
		}).
		GET("/:id", func(ctx *gin.Context) {
			id, ok := scheduleID(ctx)
			if !ok {
				return
			}
			schedule, found := app.Delivery.Get(id)
			if !found {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, schedule)
		}).
		DELETE("/:id", func(ctx *gin.Context) {
			id, ok := scheduleID(ctx)
			if !ok {
				return
			}
			if _, found := app.Delivery.Get(id); !found {
				ctx.Status(http.StatusNotFound)
				return
			}
			if !app.Delivery.Cancel(id) {
				ctx.JSON(http.StatusConflict, gin.H{"error": "delivery already dispatched"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"canceled": true})
		})
	return g
}

func scheduleID(ctx *gin.Context) (uuid.UUID, bool) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(params.ID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule id"})
		return uuid.Nil, false
	}
	return id, true
}
