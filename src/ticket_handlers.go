package main

import (
	"admitgate/src/boot"
	"admitgate/src/lib"
	"admitgate/src/middlewares"
	"admitgate/src/models"
	"admitgate/src/types"
	"admitgate/src/utils"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	log "github.com/sirupsen/logrus"
)

const shareLinkSafety = 5 * time.Minute

func ticketHandlers(g *gin.RouterGroup, app *boot.App) *gin.RouterGroup {
	admin := middlewares.RequireRole(types.ROLE_ADMIN)
	g.
		POST("/tickets", admin, func(ctx *gin.Context) {
			var body types.IssueTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking := models.Booking{
				BookingID:        body.BookingID,
				EventID:          body.EventID,
				EventTitle:       body.EventTitle,
				EventDate:        body.EventDate,
				EventTime:        body.EventTime,
				EventLocation:    body.EventLocation,
				UserName:         body.UserName,
				UserEmail:        body.UserEmail,
				UserPhone:        body.UserPhone,
				TicketQuantity:   body.TicketQuantity,
				TotalAmount:      body.TotalAmount,
				BookingTimestamp: body.BookingTimestamp,
			}
			ticket, err := app.Issuer.Issue(ctx.Request.Context(), &booking)
			if err != nil {
				switch {
				case errors.Is(err, types.ErrDuplicateBooking):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				case errors.Is(err, types.ErrInvalidBooking):
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				default:
					log.Printf("Error issuing Ticket: %s\n", err.Error())
					ctx.Status(http.StatusInternalServerError)
				}
				return
			}
			schedule, err := app.Delivery.Schedule(ctx.Request.Context(), ticket)
			if err != nil {
				log.Printf("Error scheduling delivery of Ticket [%s]: %s\n", ticket.ID, err.Error())
				ctx.JSON(http.StatusCreated, gin.H{"ticket": ticket, "schedule": nil, "error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"ticket": ticket, "schedule": schedule})
		}).
		GET("/tickets/:id/status", admin, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			status, err := app.Verifier.Status(ctx.Request.Context(), params.ID)
			if err != nil {
				log.Printf("Error retrieving status of Ticket [%s]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusServiceUnavailable)
				return
			}
			ctx.JSON(http.StatusOK, status)
		}).
		GET("/tickets/:id/code", admin, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var query types.TicketCodeQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ticket, err := app.Store.Get(ctx.Request.Context(), params.ID)
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				log.Printf("Error retrieving Ticket [%s]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusServiceUnavailable)
				return
			}
			payload := utils.EncodeCompact(ticket)
			if query.ShareLink {
				shareTicketCode(ctx, app, ticket, payload)
				return
			}
			img, err := lib.RenderQRCode(payload)
			if err != nil {
				log.Printf("Error rendering QR code for Ticket [%s]: %s\n", ticket.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.Header("Content-Disposition", `attachment; filename="eticket.jpeg"`)
			ctx.Data(http.StatusOK, "image/jpeg", img)
		})
	return g
}

// shareLinkCacheTTL keeps a cached link from outliving its presigned URL.
// Short presign windows are cached for half their length.
func shareLinkCacheTTL(presignTTL time.Duration) time.Duration {
	if presignTTL <= 2*shareLinkSafety {
		return presignTTL / 2
	}
	return presignTTL - shareLinkSafety
}

// shareTicketCode uploads the QR image once and reuses the presigned link
// until shortly before it expires.
func shareTicketCode(ctx *gin.Context, app *boot.App, ticket *models.Ticket, payload string) {
	if app.Assets == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "share links are not configured"})
		return
	}
	filename := fmt.Sprintf("%s.jpeg", slug.Make(ticket.ID))
	cacheKey := fmt.Sprintf("share:%s", filename)
	if app.Redis != nil {
		if url, err := app.Redis.Get(ctx.Request.Context(), cacheKey).Result(); err == nil {
			ctx.JSON(http.StatusOK, gin.H{"url": url})
			return
		}
	}
	img, err := lib.RenderQRCode(payload)
	if err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	}
	url, err := app.Assets.S3UploadAsset(ctx.Request.Context(), filename, img)
	if err != nil {
		log.Printf("Error uploading asset to S3 bucket: %s\n", err.Error())
		ctx.Status(http.StatusBadGateway)
		return
	}
	if ttl := shareLinkCacheTTL(app.Assets.TTL()); app.Redis != nil && ttl > 0 {
		if err := app.Redis.SetEx(ctx.Request.Context(), cacheKey, url, ttl).Err(); err != nil {
			log.Printf("Error caching share link [%s]: %s\n", cacheKey, err.Error())
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"url": url})
}
