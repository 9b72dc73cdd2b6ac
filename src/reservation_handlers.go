package main

import (
	"errors"
	"kost/src/db"
	"kost/src/middlewares"
	"kost/src/models"
	"kost/src/types"
	"kost/src/utils"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// attachCalculatedStatus fills the derived status for each reservation
// from its preloaded payments. Payments must be ordered newest first.
func attachCalculatedStatus(reservations []models.Reservation) {
	now := time.Now()
	for i := range reservations {
		reservations[i].CalculatedStatus = utils.DeriveReservationStatus(&reservations[i], reservations[i].Payments, now)
	}
}

func reservationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/reservations", middlewares.RequireAdmin, func(ctx *gin.Context) {
			db := db.GetDb()
			var reservations []models.Reservation
			err := db.
				Model(&models.Reservation{}).
				Preload("Room").
				Preload("User").
				Preload("Payments", func(tx *gorm.DB) *gorm.DB {
					return tx.Order("created_at DESC")
				}).
				Order("tanggal_reservasi DESC").
				Find(&reservations).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			attachCalculatedStatus(reservations)
			ctx.JSON(http.StatusOK, gin.H{"data": reservations, "count": len(reservations)})
		}).
		GET("/reservations/mine", func(ctx *gin.Context) {
			email := ctx.GetString("email")
			db := db.GetDb()
			var reservations []models.Reservation
			err := db.
				Model(&models.Reservation{}).
				Where(&models.Reservation{Email: email}).
				Preload("Room").
				Preload("Payments", func(tx *gorm.DB) *gorm.DB {
					return tx.Order("created_at DESC")
				}).
				Order("tanggal_reservasi DESC").
				Find(&reservations).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			attachCalculatedStatus(reservations)
			ctx.JSON(http.StatusOK, gin.H{"data": reservations, "count": len(reservations)})
		}).
		PUT("/reservations/:id/status", middlewares.RequireAdmin, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateReservationStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			res := db.
				Model(&models.Reservation{}).
				Where("id_reservasi = ?", params.ID).
				Update("status", body.Status)
			if res.Error != nil {
				log.Printf("Could not complete request: %s\n", res.Error.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Error while processing request"})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Reservation status updated"})
		}).
		PUT("/reservations/:id/checkout", middlewares.RequireAdmin, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.CheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := utils.MarkCheckout(params.ID, body.Keterangan); err != nil {
				if errors.Is(err, utils.ErrReservationNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
					return
				}
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Tenant checked out. Room is available again"})
		}).
		POST("/reservations/reconcile", middlewares.RequireAdmin, func(ctx *gin.Context) {
			updated, err := utils.ReconcileReservationStatuses()
			if err != nil {
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to reconcile reservation statuses"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
		})
	return g
}
