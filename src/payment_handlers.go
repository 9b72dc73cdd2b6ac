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

	"github.com/gin-gonic/gin"
)

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/payments", middlewares.RequireAdmin, func(ctx *gin.Context) {
			db := db.GetDb()
			var payments []models.Payment
			err := db.
				Model(&models.Payment{}).
				Preload("Reservation").
				Preload("Reservation.Room").
				Preload("Reservation.User").
				Order("created_at DESC").
				Find(&payments).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payments, "count": len(payments)})
		}).
		GET("/payments/pending", middlewares.RequireAdmin, func(ctx *gin.Context) {
			db := db.GetDb()
			var payments []models.Payment
			err := db.
				Model(&models.Payment{}).
				Where(&models.Payment{Status: types.PAYMENT_PENDING}).
				Preload("Reservation").
				Preload("Reservation.Room").
				Preload("Reservation.User").
				Order("created_at DESC").
				Find(&payments).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payments, "count": len(payments)})
		}).
		GET("/payments/history", func(ctx *gin.Context) {
			email := ctx.GetString("email")
			db := db.GetDb()
			var payments []models.Payment
			err := db.
				Model(&models.Payment{}).
				Joins("JOIN reservasi ON reservasi.id_reservasi = pembayaran.id_reservasi").
				Where("reservasi.email = ?", email).
				Preload("Reservation.Room").
				Order("periode_tahun DESC, periode_bulan DESC").
				Limit(12).
				Find(&payments).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payments, "count": len(payments)})
		}).
		POST("/payments/:id/proof", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			email := ctx.GetString("email")
			db := db.GetDb()
			var reservation models.Reservation
			if err := db.
				Where("id_reservasi = ?", params.ID).
				First(&reservation).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
				return
			}
			if reservation.Email != email {
				ctx.JSON(http.StatusForbidden, gin.H{"error": "reservation does not belong to this user"})
				return
			}
			file, err := ctx.FormFile("bukti_pembayaran")
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "bukti pembayaran is required"})
				return
			}
			proofPath, err := saveProofFile(ctx, file, email)
			if err != nil {
				log.Printf("Error saving proof file: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not store uploaded file"})
				return
			}
			paymentId, err := utils.SubmitPaymentProof(params.ID, proofPath)
			if err != nil {
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Payment proof uploaded. Waiting for admin verification",
				"data":    gin.H{"paymentId": paymentId},
			})
		}).
		PUT("/payments/:id/status", middlewares.RequireAdmin, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdatePaymentStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := utils.UpdatePaymentStatus(params.ID, body.Status); err != nil {
				if errors.Is(err, utils.ErrPaymentNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
					return
				}
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment status updated"})
		}).
		POST("/payments/generate", middlewares.RequireAdmin, func(ctx *gin.Context) {
			var body types.GeneratePaymentsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			generated, genErrors, err := utils.GenerateMonthlyPayments(body.Month, body.Year)
			if err != nil {
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to generate monthly payments"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"success":   true,
				"generated": generated,
				"errors":    genErrors,
			})
		}).
		GET("/payments/generation-history", middlewares.RequireAdmin, func(ctx *gin.Context) {
			entries, err := utils.GetGenerationHistory()
			if err != nil {
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to get generation history"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entries, "count": len(entries)})
		})
	return g
}
