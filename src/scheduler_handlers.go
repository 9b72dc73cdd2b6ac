package main

import (
	"kost/src/lib"
	"kost/src/middlewares"
	"kost/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func schedulerHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/scheduler/status", middlewares.RequireAdmin, func(ctx *gin.Context) {
			ps := lib.GetPaymentScheduler()
			if ps == nil {
				ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler is not initialized"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ps.Status()})
		}).
		POST("/scheduler/start", middlewares.RequireAdmin, func(ctx *gin.Context) {
			ps := lib.GetPaymentScheduler()
			if ps == nil {
				ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler is not initialized"})
				return
			}
			ps.Start()
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": ps.Status()})
		}).
		POST("/scheduler/stop", middlewares.RequireAdmin, func(ctx *gin.Context) {
			ps := lib.GetPaymentScheduler()
			if ps == nil {
				ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler is not initialized"})
				return
			}
			ps.Stop()
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": ps.Status()})
		}).
		POST("/scheduler/trigger-manual", middlewares.RequireAdmin, func(ctx *gin.Context) {
			ps := lib.GetPaymentScheduler()
			if ps == nil {
				ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler is not initialized"})
				return
			}
			var body types.GeneratePaymentsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			generated, genErrors, err := ps.TriggerManual(body.Month, body.Year)
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
		})
	return g
}
