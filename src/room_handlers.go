package main

import (
	"kost/src/db"
	"kost/src/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

func roomHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/rooms", func(ctx *gin.Context) {
			db := db.GetDb()
			var rooms []models.Room
			if err := db.Model(&models.Room{}).Order("no_kamar").Find(&rooms).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": rooms, "count": len(rooms)})
		}).
		GET("/rooms/available", func(ctx *gin.Context) {
			db := db.GetDb()
			var rooms []models.Room
			err := db.
				Model(&models.Room{}).
				Where("ketersediaan = ?", true).
				Order("no_kamar").
				Find(&rooms).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": rooms, "count": len(rooms)})
		})
	return g
}
