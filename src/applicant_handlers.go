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

func applicantHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/applicants", middlewares.RequireAdmin, func(ctx *gin.Context) {
			db := db.GetDb()
			var applicants []models.Applicant
			err := db.
				Model(&models.Applicant{}).
				Preload("Room").
				Order("created_at DESC").
				Find(&applicants).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": applicants, "count": len(applicants)})
		}).
		GET("/applicants/:id", middlewares.RequireAdmin, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var applicant models.Applicant
			if err := db.
				Model(&models.Applicant{}).
				Where(&models.Applicant{ID: params.ID}).
				Preload("Room").
				First(&applicant).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "applicant not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": applicant})
		}).
		POST("/applicants/:id/approve", middlewares.RequireAdmin, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := utils.ApproveApplicant(params.ID)
			if err != nil {
				if errors.Is(err, utils.ErrApplicantNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
					return
				}
				if errors.Is(err, utils.ErrUserExists) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "User approved successfully and moved to active status",
				"data":    result,
			})
		}).
		POST("/applicants/:id/reject", middlewares.RequireAdmin, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := utils.RejectApplicant(params.ID); err != nil {
				if errors.Is(err, utils.ErrApplicantNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
					return
				}
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "User rejected successfully"})
		})
	return g
}
