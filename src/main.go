package main

import (
	"fmt"
	"kost/src/boot"
	"kost/src/config"
	"kost/src/db"
	"kost/src/middlewares"
	"kost/src/models"
	"kost/src/types"
	"kost/src/utils"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gosimple/slug"
	_ "github.com/joho/godotenv/autoload"
	"gorm.io/gorm"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

const (
	apiPrefix string = "/api/v1"
)

var paymentStatusValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	switch types.PaymentStatus(fl.Field().String()) {
	case types.PAYMENT_UNPAID, types.PAYMENT_PENDING, types.PAYMENT_ACCEPTED, types.PAYMENT_REJECTED:
		return true
	}
	return false
}

var reservationStatusValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	switch types.ReservationStatus(fl.Field().String()) {
	case types.RESERVATION_PENDING, types.RESERVATION_ACTIVE, types.RESERVATION_LATE,
		types.RESERVATION_REJECTED, types.RESERVATION_CHECKEDOUT:
		return true
	}
	return false
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("paymentstatus", paymentStatusValidatorFunc)
		v.RegisterValidation("reservationstatus", reservationStatusValidatorFunc)
	}
}

func generateJWT(email string, role types.Role) (string, error) {
	claims := types.Claims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(jwtKey)
}

// saveProofFile stores an uploaded transfer proof under the uploads dir
// with a slugged, timestamped name.
func saveProofFile(ctx *gin.Context, file *multipart.FileHeader, name string) (string, error) {
	ext := filepath.Ext(file.Filename)
	filename := fmt.Sprintf("%s-%d%s", slug.Make(name), time.Now().UnixNano(), ext)
	dst := path.Join(config.UPLOADS_DIR, filename)
	if err := os.MkdirAll(config.UPLOADS_DIR, 0o755); err != nil {
		return "", err
	}
	if err := ctx.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func setupRouter() *gin.Engine {
	r := gin.Default()
	corsConfig := cors.DefaultConfig()
	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))
	r.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func apiv1Group(r *gin.Engine) *gin.RouterGroup {
	return r.Group(apiPrefix)
}

func guestAuthRoutes(r *gin.Engine) {
	auth := r.Group(path.Join(apiPrefix, "auth"))
	auth.
		POST("/register", func(ctx *gin.Context) {
			var body types.RegisterApplicantRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			file, err := ctx.FormFile("bukti_pembayaran")
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "bukti pembayaran is required"})
				return
			}
			proofPath, err := saveProofFile(ctx, file, body.Nama)
			if err != nil {
				log.Printf("Error saving proof file: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not store uploaded file"})
				return
			}
			hashed, err := utils.HashPassword(body.Password)
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not process request"})
				return
			}
			applicant := models.Applicant{
				Nama:            body.Nama,
				NoTelp:          body.NoTelp,
				Alamat:          body.Alamat,
				Email:           body.Email,
				Password:        hashed,
				NoKamar:         body.NoKamar,
				BuktiPembayaran: &proofPath,
				Role:            types.ROLE_RENTER,
			}
			db := db.GetDb()
			if err := db.Create(&applicant).Error; err != nil {
				log.Printf("Error creating applicant: %s\n", err.Error())
				ctx.JSON(http.StatusConflict, gin.H{"error": "email already has a pending application"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{
				"success": true,
				"message": "Application submitted. Waiting for admin approval",
				"data":    gin.H{"id": applicant.ID},
			})
		}).
		POST("/login", func(ctx *gin.Context) {
			var body types.LoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var user models.User
			if err := db.Where(&models.User{Email: body.Email}).First(&user).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			if !utils.CheckPassword(user.Password, body.Password) {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			token, err := generateJWT(user.Email, user.Role)
			if err != nil {
				log.Printf("Error generating JWT token: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"token": token, "role": user.Role})
		}).
		POST("/token-login", func(ctx *gin.Context) {
			// First login after approval, using the one-time token.
			var body struct {
				Token string `json:"token" binding:"required"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var userToken models.UserToken
			if err := db.Where(&models.UserToken{Token: body.Token}).First(&userToken).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
				return
			}
			if time.Now().After(userToken.ExpiresAt) {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
				return
			}
			var user models.User
			if err := db.Where(&models.User{Email: userToken.Email}).First(&user).Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			token, err := generateJWT(user.Email, user.Role)
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
				return
			}
			if err := db.Transaction(func(tx *gorm.DB) error {
				return tx.Unscoped().Delete(&models.UserToken{}, "token = ?", body.Token).Error
			}); err != nil {
				log.Printf("Error consuming login token: %s\n", err.Error())
			}
			ctx.JSON(http.StatusOK, gin.H{"token": token, "role": user.Role})
		})
}

func main() {
	registerValidators()
	boot.InitDb()
	boot.InitCache()
	boot.InitScheduler()
	defer boot.StopScheduler()

	r := setupRouter()
	guestAuthRoutes(r)
	apiv1 := apiv1Group(r)
	apiv1.Use(middlewares.AuthMiddleware)
	applicantHandlers(apiv1)
	paymentHandlers(apiv1)
	reservationHandlers(apiv1)
	roomHandlers(apiv1)
	schedulerHandlers(apiv1)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	if err := r.Run(fmt.Sprintf(":%s", port)); err != nil {
		log.Fatalf("Error starting server: %s\n", err.Error())
	}
}
