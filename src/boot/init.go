package boot

import (
	"context"
	"kost/src/db"
	"kost/src/lib"
	"kost/src/models"
	"kost/src/utils"
	"log"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Room{},
		&models.User{},
		&models.Applicant{},
		&models.Reservation{},
		&models.Payment{},
		&models.UserToken{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitCache probes the login token cache once at boot so a misconfigured
// redis shows up in the logs instead of on the first approval.
func InitCache() {
	if err := lib.PingRedis(context.Background()); err != nil {
		log.Printf("Login token cache unavailable: %s\n", err.Error())
		return
	}
	log.Println("Login token cache connected")
}

// InitScheduler arms the monthly payment generation job.
func InitScheduler() *lib.PaymentScheduler {
	ps, err := lib.NewPaymentScheduler(utils.GenerateMonthlyPayments)
	if err != nil {
		log.Printf("Error initializing payment scheduler: %s\n", err.Error())
		return nil
	}
	lib.SetPaymentScheduler(ps)
	ps.Start()
	return ps
}

func StopScheduler() {
	ps := lib.GetPaymentScheduler()
	if ps == nil {
		return
	}
	if err := ps.Shutdown(); err != nil {
		log.Printf("Error shutting down payment scheduler: %s\n", err.Error())
	}
}
