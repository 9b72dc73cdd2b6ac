package config

import (
	"fmt"
	"os"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

// Standard monthly rent in IDR, applied to every generated payment.
const STANDARD_RENT float64 = 900000

// Rent is considered late after this day of the month.
const PAYMENT_DEADLINE_DAY = 5

// Generated payments get created_at anchored to this day of the target
// month so period lookups by date-part extraction stay reliable.
const GENERATION_ANCHOR_DAY = 21

const SCHEDULER_CRON_EXPRESSION = "0 0 1 * *"

const SCHEDULER_TIMEZONE = "Asia/Jakarta"

// One-time login tokens issued at approval are valid for one day.
const TOKEN_TTL_HOURS = 24

const UPLOADS_DIR = "uploads/bukti-pembayaran"
