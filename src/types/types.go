package types

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type Role string

const (
	ROLE_ADMIN  Role = "admin"
	ROLE_RENTER Role = "penyewa"
)

// Reservation statuses are stored with the legacy Indonesian wire values
// so the tables stay readable by the existing admin frontend.
type ReservationStatus string

const (
	RESERVATION_PENDING    ReservationStatus = "Menunggu"
	RESERVATION_ACTIVE     ReservationStatus = "Aktif/Lunas"
	RESERVATION_LATE       ReservationStatus = "Telat/Belum Bayar"
	RESERVATION_REJECTED   ReservationStatus = "Ditolak"
	RESERVATION_CHECKEDOUT ReservationStatus = "Keluar"
)

type PaymentStatus string

const (
	PAYMENT_UNPAID   PaymentStatus = "Belum Bayar"
	PAYMENT_PENDING  PaymentStatus = "Menunggu"
	PAYMENT_ACCEPTED PaymentStatus = "Diterima"
	PAYMENT_REJECTED PaymentStatus = "Ditolak"
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterApplicantRequestBody struct {
	Nama     string `form:"nama" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
	NoTelp   string `form:"no_telp" binding:"required"`
	Alamat   string `form:"alamat,omitempty"`
	NoKamar  string `form:"no_kamar" binding:"required"`
}

type GeneratePaymentsRequestBody struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required,min=2000"`
}

type UpdatePaymentStatusRequestBody struct {
	Status PaymentStatus `json:"status" binding:"required,paymentstatus"`
}

type UpdateReservationStatusRequestBody struct {
	Status     ReservationStatus `json:"status" binding:"required,reservationstatus"`
	Keterangan string            `json:"keterangan,omitempty"`
}

type CheckoutRequestBody struct {
	Keterangan string `json:"keterangan,omitempty"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type GenerationError struct {
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
	Error     string `json:"error"`
}

type GenerationHistoryEntry struct {
	GenerationDate    time.Time `json:"generation_date"`
	PaymentsGenerated int       `json:"payments_generated"`
	Month             int       `json:"month"`
	Year              int       `json:"year"`
}

type ApprovalResult struct {
	ReservationID uint      `json:"reservationId"`
	Email         string    `json:"email"`
	Token         string    `json:"token"`
	ExpiresAt     time.Time `json:"expiresAt"`
	Status        string    `json:"status"`
}

type SchedulerStatus struct {
	IsRunning      bool       `json:"isRunning"`
	LastRun        *time.Time `json:"lastRun"`
	NextRun        *time.Time `json:"nextRun"`
	CronExpression string     `json:"cron_expression"`
	Timezone       string     `json:"timezone"`
	Description    string     `json:"description"`
}
