package utils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"kost/src/config"
	"kost/src/db"
	"kost/src/lib"
	"kost/src/lib/mailer"
	"kost/src/models"
	"kost/src/types"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrApplicantNotFound   = errors.New("applicant not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrUserExists          = errors.New("user with this email already exists")
)

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// GenerateOpaqueToken returns a 32-byte random token, hex encoded.
func GenerateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}

// DeriveReservationStatus recomputes the display status of a live
// reservation from its payment history (newest first). The stored status
// is only a cache of this; terminal reservations keep their stored value.
func DeriveReservationStatus(reservation *models.Reservation, payments []models.Payment, now time.Time) types.ReservationStatus {
	switch reservation.Status {
	case types.RESERVATION_CHECKEDOUT, types.RESERVATION_REJECTED, types.RESERVATION_PENDING:
		return reservation.Status
	}
	if len(payments) == 0 {
		return types.RESERVATION_LATE
	}
	latest := payments[0]
	ref := latest.CreatedAt
	if latest.TanggalBayar != nil {
		ref = *latest.TanggalBayar
	}
	if latest.Status == types.PAYMENT_ACCEPTED &&
		ref.Month() == now.Month() && ref.Year() == now.Year() {
		return types.RESERVATION_ACTIVE
	}
	return types.RESERVATION_LATE
}

// GenerateMonthlyPayments creates one unpaid rent record per active
// renter reservation for the given period. Existing period payments are
// skipped and per-tenant failures are collected without aborting the batch.
func GenerateMonthlyPayments(month, year int) (int, []types.GenerationError, error) {
	if month < 1 || month > 12 {
		return 0, nil, fmt.Errorf("month %d is out of range", month)
	}
	log.Printf("Starting payment generation for %d/%d\n", month, year)

	db := db.GetDb()
	var reservations []models.Reservation
	err := db.
		Model(&models.Reservation{}).
		Joins(`JOIN "user" ON "user".email = reservasi.email`).
		Where(`"user".role = ?`, types.ROLE_RENTER).
		Where("reservasi.status = ?", types.RESERVATION_ACTIVE).
		Preload("User").
		Find(&reservations).
		Error
	if err != nil {
		log.Printf("Error retrieving active reservations: %s\n", err.Error())
		return 0, nil, err
	}
	log.Printf("Found %d active tenants\n", len(reservations))

	generated := 0
	genErrors := make([]types.GenerationError, 0)
	for _, r := range reservations {
		email, name := r.Email, ""
		if r.User != nil {
			name = r.User.Nama
		}
		created, err := generateForReservation(db, r.ID, month, year)
		if err != nil {
			log.Printf("Error generating payment for %s: %s\n", email, err.Error())
			genErrors = append(genErrors, types.GenerationError{
				UserEmail: email,
				UserName:  name,
				Error:     err.Error(),
			})
			continue
		}
		if !created {
			log.Printf("Payment already exists for %s for %d/%d\n", email, month, year)
			continue
		}
		generated++
	}

	log.Printf("Payment generation completed. Generated: %d, Errors: %d\n", generated, len(genErrors))
	return generated, genErrors, nil
}

func generateForReservation(db *gorm.DB, reservationId uint, month, year int) (bool, error) {
	var count int64
	err := db.
		Model(&models.Payment{}).
		Where("id_reservasi = ?", reservationId).
		Where("EXTRACT(MONTH FROM created_at) = ? AND EXTRACT(YEAR FROM created_at) = ?", month, year).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	// Anchor created_at inside the target month so the period stays
	// recoverable by date-part queries on legacy rows.
	anchor := time.Date(year, time.Month(month), config.GENERATION_ANCHOR_DAY, 0, 0, 0, 0, time.Local)
	payment := models.Payment{
		IDReservasi:  reservationId,
		Jumlah:       config.STANDARD_RENT,
		Status:       types.PAYMENT_UNPAID,
		PeriodeBulan: month,
		PeriodeTahun: year,
	}
	payment.CreatedAt = anchor
	if err := db.Create(&payment).Error; err != nil {
		return false, err
	}
	return true, nil
}

// GetGenerationHistory reports generated payment counts for the last 30
// days, grouped by calendar day.
func GetGenerationHistory() ([]types.GenerationHistoryEntry, error) {
	db := db.GetDb()
	var entries []types.GenerationHistoryEntry
	err := db.
		Model(&models.Payment{}).
		Select("DATE(created_at) AS generation_date, COUNT(*) AS payments_generated, EXTRACT(MONTH FROM created_at)::int AS month, EXTRACT(YEAR FROM created_at)::int AS year").
		Where("created_at >= ?", time.Now().AddDate(0, 0, -30)).
		Group("DATE(created_at), EXTRACT(MONTH FROM created_at), EXTRACT(YEAR FROM created_at)").
		Order("generation_date DESC").
		Limit(10).
		Scan(&entries).
		Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ApproveApplicant promotes a pending application into an active tenancy:
// user, reservation, accepted first payment, one-time login token, room
// marked occupied, applicant row removed. All writes share one transaction;
// the applicant row is deleted last so an earlier failure leaves the
// application intact for retry.
func ApproveApplicant(id uint) (*types.ApprovalResult, error) {
	db := db.GetDb()
	var result types.ApprovalResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var applicant models.Applicant
		if err := tx.Where(&models.Applicant{ID: id}).First(&applicant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicantNotFound
			}
			return err
		}

		// Password is already hashed on the applicant row. Never re-hash.
		user := models.User{
			Nama:     applicant.Nama,
			NoTelp:   applicant.NoTelp,
			Alamat:   applicant.Alamat,
			Email:    applicant.Email,
			Password: applicant.Password,
			Role:     applicant.Role,
		}
		if err := tx.Create(&user).Error; err != nil {
			if isDuplicateKeyError(err) {
				return ErrUserExists
			}
			return err
		}

		now := time.Now()
		reservation := models.Reservation{
			NoKamar:          applicant.NoKamar,
			Email:            applicant.Email,
			TanggalReservasi: now,
			Status:           types.RESERVATION_ACTIVE,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}

		// First month counts as paid with the proof submitted on application.
		payment := models.Payment{
			IDReservasi:     reservation.ID,
			TanggalBayar:    &now,
			Jumlah:          config.STANDARD_RENT,
			BuktiPembayaran: applicant.BuktiPembayaran,
			Status:          types.PAYMENT_ACCEPTED,
			PeriodeBulan:    int(now.Month()),
			PeriodeTahun:    now.Year(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		token, err := GenerateOpaqueToken()
		if err != nil {
			return err
		}
		expiresAt := now.Add(config.TOKEN_TTL_HOURS * time.Hour)
		userToken := models.UserToken{
			Email:     applicant.Email,
			Token:     token,
			ExpiresAt: expiresAt,
		}
		if err := tx.Create(&userToken).Error; err != nil {
			return err
		}

		if err := tx.
			Model(&models.Room{}).
			Where(&models.Room{NoKamar: applicant.NoKamar}).
			Update("ketersediaan", false).
			Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Delete(&models.Applicant{}, applicant.ID).Error; err != nil {
			return err
		}

		result = types.ApprovalResult{
			ReservationID: reservation.ID,
			Email:         applicant.Email,
			Token:         token,
			ExpiresAt:     expiresAt,
			Status:        string(types.RESERVATION_ACTIVE),
		}
		return nil
	})
	if err != nil {
		log.Printf("ApproveApplicant failed: %s\n", err.Error())
		return nil, err
	}

	cacheLoginToken(result.Email, result.Token)
	go func() {
		if err := mailer.NewApprovalMessage(result.Email, result.Token, result.ExpiresAt); err != nil {
			log.Printf("Error sending approval email to %s: %s\n", result.Email, err.Error())
		}
	}()
	return &result, nil
}

func cacheLoginToken(email, token string) {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	key := fmt.Sprintf("login-token:%s", email)
	if err := rd.SetEx(context.Background(), key, token, config.TOKEN_TTL_HOURS*time.Hour).Err(); err != nil {
		log.Printf("Error caching value [%s]: %s\n", key, err.Error())
	}
}

// RejectApplicant removes the application without creating any tenancy
// records. The decision is terminal.
func RejectApplicant(id uint) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var applicant models.Applicant
		if err := tx.Where(&models.Applicant{ID: id}).First(&applicant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicantNotFound
			}
			return err
		}
		return tx.Unscoped().Delete(&models.Applicant{}, applicant.ID).Error
	})
}

// ReconcileReservationStatuses advances every live reservation between
// Aktif/Lunas and Telat/Belum Bayar from its latest payment. One
// reservation failing does not stop the sweep for the rest. Returns how
// many reservations changed status.
func ReconcileReservationStatuses() (int, error) {
	db := db.GetDb()
	now := time.Now()
	var reservations []models.Reservation
	err := db.
		Where("status IN ?", []types.ReservationStatus{
			types.RESERVATION_ACTIVE,
			types.RESERVATION_LATE,
		}).
		Find(&reservations).
		Error
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, reservation := range reservations {
		changed, err := reconcileReservation(db, reservation, now)
		if err != nil {
			log.Printf("Error reconciling reservation %d: %s\n", reservation.ID, err.Error())
			continue
		}
		if changed {
			updated++
		}
	}
	return updated, nil
}

func reconcileReservation(db *gorm.DB, reservation models.Reservation, now time.Time) (bool, error) {
	changed := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var payments []models.Payment
		err := tx.
			Where(&models.Payment{IDReservasi: reservation.ID}).
			Order("tanggal_bayar DESC NULLS LAST, created_at DESC").
			Limit(1).
			Find(&payments).
			Error
		if err != nil {
			return err
		}

		if len(payments) == 0 {
			if reservation.Status != types.RESERVATION_LATE {
				changed = true
				return tx.
					Model(&models.Reservation{}).
					Where("id_reservasi = ?", reservation.ID).
					Update("status", types.RESERVATION_LATE).
					Error
			}
			return nil
		}

		latest := payments[0]
		ref := latest.CreatedAt
		if latest.TanggalBayar != nil {
			ref = *latest.TanggalBayar
		}
		isCurrentPeriod := ref.Month() == now.Month() && ref.Year() == now.Year()
		isCurrentPaid := isCurrentPeriod && latest.Status == types.PAYMENT_ACCEPTED
		isPastDeadline := now.Day() > config.PAYMENT_DEADLINE_DAY

		newStatus := reservation.Status
		if isCurrentPaid {
			newStatus = types.RESERVATION_ACTIVE
		} else if isPastDeadline || isCurrentPeriod {
			newStatus = types.RESERVATION_LATE
			var count int64
			err := tx.
				Model(&models.Payment{}).
				Where("id_reservasi = ?", reservation.ID).
				Where("EXTRACT(MONTH FROM created_at) = ? AND EXTRACT(YEAR FROM created_at) = ?", int(now.Month()), now.Year()).
				Count(&count).
				Error
			if err != nil {
				return err
			}
			if count == 0 {
				placeholder := models.Payment{
					IDReservasi:  reservation.ID,
					Jumlah:       config.STANDARD_RENT,
					Status:       types.PAYMENT_UNPAID,
					PeriodeBulan: int(now.Month()),
					PeriodeTahun: now.Year(),
				}
				if err := tx.Create(&placeholder).Error; err != nil {
					return err
				}
			}
		}

		if newStatus != reservation.Status {
			changed = true
			return tx.
				Model(&models.Reservation{}).
				Where("id_reservasi = ?", reservation.ID).
				Update("status", newStatus).
				Error
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// SubmitPaymentProof records a tenant's transfer proof for the current
// period, reusing the open period payment when one exists.
func SubmitPaymentProof(reservationId uint, proofPath string) (uint, error) {
	db := db.GetDb()
	now := time.Now()
	var paymentId uint
	err := db.Transaction(func(tx *gorm.DB) error {
		var payments []models.Payment
		err := tx.
			Where("id_reservasi = ?", reservationId).
			Where("EXTRACT(MONTH FROM created_at) = ? AND EXTRACT(YEAR FROM created_at) = ?", int(now.Month()), now.Year()).
			Limit(1).
			Find(&payments).
			Error
		if err != nil {
			return err
		}
		if len(payments) > 0 {
			paymentId = payments[0].ID
			return tx.
				Model(&models.Payment{}).
				Where("id_pembayaran = ?", paymentId).
				Updates(map[string]any{
					"bukti_pembayaran": proofPath,
					"status":           types.PAYMENT_PENDING,
					"tanggal_bayar":    now,
				}).
				Error
		}
		payment := models.Payment{
			IDReservasi:     reservationId,
			TanggalBayar:    &now,
			Jumlah:          config.STANDARD_RENT,
			BuktiPembayaran: &proofPath,
			Status:          types.PAYMENT_PENDING,
			PeriodeBulan:    int(now.Month()),
			PeriodeTahun:    now.Year(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		paymentId = payment.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return paymentId, nil
}

// UpdatePaymentStatus is the admin verification step. Accepting a payment
// promotes its reservation back to Aktif/Lunas.
func UpdatePaymentStatus(paymentId uint, status types.PaymentStatus) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Where("id_pembayaran = ?", paymentId).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if err := tx.
			Model(&models.Payment{}).
			Where("id_pembayaran = ?", paymentId).
			Update("status", status).
			Error; err != nil {
			return err
		}
		if status == types.PAYMENT_ACCEPTED {
			return tx.
				Model(&models.Reservation{}).
				Where("id_reservasi = ?", payment.IDReservasi).
				Update("status", types.RESERVATION_ACTIVE).
				Error
		}
		return nil
	})
}

// MarkCheckout ends a tenancy: the reservation becomes terminal Keluar
// and its room is available again.
func MarkCheckout(reservationId uint, reason string) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.Where("id_reservasi = ?", reservationId).First(&reservation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if err := tx.
			Model(&models.Reservation{}).
			Where("id_reservasi = ?", reservationId).
			Updates(map[string]any{
				"status":     types.RESERVATION_CHECKEDOUT,
				"keterangan": reason,
			}).
			Error; err != nil {
			return err
		}
		return tx.
			Model(&models.Room{}).
			Where(&models.Room{NoKamar: reservation.NoKamar}).
			Update("ketersediaan", true).
			Error
	})
}
