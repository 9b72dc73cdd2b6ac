package utils

import (
	"errors"
	"kost/src/db"
	"kost/src/models"
	"kost/src/types"
	"log"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	sqldb, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqldb,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	db.NewDB(gormDB)
	return gormDB, mock
}

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("rahasia123")
	assert.Nil(t, err)
	assert.NotEqual(t, "rahasia123", hashed)
	assert.True(t, CheckPassword(hashed, "rahasia123"))
	assert.False(t, CheckPassword(hashed, "salah123"))
}

func TestGenerateOpaqueToken(t *testing.T) {
	first, err := GenerateOpaqueToken()
	assert.Nil(t, err)
	assert.Len(t, first, 64)

	second, err := GenerateOpaqueToken()
	assert.Nil(t, err)
	assert.NotEqual(t, first, second)
}

func TestDeriveReservationStatus(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.Local)
	lastMonth := now.AddDate(0, -1, 0)

	accepted := func(paidAt time.Time) models.Payment {
		p := models.Payment{Status: types.PAYMENT_ACCEPTED, TanggalBayar: &paidAt}
		return p
	}

	t.Run("terminal statuses pass through untouched", func(t *testing.T) {
		for _, status := range []types.ReservationStatus{
			types.RESERVATION_CHECKEDOUT,
			types.RESERVATION_REJECTED,
			types.RESERVATION_PENDING,
		} {
			r := models.Reservation{Status: status}
			got := DeriveReservationStatus(&r, []models.Payment{accepted(now)}, now)
			assert.Equal(t, status, got)
		}
	})

	t.Run("no payments means late", func(t *testing.T) {
		r := models.Reservation{Status: types.RESERVATION_ACTIVE}
		got := DeriveReservationStatus(&r, nil, now)
		assert.Equal(t, types.RESERVATION_LATE, got)
	})

	t.Run("accepted payment in current month means active", func(t *testing.T) {
		r := models.Reservation{Status: types.RESERVATION_LATE}
		got := DeriveReservationStatus(&r, []models.Payment{accepted(now)}, now)
		assert.Equal(t, types.RESERVATION_ACTIVE, got)
	})

	t.Run("accepted payment from last month means late", func(t *testing.T) {
		r := models.Reservation{Status: types.RESERVATION_ACTIVE}
		got := DeriveReservationStatus(&r, []models.Payment{accepted(lastMonth)}, now)
		assert.Equal(t, types.RESERVATION_LATE, got)
	})

	t.Run("pending payment in current month means late", func(t *testing.T) {
		r := models.Reservation{Status: types.RESERVATION_ACTIVE}
		p := models.Payment{Status: types.PAYMENT_PENDING, TanggalBayar: &now}
		got := DeriveReservationStatus(&r, []models.Payment{p}, now)
		assert.Equal(t, types.RESERVATION_LATE, got)
	})

	t.Run("falls back to created_at when payment date is empty", func(t *testing.T) {
		r := models.Reservation{Status: types.RESERVATION_LATE}
		p := models.Payment{Status: types.PAYMENT_ACCEPTED}
		p.CreatedAt = now
		got := DeriveReservationStatus(&r, []models.Payment{p}, now)
		assert.Equal(t, types.RESERVATION_ACTIVE, got)
	})
}

func TestGenerateMonthlyPaymentsRejectsBadMonth(t *testing.T) {
	generated, genErrors, err := GenerateMonthlyPayments(13, 2026)
	assert.NotNil(t, err)
	assert.Equal(t, 0, generated)
	assert.Nil(t, genErrors)
}

func TestGenerateMonthlyPaymentsSkipsExistingPeriod(t *testing.T) {
	_, mock := newMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "reservasi"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_reservasi", "no_kamar", "email", "status"}).
			AddRow(1, "A1", "tenant@example.com", "Aktif/Lunas"))
	mock.ExpectQuery(`SELECT (.+) FROM "user"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nama", "email", "role"}).
			AddRow(1, "Tenant", "tenant@example.com", "penyewa"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	generated, genErrors, err := GenerateMonthlyPayments(3, 2026)
	assert.Nil(t, err)
	assert.Equal(t, 0, generated)
	assert.Len(t, genErrors, 0)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestGenerateMonthlyPaymentsCreatesMissingPeriod(t *testing.T) {
	_, mock := newMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "reservasi"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_reservasi", "no_kamar", "email", "status"}).
			AddRow(1, "A1", "tenant@example.com", "Aktif/Lunas"))
	mock.ExpectQuery(`SELECT (.+) FROM "user"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nama", "email", "role"}).
			AddRow(1, "Tenant", "tenant@example.com", "penyewa"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_pembayaran"}).AddRow(10))
	mock.ExpectCommit()

	generated, genErrors, err := GenerateMonthlyPayments(3, 2026)
	assert.Nil(t, err)
	assert.Equal(t, 1, generated)
	assert.Len(t, genErrors, 0)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestGenerateMonthlyPaymentsIsolatesTenantErrors(t *testing.T) {
	_, mock := newMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "reservasi"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_reservasi", "no_kamar", "email", "status"}).
			AddRow(1, "A1", "first@example.com", "Aktif/Lunas").
			AddRow(2, "A2", "second@example.com", "Aktif/Lunas"))
	mock.ExpectQuery(`SELECT (.+) FROM "user"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nama", "email", "role"}).
			AddRow(1, "First", "first@example.com", "penyewa").
			AddRow(2, "Second", "second@example.com", "penyewa"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "pembayaran"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_pembayaran"}).AddRow(11))
	mock.ExpectCommit()

	generated, genErrors, err := GenerateMonthlyPayments(3, 2026)
	assert.Nil(t, err)
	assert.Equal(t, 1, generated)
	assert.Len(t, genErrors, 1)
	assert.Equal(t, "first@example.com", genErrors[0].UserEmail)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestApproveApplicantNotFound(t *testing.T) {
	_, mock := newMockDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "tmp"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	result, err := ApproveApplicant(99)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrApplicantNotFound))
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestApproveApplicantCreatesTenancy(t *testing.T) {
	_, mock := newMockDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "tmp"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nama", "no_telp", "alamat", "email", "password", "no_kamar", "bukti_pembayaran", "role"}).
			AddRow(4, "Budi", "0812", "Jl. Merdeka 1", "budi@example.com", "$2a$10$hash", "A1", "uploads/bukti-pembayaran/budi.jpg", "penyewa"))
	mock.ExpectQuery(`INSERT INTO "user"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`INSERT INTO "reservasi"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_reservasi"}).AddRow(12))
	mock.ExpectQuery(`INSERT INTO "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_pembayaran"}).AddRow(30))
	mock.ExpectQuery(`INSERT INTO "user_tokens"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("3f1f8a1e-5a44-4bbf-9d87-2f2f6b9ad001"))
	mock.ExpectExec(`UPDATE "kamar"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "tmp"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := ApproveApplicant(4)
	assert.Nil(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, uint(12), result.ReservationID)
	assert.Equal(t, "budi@example.com", result.Email)
	assert.Len(t, result.Token, 64)
	assert.Equal(t, string(types.RESERVATION_ACTIVE), result.Status)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestApproveApplicantRollsBackOnDuplicateUser(t *testing.T) {
	_, mock := newMockDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "tmp"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nama", "email", "password", "no_kamar", "role"}).
			AddRow(4, "Budi", "budi@example.com", "$2a$10$hash", "A1", "penyewa"))
	mock.ExpectQuery(`INSERT INTO "user"`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_user_email" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	result, err := ApproveApplicant(4)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrUserExists))
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestRejectApplicantDeletesApplication(t *testing.T) {
	_, mock := newMockDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "tmp"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(4, "budi@example.com"))
	mock.ExpectExec(`DELETE FROM "tmp"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := RejectApplicant(4)
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReconcilePromotesPaidReservation(t *testing.T) {
	_, mock := newMockDB()
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM "reservasi"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_reservasi", "no_kamar", "email", "status"}).
			AddRow(7, "B2", "tenant@example.com", "Telat/Belum Bayar"))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_pembayaran", "id_reservasi", "tanggal_bayar", "status", "created_at"}).
			AddRow(21, 7, now, "Diterima", now))
	mock.ExpectExec(`UPDATE "reservasi"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := ReconcileReservationStatuses()
	assert.Nil(t, err)
	assert.Equal(t, 1, updated)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReconcileMarksLateWithoutPayments(t *testing.T) {
	_, mock := newMockDB()

	mock.ExpectQuery(`SELECT (.+) FROM "reservasi"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_reservasi", "no_kamar", "email", "status"}).
			AddRow(8, "B3", "tenant@example.com", "Aktif/Lunas"))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_pembayaran"}))
	mock.ExpectExec(`UPDATE "reservasi"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := ReconcileReservationStatuses()
	assert.Nil(t, err)
	assert.Equal(t, 1, updated)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReconcileLeavesPaidReservationAlone(t *testing.T) {
	_, mock := newMockDB()
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM "reservasi"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_reservasi", "no_kamar", "email", "status"}).
			AddRow(9, "B4", "tenant@example.com", "Aktif/Lunas"))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_pembayaran", "id_reservasi", "tanggal_bayar", "status", "created_at"}).
			AddRow(22, 9, now, "Diterima", now))
	mock.ExpectCommit()

	updated, err := ReconcileReservationStatuses()
	assert.Nil(t, err)
	assert.Equal(t, 0, updated)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReconcileMarksLateAndInsertsPlaceholderPastDeadline(t *testing.T) {
	d, mock := newMockDB()
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local)
	stale := now.AddDate(0, -1, 0)

	reservation := models.Reservation{
		ID:      7,
		NoKamar: "B2",
		Email:   "tenant@example.com",
		Status:  types.RESERVATION_ACTIVE,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_pembayaran", "id_reservasi", "tanggal_bayar", "status", "created_at"}).
			AddRow(21, 7, stale, "Diterima", stale))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_pembayaran"}).AddRow(40))
	mock.ExpectExec(`UPDATE "reservasi"`).
		WithArgs(string(types.RESERVATION_LATE), sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	changed, err := reconcileReservation(d, reservation, now)
	assert.Nil(t, err)
	assert.True(t, changed)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestReconcileSkipsPlaceholderWhenPeriodRowExists(t *testing.T) {
	d, mock := newMockDB()
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local)
	stale := now.AddDate(0, -1, 0)

	reservation := models.Reservation{
		ID:     7,
		Email:  "tenant@example.com",
		Status: types.RESERVATION_LATE,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_pembayaran", "id_reservasi", "tanggal_bayar", "status", "created_at"}).
			AddRow(21, 7, stale, "Diterima", stale))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	changed, err := reconcileReservation(d, reservation, now)
	assert.Nil(t, err)
	assert.False(t, changed)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestGenerateMonthlyPaymentsQueriesOnlyActiveRenters(t *testing.T) {
	_, mock := newMockDB()

	// Keluar, Ditolak and Menunggu reservations must never be billed, so
	// the lookup itself filters on role and active status.
	mock.ExpectQuery(`SELECT (.+) FROM "reservasi" JOIN "user"`).
		WithArgs(string(types.ROLE_RENTER), string(types.RESERVATION_ACTIVE)).
		WillReturnRows(sqlmock.NewRows([]string{"id_reservasi", "no_kamar", "email", "status"}))

	generated, genErrors, err := GenerateMonthlyPayments(3, 2026)
	assert.Nil(t, err)
	assert.Equal(t, 0, generated)
	assert.Len(t, genErrors, 0)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestSubmitPaymentProofReusesOpenPeriod(t *testing.T) {
	_, mock := newMockDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_pembayaran", "id_reservasi", "status"}).
			AddRow(5, 3, "Belum Bayar"))
	mock.ExpectExec(`UPDATE "pembayaran"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	paymentId, err := SubmitPaymentProof(3, "uploads/bukti-pembayaran/tenant.jpg")
	assert.Nil(t, err)
	assert.Equal(t, uint(5), paymentId)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestSubmitPaymentProofCreatesNewPayment(t *testing.T) {
	_, mock := newMockDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_pembayaran"}))
	mock.ExpectQuery(`INSERT INTO "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_pembayaran"}).AddRow(6))
	mock.ExpectCommit()

	paymentId, err := SubmitPaymentProof(3, "uploads/bukti-pembayaran/tenant.jpg")
	assert.Nil(t, err)
	assert.Equal(t, uint(6), paymentId)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatusAcceptedPromotesReservation(t *testing.T) {
	_, mock := newMockDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_pembayaran", "id_reservasi", "status"}).
			AddRow(3, 9, "Menunggu"))
	mock.ExpectExec(`UPDATE "pembayaran"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "reservasi"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := UpdatePaymentStatus(3, types.PAYMENT_ACCEPTED)
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatusRejectedLeavesReservation(t *testing.T) {
	_, mock := newMockDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "pembayaran"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_pembayaran", "id_reservasi", "status"}).
			AddRow(3, 9, "Menunggu"))
	mock.ExpectExec(`UPDATE "pembayaran"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := UpdatePaymentStatus(3, types.PAYMENT_REJECTED)
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestMarkCheckoutFreesRoom(t *testing.T) {
	_, mock := newMockDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "reservasi"`).
		WillReturnRows(sqlmock.NewRows([]string{"id_reservasi", "no_kamar", "email", "status"}).
			AddRow(2, "A1", "tenant@example.com", "Aktif/Lunas"))
	mock.ExpectExec(`UPDATE "reservasi"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "kamar"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := MarkCheckout(2, "pindah kota")
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}
