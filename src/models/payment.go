package models

import (
	"kost/src/types"
	"time"
)

// Payment is a single rent bill for one (reservation, month, year) period.
// BuktiPembayaran stays nil until the tenant uploads a transfer proof.
type Payment struct {
	ID              uint                `gorm:"primarykey;column:id_pembayaran" json:"id_pembayaran"`
	IDReservasi     uint                `gorm:"column:id_reservasi;uniqueIndex:idx_reservasi_periode" json:"id_reservasi,omitempty"`
	TanggalBayar    *time.Time          `json:"tanggal_bayar,omitempty"`
	Jumlah          float64             `json:"jumlah,omitempty"`
	BuktiPembayaran *string             `json:"bukti_pembayaran,omitempty"`
	Status          types.PaymentStatus `gorm:"default:'Belum Bayar'" json:"status,omitempty"`
	PeriodeBulan    int                 `gorm:"uniqueIndex:idx_reservasi_periode" json:"periode_bulan,omitempty"`
	PeriodeTahun    int                 `gorm:"uniqueIndex:idx_reservasi_periode" json:"periode_tahun,omitempty"`

	Reservation *Reservation `gorm:"foreignKey:id_reservasi" json:"reservation,omitempty"`

	types.Timestamps
}

func (Payment) TableName() string { return "pembayaran" }
