package models

import (
	"kost/src/types"
	"time"
)

type Reservation struct {
	ID               uint                    `gorm:"primarykey;column:id_reservasi" json:"id_reservasi"`
	NoKamar          string                  `gorm:"column:no_kamar" json:"no_kamar,omitempty"`
	Email            string                  `json:"email,omitempty"`
	TanggalReservasi time.Time               `json:"tanggal_reservasi,omitempty"`
	Status           types.ReservationStatus `gorm:"default:'Menunggu'" json:"status,omitempty"`
	Keterangan       string                  `json:"keterangan,omitempty"`

	// Display status recomputed from payment history on read paths.
	CalculatedStatus types.ReservationStatus `gorm:"-" json:"calculated_status,omitempty"`

	Room     *Room     `gorm:"foreignKey:no_kamar;references:no_kamar" json:"room,omitempty"`
	User     *User     `gorm:"foreignKey:email;references:email" json:"user,omitempty"`
	Payments []Payment `gorm:"foreignKey:id_reservasi" json:"payments,omitempty"`

	types.Timestamps
}

func (Reservation) TableName() string { return "reservasi" }
