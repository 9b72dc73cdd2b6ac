package models

import "kost/src/types"

// Applicant is a submitted rental application waiting for admin review.
// The row is deleted when the decision is made, never updated in place.
type Applicant struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	Nama            string     `json:"nama,omitempty"`
	NoTelp          string     `json:"no_telp,omitempty"`
	Alamat          string     `json:"alamat,omitempty"`
	Email           string     `gorm:"uniqueIndex" json:"email,omitempty"`
	Password        string     `json:"-"`
	NoKamar         string     `json:"no_kamar,omitempty"`
	BuktiPembayaran *string    `json:"bukti_pembayaran,omitempty"`
	Role            types.Role `gorm:"default:'penyewa'" json:"role,omitempty"`

	Room *Room `gorm:"foreignKey:no_kamar;references:no_kamar" json:"room,omitempty"`

	types.Timestamps
}

func (Applicant) TableName() string { return "tmp" }
