package models

import "kost/src/types"

type User struct {
	ID       uint       `gorm:"primarykey" json:"id"`
	Nama     string     `json:"nama,omitempty"`
	NoTelp   string     `json:"no_telp,omitempty"`
	Alamat   string     `json:"alamat,omitempty"`
	Email    string     `gorm:"uniqueIndex" json:"email,omitempty"`
	Password string     `json:"-"`
	Role     types.Role `gorm:"default:'penyewa'" json:"role,omitempty"`

	Reservations []Reservation `gorm:"foreignKey:email;references:email" json:"reservations,omitempty"`

	types.Timestamps
}

func (User) TableName() string { return "user" }
