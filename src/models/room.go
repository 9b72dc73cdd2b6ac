package models

import "kost/src/types"

type Room struct {
	NoKamar      string  `gorm:"primarykey;column:no_kamar" json:"no_kamar"`
	NamaKamar    string  `json:"nama_kamar,omitempty"`
	Letak        string  `json:"letak,omitempty"`
	Harga        float64 `json:"harga,omitempty"`
	Ketersediaan bool    `gorm:"default:true" json:"ketersediaan"`

	types.Timestamps
}

func (Room) TableName() string { return "kamar" }
