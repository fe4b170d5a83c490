package db

import "gorm.io/gorm"

// State 表示州，Code 为两位字母缩写
type State struct {
	gorm.Model
	Name   string  `gorm:"size:100;not null" json:"name"`
	Code   string  `gorm:"size:2;uniqueIndex;not null" json:"code"`
	Slug   string  `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Metros []Metro `json:"metros,omitempty"`
}

// Metro 表示州下的都市区
type Metro struct {
	gorm.Model
	Name    string `gorm:"size:120;not null" json:"name"`
	Slug    string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	StateID uint   `gorm:"index;not null" json:"stateId"`
	State   *State `json:"state,omitempty"`
}
