package model

import "time"

// Address 用户的配送地址
type Address struct {
	ID                   int       `json:"id"`
	UserID               int       `json:"user_id"`
	Label                string    `json:"label"`
	AddressLine1         string    `json:"address_line1"`
	AddressLine2         string    `json:"address_line2,omitempty"`
	City                 string    `json:"city"`
	State                string    `json:"state"`
	ZipCode              string    `json:"zip_code"`
	Country              string    `json:"country"`
	Latitude             *float64  `json:"latitude,omitempty"`
	Longitude            *float64  `json:"longitude,omitempty"`
	IsDefault            bool      `json:"is_default"`
	DeliveryInstructions string    `json:"delivery_instructions,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type CreateAddressRequest struct {
	Label                string   `json:"label" binding:"required,max=50"`
	AddressLine1         string   `json:"address_line1" binding:"required,max=255"`
	AddressLine2         string   `json:"address_line2" binding:"max=255"`
	City                 string   `json:"city" binding:"required,max=100"`
	State                string   `json:"state" binding:"required,max=100"`
	ZipCode              string   `json:"zip_code" binding:"required,max=20"`
	Country              string   `json:"country" binding:"required,max=100"`
	Latitude             *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude            *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	IsDefault            bool     `json:"is_default"`
	DeliveryInstructions string   `json:"delivery_instructions" binding:"max=500"`
}

// UpdateAddressRequest 只修改请求中出现的字段
type UpdateAddressRequest struct {
	Label                *string  `json:"label" binding:"omitempty,min=1,max=50"`
	AddressLine1         *string  `json:"address_line1" binding:"omitempty,min=1,max=255"`
	AddressLine2         *string  `json:"address_line2" binding:"omitempty,max=255"`
	City                 *string  `json:"city" binding:"omitempty,min=1,max=100"`
	State                *string  `json:"state" binding:"omitempty,min=1,max=100"`
	ZipCode              *string  `json:"zip_code" binding:"omitempty,min=1,max=20"`
	Country              *string  `json:"country" binding:"omitempty,min=1,max=100"`
	Latitude             *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude            *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	DeliveryInstructions *string  `json:"delivery_instructions" binding:"omitempty,max=500"`
}

func (r UpdateAddressRequest) Apply(a *Address) {
	if r.Label != nil {
		a.Label = *r.Label
	}
	if r.AddressLine1 != nil {
		a.AddressLine1 = *r.AddressLine1
	}
	if r.AddressLine2 != nil {
		a.AddressLine2 = *r.AddressLine2
	}
	if r.City != nil {
		a.City = *r.City
	}
	if r.State != nil {
		a.State = *r.State
	}
	if r.ZipCode != nil {
		a.ZipCode = *r.ZipCode
	}
	if r.Country != nil {
		a.Country = *r.Country
	}
	if r.Latitude != nil {
		a.Latitude = r.Latitude
	}
	if r.Longitude != nil {
		a.Longitude = r.Longitude
	}
	if r.DeliveryInstructions != nil {
		a.DeliveryInstructions = *r.DeliveryInstructions
	}
}
