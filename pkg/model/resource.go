package model

import (
	"slices"
	"time"
)

type Resource struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Capacity    int       `json:"capacity"`
	Equipment   []string  `json:"equipment"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}

type ResourceInput struct {
	DisplayName string   `json:"display_name" validate:"required,min=1,max=100"`
	Capacity    int      `json:"capacity" validate:"required,min=1"`
	Equipment   []string `json:"equipment" validate:"omitempty,max=50,dive,required,max=50"`
	Location    string   `json:"location" validate:"omitempty,max=200"`
}

// HasEquipment reports whether every tag in required is present on the resource.
func (r *Resource) HasEquipment(required []string) bool {
	for _, tag := range required {
		if !slices.Contains(r.Equipment, tag) {
			return false
		}
	}
	return true
}

func (r *Resource) Clone() *Resource {
	c := *r
	c.Equipment = slices.Clone(r.Equipment)
	return &c
}
