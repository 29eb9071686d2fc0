package siteconfig

import "time"

// Entry es un par clave/valor editable por admins (banners, textos, flags de UI).
type Entry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
