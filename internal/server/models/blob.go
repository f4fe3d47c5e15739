package models

import "time"

// VaultBlob is an opaque, client-encrypted document kept per user.
// The server stores Data as given and never interprets it.
type VaultBlob struct {
	UserID    string
	Data      string
	UpdatedAt time.Time
}
