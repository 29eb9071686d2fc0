package friends

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusRemoved  Status = "removed"
)

type Request struct {
	ID string

	RequesterUserID string // quien envía
	AddresseeUserID string // quien responde

	Status Status

	CreatedAt   time.Time
	UpdatedAt   time.Time
	RespondedAt *time.Time
}

// Involves indica si userID es una de las dos partes.
func (r Request) Involves(userID string) bool {
	return r.RequesterUserID == userID || r.AddresseeUserID == userID
}

// Other devuelve la contraparte de userID.
func (r Request) Other(userID string) string {
	if r.RequesterUserID == userID {
		return r.AddresseeUserID
	}
	return r.RequesterUserID
}

// Friend es la vista de una amistad aceptada desde un usuario.
type Friend struct {
	UserID    string
	RequestID string
	Since     time.Time
}
