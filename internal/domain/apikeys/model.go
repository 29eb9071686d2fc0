package apikeys

import "time"

// Key es un registro de API key de Coinbase (CDP) de un usuario.
// El secreto (PEM de la clave privada EC) se guarda sellado.
type Key struct {
	ID     string
	UserID string

	Name    string // etiqueta elegida por el usuario
	KeyName string // "organizations/{org}/apiKeys/{key}"

	EncryptedSecret []byte

	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// Credentials es lo que trading necesita para firmar requests.
type Credentials struct {
	KeyID         string
	KeyName       string
	PrivateKeyPEM string
}
