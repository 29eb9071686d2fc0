package capabilities

import "context"

// Feature identifica una capacidad gated de la plataforma.
type Feature string

const (
	// FeatureHighTable habilita el feed social; requiere ser dueño de una mascota.
	FeatureHighTable Feature = "high_table"
)

// CapabilityCheck es la consulta: ¿userID tiene feature?
type CapabilityCheck struct {
	UserID  string
	Feature Feature
}

type CapabilitiesResolver interface {
	HasFeature(ctx context.Context, in CapabilityCheck) (bool, error)
}
