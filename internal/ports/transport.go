package ports

import (
	"context"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
)

// SlotParamReader is the opaque hardware capability the reader is built on:
// one request fetches a single parameter for every listed channel of one
// slot. Implementations wrap the actual transport (OPC UA gateway, vendor
// wrapper, simulator).
type SlotParamReader interface {
	// GetChParam returns one value per requested channel, in request order.
	GetChParam(ctx context.Context, slot int, channels []int, param domain.ParameterKind) ([]float64, error)
	Close() error
}
