package maps

import (
	"context"

	"github.com/pantrypal/pantrypal-api/types"
)

// Locator resolves the device's current position.
// Implementations surface PERMISSION_DENIED when the user has refused
// location access and NO_LOCATION when a fix cannot be acquired
type Locator interface {
	CurrentLocation(ctx context.Context) (types.GeoCoordinates, error)
}

// FixedLocator is a Locator that reports a fixed position,
// used in development and in tests
type FixedLocator struct {
	Coordinates      types.GeoCoordinates
	PermissionDenied bool
}

// CurrentLocation returns the configured position
func (l FixedLocator) CurrentLocation(ctx context.Context) (types.GeoCoordinates, error) {
	if l.PermissionDenied {
		return types.GeoCoordinates{}, NewLocationError(CodePermissionDenied,
			"location permission was not granted")
	}

	if l.Coordinates.IsZero() {
		return types.GeoCoordinates{}, NewLocationError(CodeNoLocation,
			"could not acquire a location fix")
	}

	return l.Coordinates, nil
}
