package lab

import "errors"

var (
	// ErrInvalidManifest is returned for manifests that fail validation.
	ErrInvalidManifest = errors.New("invalid lab manifest")
	// ErrDuplicateLab is returned when two manifests share a name.
	ErrDuplicateLab = errors.New("duplicate lab name")
	// ErrNoManifests is returned when a directory holds no manifests.
	ErrNoManifests = errors.New("no lab manifests found")
)
