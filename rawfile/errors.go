package rawfile

import "errors"

var (
	// ErrUnsupportedFormat indicates the reference extension is not CR2, ARW or NEF.
	ErrUnsupportedFormat = errors.New("rawfile: unsupported format")

	// ErrMarkerNotFound indicates an expected structural marker is absent.
	ErrMarkerNotFound = errors.New("rawfile: marker not found")

	// ErrHeaderTooShort indicates a CR2 reference header ends before the
	// neutralized field.
	ErrHeaderTooShort = errors.New("rawfile: header too short")

	// ErrNotTIFF indicates a buffer has no TIFF header.
	ErrNotTIFF = errors.New("rawfile: not a TIFF container")
)
