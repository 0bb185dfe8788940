package envelope

import "fmt"

// KnownValue is a reserved, globally-registered predicate marker.
//
// Known values are the only wire-format constants the interchange core
// defines; all other structure is schema-driven. The registry is read-only
// after package initialization.
type KnownValue uint64

const (
	// KnownIsA tags an envelope with its entity type identity.
	KnownIsA KnownValue = 1

	// KnownContent holds obscured (compressed) content inside a container.
	KnownContent KnownValue = 20

	// KnownAttachment marks a vendor-data attachment assertion.
	KnownAttachment KnownValue = 50

	// KnownVendor identifies the producer of attached data.
	KnownVendor KnownValue = 51

	// KnownConformsTo locates a format description for attached data.
	KnownConformsTo KnownValue = 52
)

var knownValueNames = map[KnownValue]string{
	KnownIsA:        "isA",
	KnownContent:    "content",
	KnownAttachment: "attachment",
	KnownVendor:     "vendor",
	KnownConformsTo: "conformsTo",
}

// Name returns the registered name for a known value, or a numeric form for
// values outside the registry.
func (k KnownValue) Name() string {
	if n, ok := knownValueNames[k]; ok {
		return n
	}
	return fmt.Sprintf("known(%d)", uint64(k))
}
