package lookups

// Symbols of legal values (bit rates the player supports)
const (
	AudioQuality128k = iota
	AudioQuality320k
	AudioQualityLossless
)

// Genre codes are maintained in the system collection (see database/lookup.go);
// only the fallback used for unclassified uploads is fixed here.
const (
	GenreUnknown int32 = 0
)

// AudioQuality returns a "generic" string for a given value
func AudioQuality(value int32) string {

	var str = ""

	switch {
	case value == AudioQuality128k:
		str = "128k"
	case value == AudioQuality320k:
		str = "320k"
	case value == AudioQualityLossless:
		str = "lossless"
	}

	return str
}
