package lookups

// Symbols of legal values
const (
	ReleaseTypeSingle = iota
	ReleaseTypeAlbum
	ReleaseTypeDemo
	ReleaseTypeLive
)

// ReleaseType returns a "generic" string for a given value
func ReleaseType(value int32) string {

	var str = ""

	switch {
	case value == ReleaseTypeSingle:
		str = "single"
	case value == ReleaseTypeAlbum:
		str = "album"
	case value == ReleaseTypeDemo:
		str = "demo"
	case value == ReleaseTypeLive:
		str = "live"
	}

	return str
}
