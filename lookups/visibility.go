package lookups

// Symbols of legal values
const (
	VisibilityPublic = iota
	VisibilityUnlisted
	VisibilityPrivate
)

// Visibility returns a "generic" string for a given value
func Visibility(value int32) string {

	var str = ""

	switch {
	case value == VisibilityPublic:
		str = "public"
	case value == VisibilityUnlisted:
		str = "unlisted"
	case value == VisibilityPrivate:
		str = "private"
	}

	return str
}
