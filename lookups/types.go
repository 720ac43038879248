package lookups

// since there are no joins in MongoDB, text descriptions of code values are fetched by the API

// Registry of Lookup/Code Types
const (
	LTuserRole = iota
	LTlang
	LTgenre
	LTaudioQuality
	LTreleaseType
	LTvisibility
	LTtimeframe
)

// LookupType returns names of the available code types
func LookupType(lt int) string {

	var str = ""

	switch {
	case lt == LTuserRole:
		str = "user role"
	case lt == LTlang:
		str = "user language"
	case lt == LTgenre:
		str = "genre"
	case lt == LTaudioQuality:
		str = "audio quality"
	case lt == LTreleaseType:
		str = "release type"
	case lt == LTvisibility:
		str = "visibility"
	case lt == LTtimeframe:
		str = "timeframe"
	}

	return str
}
