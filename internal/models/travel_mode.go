package models

// TravelMode is the movement classification assigned to a trip
type TravelMode string

// TravelMode constants
const (
	ModeWalk    TravelMode = "WALK"
	ModeCar     TravelMode = "CAR"
	ModeUnknown TravelMode = "UNKNOWN"
)

// ParseTravelMode maps a stored value back to a TravelMode, defaulting to UNKNOWN
func ParseTravelMode(s string) TravelMode {
	switch TravelMode(s) {
	case ModeWalk:
		return ModeWalk
	case ModeCar:
		return ModeCar
	default:
		return ModeUnknown
	}
}
