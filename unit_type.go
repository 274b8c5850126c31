package vpcc

// UnitType identifies a top-level V-PCC unit. It is coded as u(5).
type UnitType uint8

// Unit types in the order they appear in a bitstream.
const (
	UnitSPS UnitType = iota // Sequence parameter set.
	UnitPSD                 // Patch sequence data.
	UnitOVD                 // Occupancy video data.
	UnitGVD                 // Geometry video data.
	UnitAVD                 // Attribute video data.
)

// UnitOrder is the fixed order of units in a bitstream.
var UnitOrder = [...]UnitType{UnitSPS, UnitPSD, UnitOVD, UnitGVD, UnitAVD}

// String returns the human-readable string representation of a UnitType.
func (ut UnitType) String() string {
	switch ut {
	case UnitSPS:
		return "SPS"
	case UnitPSD:
		return "PSD"
	case UnitOVD:
		return "OVD"
	case UnitGVD:
		return "GVD"
	case UnitAVD:
		return "AVD"
	}
	return "UNKNOWN"
}

// IsVideo returns true for units whose payload is an opaque video stream.
func (ut UnitType) IsVideo() bool {
	return ut == UnitOVD || ut == UnitGVD || ut == UnitAVD
}
