package vpcc

// VideoType identifies one of the opaque video sub-streams carried by the
// video units.
type VideoType uint8

// Video sub-stream types.
const (
	VideoOccupancy VideoType = iota
	VideoGeometry
	VideoGeometryD0
	VideoGeometryD1
	VideoGeometryMissedPoints
	VideoTexture
	VideoTextureMissedPoints
	VideoTypeCount
)

// String returns the human-readable string representation of a VideoType.
func (vt VideoType) String() string {
	switch vt {
	case VideoOccupancy:
		return "OCCUPANCY"
	case VideoGeometry:
		return "GEOMETRY"
	case VideoGeometryD0:
		return "GEOMETRY_D0"
	case VideoGeometryD1:
		return "GEOMETRY_D1"
	case VideoGeometryMissedPoints:
		return "GEOMETRY_MP"
	case VideoTexture:
		return "TEXTURE"
	case VideoTextureMissedPoints:
		return "TEXTURE_MP"
	}
	return "UNKNOWN"
}

// Unit returns the unit type that carries the sub-stream.
func (vt VideoType) Unit() UnitType {
	switch vt {
	case VideoOccupancy:
		return UnitOVD
	case VideoTexture, VideoTextureMissedPoints:
		return UnitAVD
	}
	return UnitGVD
}
