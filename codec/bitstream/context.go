package bitstream

import (
	"slices"

	"github.com/ugparu/vpcc"
)

// Context is the decoded form of one V-PCC sequence: the unit header
// parameters, the sequence parameter set, the patch sequence and the
// compressed video sub-streams.
type Context struct {
	Unit  UnitParams
	SPS   SequenceParameterSet
	Video [vpcc.VideoTypeCount][]byte

	PatchSequenceParameterSets  map[uint32]PatchSequenceParameterSet
	GeometryFrameParameterSets  map[uint32]GeometryFrameParameterSet
	AttributeFrameParameterSets map[uint32]AttributeFrameParameterSet
	GeometryPatchParameterSets  map[uint32]GeometryPatchParameterSet
	AttributePatchParameterSets map[uint32]AttributePatchParameterSet
	PatchFrameParameterSets     map[uint32]PatchFrameParameterSet

	Frames []PatchFrame
}

// NewContext returns a Context with empty parameter set arenas.
func NewContext() *Context {
	return &Context{
		PatchSequenceParameterSets:  map[uint32]PatchSequenceParameterSet{},
		GeometryFrameParameterSets:  map[uint32]GeometryFrameParameterSet{},
		AttributeFrameParameterSets: map[uint32]AttributeFrameParameterSet{},
		GeometryPatchParameterSets:  map[uint32]GeometryPatchParameterSet{},
		AttributePatchParameterSets: map[uint32]AttributePatchParameterSet{},
		PatchFrameParameterSets:     map[uint32]PatchFrameParameterSet{},
	}
}

// UnitParams carries the per-unit header fields that are not derived from
// the sequence parameter set.
type UnitParams struct {
	AttributeIndex uint8
	LayerIndex     uint8
	PCMVideoFlag   bool
}

// ProfileTierLevel is the profile_tier_level structure. The reserved bits
// between profile and level are always zero.
type ProfileTierLevel struct {
	TierFlag   bool
	ProfileIDC uint8
	LevelIDC   uint8
}

// LayerParameters describes geometry layer i >= 1.
type LayerParameters struct {
	AbsoluteCodingEnabled bool
	// PredictorIndexDiff is only coded for predicted layers i > 1.
	PredictorIndexDiff uint32
}

type OccupancyParameterSet struct {
	CodecID          uint8
	PackingBlockSize uint8
}

type GeometrySmoothing struct {
	Radius                uint8
	NeighbourCount        uint8
	Radius2BoundaryDetect uint8
	Threshold             uint8
}

// GeometryMetadata holds the geometry metadata categories. Each category is
// coded only when present.
type GeometryMetadata struct {
	Smoothing  Override[GeometrySmoothing]
	Scale      Override[[3]uint32]
	Offset     Override[[3]int32]
	Rotation   Override[[3]int32]
	PointSize  Override[uint8]
	PointShape Override[uint8]
}

// GeometryPatchFlags enables the geometry patch metadata categories.
type GeometryPatchFlags struct {
	Scale      bool
	Offset     bool
	Rotation   bool
	PointSize  bool
	PointShape bool
}

func (f GeometryPatchFlags) Any() bool {
	return f.Scale || f.Offset || f.Rotation || f.PointSize || f.PointShape
}

type GeometryParameterSet struct {
	CodecID uint8
	// CoordinatesBitDepth is in 1..32.
	CoordinatesBitDepth uint8
	// PCMCodecID is coded only with separate PCM video.
	PCMCodecID           uint8
	MetadataEnabled      bool
	Metadata             GeometryMetadata
	PatchMetadataEnabled bool
	PatchMetadata        GeometryPatchFlags
}

type AttributeSmoothing struct {
	Radius                uint8
	NeighbourCount        uint8
	Radius2BoundaryDetect uint8
	Threshold             uint8
	ThresholdLocalEntropy uint8
}

// AttributeMetadata holds the attribute metadata categories. Scale and
// Offset carry one value per attribute dimension.
type AttributeMetadata struct {
	Smoothing Override[AttributeSmoothing]
	Scale     Override[[]uint32]
	Offset    Override[[]int32]
}

type AttributePatchFlags struct {
	Scale  bool
	Offset bool
}

func (f AttributePatchFlags) Any() bool {
	return f.Scale || f.Offset
}

type AttributeParameterSet struct {
	TypeID          uint8
	DimensionMinus1 uint8
	CodecID         uint8
	PCMCodecID      uint8

	MetadataEnabled      bool
	Metadata             AttributeMetadata
	PatchMetadataEnabled bool
	PatchMetadata        AttributePatchFlags
}

// Dimension returns the number of components of the attribute.
func (a AttributeParameterSet) Dimension() int {
	return int(a.DimensionMinus1) + 1
}

// SequenceParameterSet is the root of the override hierarchy.
type SequenceParameterSet struct {
	ProfileTierLevel ProfileTierLevel

	ID     uint8
	Width  uint16
	Height uint16

	EnhancedDepthCodeEnabled bool
	// LayerCount is in 1..16.
	LayerCount                  uint8
	MultipleLayerStreamsPresent bool
	// Layers describes layers 1..LayerCount-1.
	Layers []LayerParameters

	PCMPatchEnabled         bool
	PCMSeparateVideoPresent bool

	Occupancy  OccupancyParameterSet
	Geometry   GeometryParameterSet
	Attributes []AttributeParameterSet

	PatchInterPredictionEnabled     bool
	PixelDeinterleavingEnabled      bool
	PointLocalReconstructionEnabled bool
	PatchOrientationEnabled         bool
}

// AttributeCount returns the number of attribute parameter sets.
func (s *SequenceParameterSet) AttributeCount() int {
	return len(s.Attributes)
}

// AbsoluteD1 reports whether the second layer is coded independently, in
// which case geometry is carried as a single stream rather than D0 and D1.
func (s *SequenceParameterSet) AbsoluteD1() bool {
	return len(s.Layers) > 0 && s.Layers[0].AbsoluteCodingEnabled
}

// AnyAbsoluteLayer reports whether any layer >= 1 is absolute coded.
func (s *SequenceParameterSet) AnyAbsoluteLayer() bool {
	return slices.ContainsFunc(s.Layers, func(l LayerParameters) bool { return l.AbsoluteCodingEnabled })
}

// RefEntry is one reference of a reference list. Short-term entries carry a
// POC delta, long-term entries the POC LSB.
type RefEntry struct {
	ShortTerm   bool
	DeltaPOC    int32
	LongTermLSB uint32
}

type RefListStruct struct {
	Entries []RefEntry
}

// LongTermCount returns the number of long-term entries.
func (l RefListStruct) LongTermCount() int {
	n := 0
	for _, e := range l.Entries {
		if !e.ShortTerm {
			n++
		}
	}
	return n
}

type PatchSequenceParameterSet struct {
	ID uint32
	// Log2MaxPatchFrameOrderCntLSBMinus4 is in 0..28.
	Log2MaxPatchFrameOrderCntLSBMinus4 uint32
	MaxDecPatchFrameBufferingMinus1    uint32
	LongTermRefPatchFramesEnabled      bool
	RefLists                           []RefListStruct
}

// OrderCntLSBBits returns the width of patch frame order count LSBs.
func (p PatchSequenceParameterSet) OrderCntLSBBits() int {
	return int(p.Log2MaxPatchFrameOrderCntLSBMinus4) + 4 //nolint:mnd,gosec // bounded by validation
}

type GeometryFrameParameterSet struct {
	ID                          uint32
	PatchSequenceParameterSetID uint32
	Metadata                    Override[GeometryMetadata]
	PatchMetadata               Override[GeometryPatchFlags]
}

type AttributeFrameParameterSet struct {
	ID                          uint32
	PatchSequenceParameterSetID uint32
	AttributeIndex              uint8
	Metadata                    Override[AttributeMetadata]
	PatchMetadata               Override[AttributePatchFlags]
}

type GeometryPatchMetadata struct {
	Scale      Override[[3]uint32]
	Offset     Override[[3]int32]
	Rotation   Override[[3]int32]
	PointSize  Override[uint16]
	PointShape Override[uint8]
}

type GeometryPatchParameterSet struct {
	ID                          uint32
	GeometryFrameParameterSetID uint32
	Metadata                    Override[GeometryPatchMetadata]
}

type AttributePatchMetadata struct {
	Scale  Override[[]uint32]
	Offset Override[[]int32]
}

type AttributePatchParameterSet struct {
	ID                           uint32
	AttributeFrameParameterSetID uint32
	Metadata                     Override[AttributePatchMetadata]
}

type PatchFrameParameterSet struct {
	ID                          uint32
	PatchSequenceParameterSetID uint32
	LocalOverrideGeometryPatch  bool
	// LocalOverrideAttributePatch has one entry per attribute.
	LocalOverrideAttributePatch []bool
	// AdditionalLtPfocLSBLen is in 0..32.
	AdditionalLtPfocLSBLen  uint32
	PatchOrientationPresent bool
}

type FrameType uint8

const (
	FrameI FrameType = iota
	FrameP
)

func (t FrameType) String() string {
	switch t {
	case FrameI:
		return "I"
	case FrameP:
		return "P"
	}
	return "UNKNOWN"
}

// BitCount indexes the per-frame bit-count table.
type BitCount int

const (
	BitCountShiftU BitCount = iota
	BitCountShiftV
	BitCountTangent
	BitCountBitangent
	BitCountNormal
	BitCountLOD
	BitCountTableSize
)

// PatchFrameHeader is the patch_frame_header structure. The first five
// BitCounts entries are coded minus one, the LOD entry as is.
type PatchFrameHeader struct {
	PatchFrameParameterSetID uint32
	Address                  uint32
	Type                     FrameType
	OrderCntLSB              uint32

	UseSPSRefList bool
	RefListIndex  uint32
	RefList       RefListStruct
	// AdditionalPOCLSB has one entry per long-term entry of the active list.
	AdditionalPOCLSB []Override[uint32]

	NumRefIdxActiveMinus1 Override[uint32]
	BitCounts             [BitCountTableSize]Override[uint8]
}

// PatchMode is the coding mode of a patch. Its numeric value is not the
// coded value, which depends on the frame type.
type PatchMode uint8

const (
	PatchSkip PatchMode = iota
	PatchIntra
	PatchDelta
	PatchPCM
)

func (m PatchMode) String() string {
	switch m {
	case PatchSkip:
		return "SKIP"
	case PatchIntra:
		return "INTRA"
	case PatchDelta:
		return "DELTA"
	case PatchPCM:
		return "PCM"
	}
	return "UNKNOWN"
}

// Patch is one patch record of a patch frame: SkipPatch, IntraPatch,
// DeltaPatch or PCMPatch.
type Patch interface {
	Mode() PatchMode
}

// SkipPatch repeats the patch with the same index in the previous frame.
type SkipPatch struct{}

func (SkipPatch) Mode() PatchMode { return PatchSkip }

type IntraPatch struct {
	GeometryPatchParameterSetID Override[uint32]
	// AttributePatchParameterSetIDs is empty or has one entry per attribute.
	AttributePatchParameterSetIDs []Override[uint32]

	Shift2DU         uint32
	Shift2DV         uint32
	DeltaSize2DU     int32
	DeltaSize2DV     int32
	Shift3DTangent   uint32
	Shift3DBitangent uint32
	Shift3DNormal    uint32
	NormalAxis       uint8
	ProjectionMode   bool
	Orientation      uint8
	LOD              uint32
}

func (IntraPatch) Mode() PatchMode { return PatchIntra }

// DeltaPatch codes a patch relative to patch ReferenceIndex of the
// previous frame.
type DeltaPatch struct {
	ReferenceIndex        uint32
	DeltaShift2DU         int32
	DeltaShift2DV         int32
	DeltaSize2DU          int32
	DeltaSize2DV          int32
	DeltaShift3DTangent   int32
	DeltaShift3DBitangent int32
	DeltaShift3DNormal    int32
}

func (DeltaPatch) Mode() PatchMode { return PatchDelta }

type PCMPatch struct {
	InSeparateVideo bool
	Shift2DU        uint32
	Shift2DV        uint32
	Size2DU         uint32
	Size2DV         uint32
	PointCount      uint32
}

func (PCMPatch) Mode() PatchMode { return PatchPCM }

// PLRBlock is one point local reconstruction entry.
type PLRBlock struct {
	Interpolate        bool
	NeighbourMinus1    uint32
	MinimumDepthMinus1 uint32
	Filling            bool
}

type PatchFrame struct {
	Header  PatchFrameHeader
	Patches []Patch
	// PointLocalReconstruction is coded only when enabled by the SPS.
	PointLocalReconstruction []PLRBlock
}
