package bitstream

import "github.com/ugparu/vpcc"

// iFrameBitCounts builds a full I frame bit-count table.
func iFrameBitCounts(shiftU, shiftV, tangent, bitangent, normal, lod uint8) [BitCountTableSize]Override[uint8] {
	return [BitCountTableSize]Override[uint8]{
		Overridden(shiftU), Overridden(shiftV), Overridden(tangent),
		Overridden(bitangent), Overridden(normal), Overridden(lod),
	}
}

// newMinimalContext returns a single layer sequence without attributes and
// one I frame without patches.
func newMinimalContext() *Context {
	ctx := NewContext()
	ctx.SPS = SequenceParameterSet{
		ProfileTierLevel: ProfileTierLevel{TierFlag: true, ProfileIDC: 1, LevelIDC: 30},
		ID:               1,
		Width:            64,
		Height:           64,
		LayerCount:       1,
		Occupancy:        OccupancyParameterSet{CodecID: 1, PackingBlockSize: 16},
		Geometry:         GeometryParameterSet{CodecID: 1, CoordinatesBitDepth: 8},
	}
	ctx.PatchSequenceParameterSets[0] = PatchSequenceParameterSet{}
	ctx.PatchFrameParameterSets[0] = PatchFrameParameterSet{}
	ctx.Frames = []PatchFrame{{Header: PatchFrameHeader{Type: FrameI, BitCounts: iFrameBitCounts(7, 7, 7, 7, 7, 0)}}}
	ctx.Video[vpcc.VideoOccupancy] = []byte{0x01, 0x02}
	ctx.Video[vpcc.VideoGeometry] = []byte{0x03}
	return ctx
}

// newTestContext returns a sequence that exercises most optional syntax:
// four layers, separate PCM video, one three component attribute, every
// parameter set type, an I frame and a P frame.
func newTestContext() *Context {
	ctx := NewContext()
	ctx.Unit = UnitParams{PCMVideoFlag: true}
	ctx.SPS = SequenceParameterSet{
		ProfileTierLevel:            ProfileTierLevel{TierFlag: true, ProfileIDC: 1, LevelIDC: 60},
		ID:                          3,
		Width:                       1280,
		Height:                      720,
		EnhancedDepthCodeEnabled:    true,
		LayerCount:                  4,
		MultipleLayerStreamsPresent: true,
		Layers: []LayerParameters{
			{},
			{AbsoluteCodingEnabled: true},
			{PredictorIndexDiff: 1},
		},
		PCMPatchEnabled:         true,
		PCMSeparateVideoPresent: true,
		Occupancy:               OccupancyParameterSet{CodecID: 1, PackingBlockSize: 16},
		Geometry: GeometryParameterSet{
			CodecID:             1,
			CoordinatesBitDepth: 10,
			PCMCodecID:          2,
			MetadataEnabled:     true,
			Metadata: GeometryMetadata{
				Scale:     Overridden([3]uint32{1, 2, 3}),
				PointSize: Overridden(uint8(2)),
			},
			PatchMetadataEnabled: true,
			PatchMetadata:        GeometryPatchFlags{Offset: true, PointSize: true},
		},
		Attributes: []AttributeParameterSet{{
			DimensionMinus1: 2,
			CodecID:         1,
			PCMCodecID:      1,
			MetadataEnabled: true,
			Metadata: AttributeMetadata{
				Smoothing: Overridden(AttributeSmoothing{
					Radius: 8, NeighbourCount: 4, Radius2BoundaryDetect: 2, Threshold: 64, ThresholdLocalEntropy: 5,
				}),
			},
			PatchMetadataEnabled: true,
			PatchMetadata:        AttributePatchFlags{Scale: true},
		}},
		PatchOrientationEnabled:         true,
		PatchInterPredictionEnabled:     true,
		PointLocalReconstructionEnabled: true,
	}

	ctx.Video[vpcc.VideoOccupancy] = []byte{0x00, 0x00, 0x00, 0x01, 0x40}
	ctx.Video[vpcc.VideoGeometryD0] = []byte{0x11, 0x12}
	ctx.Video[vpcc.VideoGeometryD1] = []byte{0x21}
	ctx.Video[vpcc.VideoGeometryMissedPoints] = []byte{0x31, 0x32, 0x33}
	ctx.Video[vpcc.VideoTexture] = []byte{0x41, 0x42, 0x43, 0x44}
	ctx.Video[vpcc.VideoTextureMissedPoints] = []byte{0x51}

	ctx.PatchSequenceParameterSets[0] = PatchSequenceParameterSet{
		Log2MaxPatchFrameOrderCntLSBMinus4: 4,
		MaxDecPatchFrameBufferingMinus1:    3,
		LongTermRefPatchFramesEnabled:      true,
		RefLists: []RefListStruct{
			{Entries: []RefEntry{{ShortTerm: true, DeltaPOC: -1}, {LongTermLSB: 5}}},
			{Entries: []RefEntry{{ShortTerm: true, DeltaPOC: 2}}},
		},
	}
	ctx.PatchSequenceParameterSets[7] = PatchSequenceParameterSet{ID: 7}
	ctx.GeometryFrameParameterSets[1] = GeometryFrameParameterSet{
		ID:       1,
		Metadata: Overridden(GeometryMetadata{Rotation: Overridden([3]int32{-90, 0, 45})}),
		PatchMetadata: Overridden(GeometryPatchFlags{
			Scale: true, Offset: true, Rotation: true, PointSize: true, PointShape: true,
		}),
	}
	ctx.AttributeFrameParameterSets[2] = AttributeFrameParameterSet{
		ID:                          2,
		PatchSequenceParameterSetID: 7,
		PatchMetadata:               Overridden(AttributePatchFlags{Scale: true, Offset: true}),
	}
	ctx.GeometryPatchParameterSets[4] = GeometryPatchParameterSet{
		ID:                          4,
		GeometryFrameParameterSetID: 1,
		Metadata: Overridden(GeometryPatchMetadata{
			Offset:    Overridden([3]int32{-1, 2, -3}),
			PointSize: Overridden(uint16(300)),
		}),
	}
	ctx.AttributePatchParameterSets[5] = AttributePatchParameterSet{
		ID:                           5,
		AttributeFrameParameterSetID: 2,
		Metadata: Overridden(AttributePatchMetadata{
			Scale:  Overridden([]uint32{1, 2, 3}),
			Offset: Overridden([]int32{-1, 0, 1}),
		}),
	}
	ctx.PatchFrameParameterSets[0] = PatchFrameParameterSet{
		LocalOverrideGeometryPatch:  true,
		LocalOverrideAttributePatch: []bool{true},
		AdditionalLtPfocLSBLen:      3,
		PatchOrientationPresent:     true,
	}

	ctx.Frames = []PatchFrame{
		{
			Header: PatchFrameHeader{
				Type:             FrameI,
				UseSPSRefList:    true,
				AdditionalPOCLSB: []Override[uint32]{Overridden(uint32(6))},
				BitCounts:        iFrameBitCounts(7, 7, 9, 9, 9, 2),
			},
			Patches: []Patch{
				IntraPatch{
					GeometryPatchParameterSetID:   Overridden(uint32(4)),
					AttributePatchParameterSetIDs: []Override[uint32]{Overridden(uint32(5))},
					Shift2DU:                      10,
					Shift2DV:                      20,
					DeltaSize2DU:                  16,
					DeltaSize2DV:                  32,
					Shift3DTangent:                100,
					Shift3DBitangent:              200,
					Shift3DNormal:                 300,
					NormalAxis:                    2,
					ProjectionMode:                true,
					Orientation:                   5,
					LOD:                           3,
				},
				IntraPatch{
					Shift2DU:     40,
					Shift2DV:     60,
					DeltaSize2DU: -4,
					DeltaSize2DV: 8,
					NormalAxis:   1,
				},
				PCMPatch{InSeparateVideo: true, Shift2DU: 1, Shift2DV: 2, Size2DU: 3, Size2DV: 4, PointCount: 77},
			},
			PointLocalReconstruction: []PLRBlock{
				{Interpolate: true, NeighbourMinus1: 2, Filling: true},
				{},
				{MinimumDepthMinus1: 1, Filling: true},
			},
		},
		{
			Header: PatchFrameHeader{
				Type:        FrameP,
				OrderCntLSB: 1,
				RefList: RefListStruct{Entries: []RefEntry{
					{ShortTerm: true, DeltaPOC: -1},
					{LongTermLSB: 0},
				}},
				AdditionalPOCLSB:      []Override[uint32]{Inherited[uint32]()},
				NumRefIdxActiveMinus1: Overridden(uint32(1)),
				BitCounts: [BitCountTableSize]Override[uint8]{
					BitCountShiftU: Overridden(uint8(8)),
				},
			},
			Patches: []Patch{
				SkipPatch{},
				DeltaPatch{
					DeltaShift2DU:         -5,
					DeltaShift2DV:         3,
					DeltaSize2DU:          1,
					DeltaSize2DV:          -2,
					DeltaShift3DTangent:   7,
					DeltaShift3DBitangent: -7,
					DeltaShift3DNormal:    0,
				},
				IntraPatch{Shift2DU: 300, DeltaSize2DU: 2, DeltaSize2DV: 2},
			},
		},
	}
	return ctx
}
