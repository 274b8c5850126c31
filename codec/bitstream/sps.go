package bitstream

const (
	profileIDCBits       = 7
	ptlReservedBits      = 48
	spsIDBits            = 4
	frameSizeBits        = 16
	layerCountBits       = 4
	maxLayerCount        = 1 << layerCountBits
	codecIDBits          = 8
	packingBlockBits     = 8
	bitDepthBits         = 5
	maxBitDepth          = 1 << bitDepthBits
	attributeCountBits   = 16
	attributeTypeBits    = 4
	attributeDimBits     = 8
	localEntropyBits     = 3
	minAttributeSetBits  = attributeTypeBits + attributeDimBits + codecIDBits + 2
)

func writeProfileTierLevel(fw *fieldWriter, ptl *ProfileTierLevel) {
	fw.flag("ptl_tier_flag", ptl.TierFlag)
	fw.u("ptl_profile_idc", uint64(ptl.ProfileIDC), profileIDCBits)
	fw.u("ptl_reserved_zero_48bits", 0, ptlReservedBits)
	fw.u("ptl_level_idc", uint64(ptl.LevelIDC), 8) //nolint:mnd // u(8)
}

func readProfileTierLevel(fr *fieldReader, ptl *ProfileTierLevel) {
	ptl.TierFlag = fr.flag("ptl_tier_flag")
	ptl.ProfileIDC = fr.u8("ptl_profile_idc", profileIDCBits)
	reserved := fr.u("ptl_reserved_zero_48bits", ptlReservedBits)
	fr.require(reserved == 0, "ptl_reserved_zero_48bits", "reserved bits are %#x", reserved)
	ptl.LevelIDC = fr.u8("ptl_level_idc", 8) //nolint:mnd // u(8)
}

func writeSequenceParameterSet(fw *fieldWriter, sps *SequenceParameterSet) {
	writeProfileTierLevel(fw, &sps.ProfileTierLevel)
	fw.u("sps_sequence_parameter_set_id", uint64(sps.ID), spsIDBits)
	fw.u("sps_frame_width", uint64(sps.Width), frameSizeBits)
	fw.u("sps_frame_height", uint64(sps.Height), frameSizeBits)
	fw.flag("sps_enhanced_depth_code_enabled_flag", sps.EnhancedDepthCodeEnabled)

	if !fw.require(sps.LayerCount >= 1 && sps.LayerCount <= maxLayerCount, "sps_layer_count_minus1",
		"layer count %d out of range 1..%d", sps.LayerCount, maxLayerCount) {
		return
	}
	fw.u("sps_layer_count_minus1", uint64(sps.LayerCount-1), layerCountBits)
	fw.require(len(sps.Layers) == int(sps.LayerCount)-1, "sps_layer_absolute_coding_enabled_flag",
		"%d layer entries for %d layers", len(sps.Layers), sps.LayerCount)
	if sps.LayerCount > 1 {
		fw.flag("sps_multiple_layer_streams_present_flag", sps.MultipleLayerStreamsPresent)
	} else {
		fw.require(!sps.MultipleLayerStreamsPresent, "sps_multiple_layer_streams_present_flag", "multiple layer streams with a single layer")
	}
	for i, l := range sps.Layers {
		fw.flag("sps_layer_absolute_coding_enabled_flag", l.AbsoluteCodingEnabled)
		if !l.AbsoluteCodingEnabled && i > 0 {
			fw.ue("sps_layer_predictor_index_diff", l.PredictorIndexDiff)
		} else {
			fw.require(l.PredictorIndexDiff == 0, "sps_layer_predictor_index_diff", "predictor index diff on layer %d is not coded", i+1)
		}
	}

	fw.flag("sps_pcm_patch_enabled_flag", sps.PCMPatchEnabled)
	if sps.PCMPatchEnabled {
		fw.flag("sps_pcm_separate_video_present_flag", sps.PCMSeparateVideoPresent)
	} else {
		fw.require(!sps.PCMSeparateVideoPresent, "sps_pcm_separate_video_present_flag", "separate pcm video without pcm patches")
	}

	fw.u("ops_occupancy_codec_id", uint64(sps.Occupancy.CodecID), codecIDBits)
	fw.u("ops_occupancy_packing_block_size", uint64(sps.Occupancy.PackingBlockSize), packingBlockBits)
	writeGeometryParameterSet(fw, &sps.Geometry, sps.PCMSeparateVideoPresent)

	fw.u("sps_attribute_count", uint64(len(sps.Attributes)), attributeCountBits)
	for i := range sps.Attributes {
		writeAttributeParameterSet(fw, &sps.Attributes[i], sps.PCMSeparateVideoPresent)
	}

	fw.flag("sps_patch_orientation_enabled_flag", sps.PatchOrientationEnabled)
	fw.flag("sps_patch_inter_prediction_enabled_flag", sps.PatchInterPredictionEnabled)
	fw.flag("sps_pixel_deinterleaving_flag", sps.PixelDeinterleavingEnabled)
	fw.flag("sps_point_local_reconstruction_enabled_flag", sps.PointLocalReconstructionEnabled)
	fw.align()
}

func readSequenceParameterSet(fr *fieldReader, sps *SequenceParameterSet) {
	readProfileTierLevel(fr, &sps.ProfileTierLevel)
	sps.ID = fr.u8("sps_sequence_parameter_set_id", spsIDBits)
	sps.Width = fr.u16("sps_frame_width", frameSizeBits)
	sps.Height = fr.u16("sps_frame_height", frameSizeBits)
	sps.EnhancedDepthCodeEnabled = fr.flag("sps_enhanced_depth_code_enabled_flag")

	sps.LayerCount = fr.u8("sps_layer_count_minus1", layerCountBits) + 1
	if sps.LayerCount > 1 {
		sps.MultipleLayerStreamsPresent = fr.flag("sps_multiple_layer_streams_present_flag")
	}
	for i := 1; i < int(sps.LayerCount) && fr.err == nil; i++ {
		var l LayerParameters
		l.AbsoluteCodingEnabled = fr.flag("sps_layer_absolute_coding_enabled_flag")
		if !l.AbsoluteCodingEnabled && i > 1 {
			l.PredictorIndexDiff = fr.ue("sps_layer_predictor_index_diff")
		}
		sps.Layers = append(sps.Layers, l)
	}

	sps.PCMPatchEnabled = fr.flag("sps_pcm_patch_enabled_flag")
	if sps.PCMPatchEnabled {
		sps.PCMSeparateVideoPresent = fr.flag("sps_pcm_separate_video_present_flag")
	}

	sps.Occupancy.CodecID = fr.u8("ops_occupancy_codec_id", codecIDBits)
	sps.Occupancy.PackingBlockSize = fr.u8("ops_occupancy_packing_block_size", packingBlockBits)
	readGeometryParameterSet(fr, &sps.Geometry, sps.PCMSeparateVideoPresent)

	n := fr.count("sps_attribute_count", fr.u32("sps_attribute_count", attributeCountBits), minAttributeSetBits)
	for range n {
		var aps AttributeParameterSet
		readAttributeParameterSet(fr, &aps, sps.PCMSeparateVideoPresent)
		if fr.err != nil {
			return
		}
		sps.Attributes = append(sps.Attributes, aps)
	}

	sps.PatchOrientationEnabled = fr.flag("sps_patch_orientation_enabled_flag")
	sps.PatchInterPredictionEnabled = fr.flag("sps_patch_inter_prediction_enabled_flag")
	sps.PixelDeinterleavingEnabled = fr.flag("sps_pixel_deinterleaving_flag")
	sps.PointLocalReconstructionEnabled = fr.flag("sps_point_local_reconstruction_enabled_flag")
	fr.align("sps_byte_alignment")
}

func writeGeometryParameterSet(fw *fieldWriter, gps *GeometryParameterSet, pcmSeparate bool) {
	fw.u("gps_geometry_codec_id", uint64(gps.CodecID), codecIDBits)
	if fw.require(gps.CoordinatesBitDepth >= 1 && gps.CoordinatesBitDepth <= maxBitDepth, "gps_geometry_3d_coordinates_bitdepth_minus1",
		"bit depth %d out of range 1..%d", gps.CoordinatesBitDepth, maxBitDepth) {
		fw.u("gps_geometry_3d_coordinates_bitdepth_minus1", uint64(gps.CoordinatesBitDepth-1), bitDepthBits)
	}
	if pcmSeparate {
		fw.u("gps_pcm_geometry_codec_id", uint64(gps.PCMCodecID), codecIDBits)
	} else {
		fw.require(gps.PCMCodecID == 0, "gps_pcm_geometry_codec_id", "pcm codec id without separate pcm video")
	}
	fw.flag("gps_geometry_metadata_enabled_flag", gps.MetadataEnabled)
	if gps.MetadataEnabled {
		writeGeometryMetadata(fw, &gps.Metadata)
	} else {
		requireZero(fw, "gps_geometry_metadata_enabled_flag", gps.Metadata, "geometry metadata")
	}
	fw.flag("gps_geometry_patch_metadata_enabled_flag", gps.PatchMetadataEnabled)
	if gps.PatchMetadataEnabled {
		writeGeometryPatchFlags(fw, gps.PatchMetadata)
	} else {
		requireZero(fw, "gps_geometry_patch_metadata_enabled_flag", gps.PatchMetadata, "geometry patch metadata flags")
	}
}

func readGeometryParameterSet(fr *fieldReader, gps *GeometryParameterSet, pcmSeparate bool) {
	gps.CodecID = fr.u8("gps_geometry_codec_id", codecIDBits)
	gps.CoordinatesBitDepth = fr.u8("gps_geometry_3d_coordinates_bitdepth_minus1", bitDepthBits) + 1
	if pcmSeparate {
		gps.PCMCodecID = fr.u8("gps_pcm_geometry_codec_id", codecIDBits)
	}
	gps.MetadataEnabled = fr.flag("gps_geometry_metadata_enabled_flag")
	if gps.MetadataEnabled {
		readGeometryMetadata(fr, &gps.Metadata)
	}
	gps.PatchMetadataEnabled = fr.flag("gps_geometry_patch_metadata_enabled_flag")
	if gps.PatchMetadataEnabled {
		gps.PatchMetadata = readGeometryPatchFlags(fr)
	}
}

func writeGeometryPatchFlags(fw *fieldWriter, f GeometryPatchFlags) {
	fw.flag("geometry_patch_scale_metadata_enabled_flag", f.Scale)
	fw.flag("geometry_patch_offset_metadata_enabled_flag", f.Offset)
	fw.flag("geometry_patch_rotation_metadata_enabled_flag", f.Rotation)
	fw.flag("geometry_patch_point_size_metadata_enabled_flag", f.PointSize)
	fw.flag("geometry_patch_point_shape_metadata_enabled_flag", f.PointShape)
}

func readGeometryPatchFlags(fr *fieldReader) GeometryPatchFlags {
	return GeometryPatchFlags{
		Scale:      fr.flag("geometry_patch_scale_metadata_enabled_flag"),
		Offset:     fr.flag("geometry_patch_offset_metadata_enabled_flag"),
		Rotation:   fr.flag("geometry_patch_rotation_metadata_enabled_flag"),
		PointSize:  fr.flag("geometry_patch_point_size_metadata_enabled_flag"),
		PointShape: fr.flag("geometry_patch_point_shape_metadata_enabled_flag"),
	}
}

// writeGeometryMetadata writes the sequence or frame level geometry
// metadata: all presence flags, then the present categories.
func writeGeometryMetadata(fw *fieldWriter, m *GeometryMetadata) {
	fw.flag("gm_geometry_smoothing_metadata_present_flag", m.Smoothing.Present)
	fw.flag("gm_geometry_scale_metadata_present_flag", m.Scale.Present)
	fw.flag("gm_geometry_offset_metadata_present_flag", m.Offset.Present)
	fw.flag("gm_geometry_rotation_metadata_present_flag", m.Rotation.Present)
	fw.flag("gm_geometry_point_size_metadata_present_flag", m.PointSize.Present)
	fw.flag("gm_geometry_point_shape_metadata_present_flag", m.PointShape.Present)
	requireInherited(fw, "gm_geometry_smoothing_metadata_present_flag", m.Smoothing)
	requireInherited(fw, "gm_geometry_scale_metadata_present_flag", m.Scale)
	requireInherited(fw, "gm_geometry_offset_metadata_present_flag", m.Offset)
	requireInherited(fw, "gm_geometry_rotation_metadata_present_flag", m.Rotation)
	requireInherited(fw, "gm_geometry_point_size_metadata_present_flag", m.PointSize)
	requireInherited(fw, "gm_geometry_point_shape_metadata_present_flag", m.PointShape)
	if s, ok := m.Smoothing.Get(); ok {
		fw.u("gm_geometry_smoothing_radius", uint64(s.Radius), 8)                          //nolint:mnd // u(8)
		fw.u("gm_geometry_smoothing_neighbour_count", uint64(s.NeighbourCount), 8)         //nolint:mnd // u(8)
		fw.u("gm_geometry_smoothing_radius2_boundary", uint64(s.Radius2BoundaryDetect), 8) //nolint:mnd // u(8)
		fw.u("gm_geometry_smoothing_threshold", uint64(s.Threshold), 8)                    //nolint:mnd // u(8)
	}
	if v, ok := m.Scale.Get(); ok {
		for _, c := range v {
			fw.u("gm_geometry_scale_on_axis", uint64(c), 32) //nolint:mnd // u(32)
		}
	}
	if v, ok := m.Offset.Get(); ok {
		for _, c := range v {
			fw.i32("gm_geometry_offset_on_axis", c)
		}
	}
	if v, ok := m.Rotation.Get(); ok {
		for _, c := range v {
			fw.i32("gm_geometry_rotation_on_axis", c)
		}
	}
	if v, ok := m.PointSize.Get(); ok {
		fw.u("gm_geometry_point_size_info", uint64(v), 8) //nolint:mnd // u(8)
	}
	if v, ok := m.PointShape.Get(); ok {
		fw.u("gm_geometry_point_shape_info", uint64(v), 8) //nolint:mnd // u(8)
	}
}

func readGeometryMetadata(fr *fieldReader, m *GeometryMetadata) {
	m.Smoothing.Present = fr.flag("gm_geometry_smoothing_metadata_present_flag")
	m.Scale.Present = fr.flag("gm_geometry_scale_metadata_present_flag")
	m.Offset.Present = fr.flag("gm_geometry_offset_metadata_present_flag")
	m.Rotation.Present = fr.flag("gm_geometry_rotation_metadata_present_flag")
	m.PointSize.Present = fr.flag("gm_geometry_point_size_metadata_present_flag")
	m.PointShape.Present = fr.flag("gm_geometry_point_shape_metadata_present_flag")
	if m.Smoothing.Present {
		m.Smoothing.Value = GeometrySmoothing{
			Radius:                fr.u8("gm_geometry_smoothing_radius", 8),          //nolint:mnd // u(8)
			NeighbourCount:        fr.u8("gm_geometry_smoothing_neighbour_count", 8), //nolint:mnd // u(8)
			Radius2BoundaryDetect: fr.u8("gm_geometry_smoothing_radius2_boundary", 8), //nolint:mnd // u(8)
			Threshold:             fr.u8("gm_geometry_smoothing_threshold", 8),       //nolint:mnd // u(8)
		}
	}
	if m.Scale.Present {
		for i := range m.Scale.Value {
			m.Scale.Value[i] = fr.u32("gm_geometry_scale_on_axis", 32) //nolint:mnd // u(32)
		}
	}
	if m.Offset.Present {
		for i := range m.Offset.Value {
			m.Offset.Value[i] = fr.i32("gm_geometry_offset_on_axis")
		}
	}
	if m.Rotation.Present {
		for i := range m.Rotation.Value {
			m.Rotation.Value[i] = fr.i32("gm_geometry_rotation_on_axis")
		}
	}
	if m.PointSize.Present {
		m.PointSize.Value = fr.u8("gm_geometry_point_size_info", 8) //nolint:mnd // u(8)
	}
	if m.PointShape.Present {
		m.PointShape.Value = fr.u8("gm_geometry_point_shape_info", 8) //nolint:mnd // u(8)
	}
}

func writeAttributeParameterSet(fw *fieldWriter, aps *AttributeParameterSet, pcmSeparate bool) {
	fw.u("aps_attribute_type_id", uint64(aps.TypeID), attributeTypeBits)
	fw.u("aps_attribute_dimension_minus1", uint64(aps.DimensionMinus1), attributeDimBits)
	fw.u("aps_attribute_codec_id", uint64(aps.CodecID), codecIDBits)
	if pcmSeparate {
		fw.u("aps_pcm_attribute_codec_id", uint64(aps.PCMCodecID), codecIDBits)
	} else {
		fw.require(aps.PCMCodecID == 0, "aps_pcm_attribute_codec_id", "pcm codec id without separate pcm video")
	}
	fw.flag("aps_attribute_metadata_enabled_flag", aps.MetadataEnabled)
	if aps.MetadataEnabled {
		writeAttributeMetadata(fw, &aps.Metadata, aps.Dimension())
	} else {
		requireZero(fw, "aps_attribute_metadata_enabled_flag", aps.Metadata, "attribute metadata")
	}
	fw.flag("aps_attribute_patch_metadata_enabled_flag", aps.PatchMetadataEnabled)
	if aps.PatchMetadataEnabled {
		writeAttributePatchFlags(fw, aps.PatchMetadata)
	} else {
		requireZero(fw, "aps_attribute_patch_metadata_enabled_flag", aps.PatchMetadata, "attribute patch metadata flags")
	}
}

func readAttributeParameterSet(fr *fieldReader, aps *AttributeParameterSet, pcmSeparate bool) {
	aps.TypeID = fr.u8("aps_attribute_type_id", attributeTypeBits)
	aps.DimensionMinus1 = fr.u8("aps_attribute_dimension_minus1", attributeDimBits)
	aps.CodecID = fr.u8("aps_attribute_codec_id", codecIDBits)
	if pcmSeparate {
		aps.PCMCodecID = fr.u8("aps_pcm_attribute_codec_id", codecIDBits)
	}
	aps.MetadataEnabled = fr.flag("aps_attribute_metadata_enabled_flag")
	if aps.MetadataEnabled {
		readAttributeMetadata(fr, &aps.Metadata, aps.Dimension())
	}
	aps.PatchMetadataEnabled = fr.flag("aps_attribute_patch_metadata_enabled_flag")
	if aps.PatchMetadataEnabled {
		aps.PatchMetadata = readAttributePatchFlags(fr)
	}
}

func writeAttributePatchFlags(fw *fieldWriter, f AttributePatchFlags) {
	fw.flag("attribute_patch_scale_metadata_enabled_flag", f.Scale)
	fw.flag("attribute_patch_offset_metadata_enabled_flag", f.Offset)
}

func readAttributePatchFlags(fr *fieldReader) AttributePatchFlags {
	return AttributePatchFlags{
		Scale:  fr.flag("attribute_patch_scale_metadata_enabled_flag"),
		Offset: fr.flag("attribute_patch_offset_metadata_enabled_flag"),
	}
}

func writeAttributeMetadata(fw *fieldWriter, m *AttributeMetadata, dim int) {
	fw.flag("am_attribute_smoothing_metadata_present_flag", m.Smoothing.Present)
	fw.flag("am_attribute_scale_metadata_present_flag", m.Scale.Present)
	fw.flag("am_attribute_offset_metadata_present_flag", m.Offset.Present)
	requireInherited(fw, "am_attribute_smoothing_metadata_present_flag", m.Smoothing)
	requireInherited(fw, "am_attribute_scale_metadata_present_flag", m.Scale)
	requireInherited(fw, "am_attribute_offset_metadata_present_flag", m.Offset)
	if s, ok := m.Smoothing.Get(); ok {
		fw.u("am_attribute_smoothing_radius", uint64(s.Radius), 8)                          //nolint:mnd // u(8)
		fw.u("am_attribute_smoothing_neighbour_count", uint64(s.NeighbourCount), 8)         //nolint:mnd // u(8)
		fw.u("am_attribute_smoothing_radius2_boundary", uint64(s.Radius2BoundaryDetect), 8) //nolint:mnd // u(8)
		fw.u("am_attribute_smoothing_threshold", uint64(s.Threshold), 8)                    //nolint:mnd // u(8)
		fw.u("am_attribute_smoothing_threshold_local_entropy", uint64(s.ThresholdLocalEntropy), localEntropyBits)
	}
	if v, ok := m.Scale.Get(); ok {
		writeScaleValues(fw, "am_attribute_scale", v, dim)
	}
	if v, ok := m.Offset.Get(); ok {
		writeOffsetValues(fw, "am_attribute_offset", v, dim)
	}
}

func readAttributeMetadata(fr *fieldReader, m *AttributeMetadata, dim int) {
	m.Smoothing.Present = fr.flag("am_attribute_smoothing_metadata_present_flag")
	m.Scale.Present = fr.flag("am_attribute_scale_metadata_present_flag")
	m.Offset.Present = fr.flag("am_attribute_offset_metadata_present_flag")
	if m.Smoothing.Present {
		m.Smoothing.Value = AttributeSmoothing{
			Radius:                fr.u8("am_attribute_smoothing_radius", 8),          //nolint:mnd // u(8)
			NeighbourCount:        fr.u8("am_attribute_smoothing_neighbour_count", 8), //nolint:mnd // u(8)
			Radius2BoundaryDetect: fr.u8("am_attribute_smoothing_radius2_boundary", 8), //nolint:mnd // u(8)
			Threshold:             fr.u8("am_attribute_smoothing_threshold", 8),       //nolint:mnd // u(8)
			ThresholdLocalEntropy: fr.u8("am_attribute_smoothing_threshold_local_entropy", localEntropyBits),
		}
	}
	if m.Scale.Present {
		m.Scale.Value = readScaleValues(fr, "am_attribute_scale", dim)
	}
	if m.Offset.Present {
		m.Offset.Value = readOffsetValues(fr, "am_attribute_offset", dim)
	}
}

// writeScaleValues writes one u(32) per attribute dimension.
func writeScaleValues(fw *fieldWriter, name string, v []uint32, dim int) {
	if !fw.require(len(v) == dim, name, "%d values for dimension %d", len(v), dim) {
		return
	}
	for _, c := range v {
		fw.u(name, uint64(c), 32) //nolint:mnd // u(32)
	}
}

func readScaleValues(fr *fieldReader, name string, dim int) []uint32 {
	v := make([]uint32, fr.count(name, uint32(dim), 32)) //nolint:gosec,mnd // dim <= 256
	for i := range v {
		v[i] = fr.u32(name, 32) //nolint:mnd // u(32)
	}
	return v
}

// writeOffsetValues writes one i(32) per attribute dimension.
func writeOffsetValues(fw *fieldWriter, name string, v []int32, dim int) {
	if !fw.require(len(v) == dim, name, "%d values for dimension %d", len(v), dim) {
		return
	}
	for _, c := range v {
		fw.i32(name, c)
	}
}

func readOffsetValues(fr *fieldReader, name string, dim int) []int32 {
	v := make([]int32, fr.count(name, uint32(dim), 32)) //nolint:gosec,mnd // dim <= 256
	for i := range v {
		v[i] = fr.i32(name)
	}
	return v
}
