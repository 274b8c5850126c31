package bitstream

import (
	mathbits "math/bits"
	"slices"
)

const (
	maxShiftBitCountMinus1 = 31
	maxLODBitCount         = 32
	normalAxisBits         = 2
	maxNormalAxis          = 2
	orientationBits        = 3
)

var bitCountElements = [BitCountTableSize]string{
	BitCountShiftU:    "pfh_2d_shift_u_bit_count_minus1",
	BitCountShiftV:    "pfh_2d_shift_v_bit_count_minus1",
	BitCountTangent:   "pfh_3d_shift_tangent_axis_bit_count_minus1",
	BitCountBitangent: "pfh_3d_shift_bitangent_axis_bit_count_minus1",
	BitCountNormal:    "pfh_3d_shift_normal_axis_bit_count_minus1",
	BitCountLOD:       "pfh_lod_bit_count",
}

// BitCounts is a resolved bit-count table in coded form.
type BitCounts [BitCountTableSize]uint8

// Width returns the field width that entry c selects.
func (b BitCounts) Width(c BitCount) int {
	if c == BitCountLOD {
		return int(b[c])
	}
	return int(b[c]) + 1
}

func (b BitCounts) valid() (BitCount, bool) {
	for c, v := range b {
		limit := uint8(maxShiftBitCountMinus1)
		if BitCount(c) == BitCountLOD {
			limit = maxLODBitCount
		}
		if v > limit {
			return BitCount(c), false
		}
	}
	return 0, true
}

// frameState carries what a patch frame inherits from the frame before it.
type frameState struct {
	bitCounts   BitCounts
	hasPrevious bool
}

// modeCode maps a patch mode onto its ue(v) code for the frame type.
func modeCode(t FrameType, m PatchMode) (uint32, bool) {
	if t == FrameI {
		switch m {
		case PatchIntra:
			return 0, true
		case PatchPCM:
			return 1, true
		}
		return 0, false
	}
	return uint32(m), m <= PatchPCM
}

func codeMode(t FrameType, code uint32) (PatchMode, bool) {
	if t == FrameI {
		switch code {
		case 0:
			return PatchIntra, true
		case 1:
			return PatchPCM, true
		}
		return 0, false
	}
	return PatchMode(code), code <= uint32(PatchPCM) //nolint:gosec // checked
}

// refListIndexBits is ceil(log2(n)), the width of a list index among n lists.
func refListIndexBits(n int) int {
	return mathbits.Len(uint(n - 1)) //nolint:gosec // n > 0
}

// frameParams gathers the parameter sets a patch frame depends on.
type frameParams struct {
	sps  *SequenceParameterSet
	pfps PatchFrameParameterSet
	psps PatchSequenceParameterSet
}

func writePatchFrameLayerUnit(fw *fieldWriter, ctx *Context, fs *frameState, f *PatchFrame) {
	h := &f.Header
	pfps, ok := ctx.PatchFrameParameterSets[h.PatchFrameParameterSetID]
	if !fw.require(ok, "pfh_patch_frame_parameter_set_id", "reference to undefined id %d", h.PatchFrameParameterSetID) {
		return
	}
	p := frameParams{sps: &ctx.SPS, pfps: pfps, psps: ctx.PatchSequenceParameterSets[pfps.PatchSequenceParameterSetID]}
	counts := writePatchFrameHeader(fw, &p, fs, h)
	writePatchFrameDataUnit(fw, &p, h.Type, counts, f)
	fs.bitCounts, fs.hasPrevious = counts, true
}

func readPatchFrameLayerUnit(fr *fieldReader, ctx *Context, fs *frameState) {
	var f PatchFrame
	h := &f.Header
	var p frameParams
	p.sps = &ctx.SPS
	p.pfps, h.PatchFrameParameterSetID = readRef(fr, "pfh_patch_frame_parameter_set_id", ctx.PatchFrameParameterSets)
	p.psps = ctx.PatchSequenceParameterSets[p.pfps.PatchSequenceParameterSetID]
	counts := readPatchFrameHeader(fr, &p, fs, h)
	readPatchFrameDataUnit(fr, &p, h.Type, counts, &f)
	if fr.err != nil {
		return
	}
	fs.bitCounts, fs.hasPrevious = counts, true
	ctx.Frames = append(ctx.Frames, f)
}

func writePatchFrameHeader(fw *fieldWriter, p *frameParams, fs *frameState, h *PatchFrameHeader) BitCounts {
	fw.ue("pfh_patch_frame_parameter_set_id", h.PatchFrameParameterSetID)
	fw.ue("pfh_address", h.Address)
	if !fw.require(h.Type <= FrameP, "pfh_type", "unknown frame type %d", h.Type) {
		return BitCounts{}
	}
	fw.ue("pfh_type", uint32(h.Type))
	fw.u("pfh_patch_frame_order_cnt_lsb", uint64(h.OrderCntLSB), p.psps.OrderCntLSBBits())

	active := writeRefListSelection(fw, p, h)

	lt := active.LongTermCount()
	fw.require(len(h.AdditionalPOCLSB) == lt, "pfh_additional_pfoc_lsb_present_flag",
		"%d additional lsb entries for %d long-term references", len(h.AdditionalPOCLSB), lt)
	for _, o := range h.AdditionalPOCLSB {
		fw.flag("pfh_additional_pfoc_lsb_present_flag", o.Present)
		if o.Present {
			fw.u("pfh_additional_pfoc_lsb_val", uint64(o.Value), int(p.pfps.AdditionalLtPfocLSBLen))
		}
		requireInherited(fw, "pfh_additional_pfoc_lsb_val", o)
	}

	if h.Type == FrameP && len(active.Entries) > 1 {
		fw.flag("pfh_num_ref_idx_active_override_flag", h.NumRefIdxActiveMinus1.Present)
		if v, ok := h.NumRefIdxActiveMinus1.Get(); ok {
			fw.require(int(v) < len(active.Entries), "pfh_num_ref_idx_active_minus1",
				"%d active references from a list of %d", v+1, len(active.Entries))
			fw.ue("pfh_num_ref_idx_active_minus1", v)
		}
		requireInherited(fw, "pfh_num_ref_idx_active_minus1", h.NumRefIdxActiveMinus1)
	} else {
		fw.require(!h.NumRefIdxActiveMinus1.Present, "pfh_num_ref_idx_active_override_flag",
			"active reference override needs a P frame with more than one reference")
		requireZero(fw, "pfh_num_ref_idx_active_minus1", h.NumRefIdxActiveMinus1, "active reference override")
	}

	var counts BitCounts
	if h.Type == FrameI {
		for c, o := range h.BitCounts {
			fw.require(o.Present, bitCountElements[c], "I frames carry the full bit-count table")
			fw.u(bitCountElements[c], uint64(o.Value), 8) //nolint:mnd // u(8)
			counts[c] = o.Value
		}
	} else {
		if !fw.require(fs.hasPrevious, bitCountElements[BitCountShiftU], "P frame without a previous frame") {
			return counts
		}
		override := slices.ContainsFunc(h.BitCounts[:], func(o Override[uint8]) bool { return o.Present })
		fw.flag("pfh_inter_predict_patch_bit_count_flag", override)
		for c, o := range h.BitCounts {
			requireInherited(fw, bitCountElements[c], o)
			if override {
				// A set per-entry flag inherits the previous value.
				fw.flag("pfh_inter_predict_"+bitCountElements[c], !o.Present)
				if o.Present {
					fw.u(bitCountElements[c], uint64(o.Value), 8) //nolint:mnd // u(8)
				}
			}
			counts[c] = o.Resolve(fs.bitCounts[c])
		}
	}
	if c, ok := counts.valid(); !ok {
		fw.fail(bitCountElements[c], "bit count %d out of range", counts[c])
	}
	fw.align()
	return counts
}

// writeRefListSelection writes the reference list choice and returns the
// active list.
func writeRefListSelection(fw *fieldWriter, p *frameParams, h *PatchFrameHeader) RefListStruct {
	n := len(p.psps.RefLists)
	if n > 0 {
		fw.flag("pfh_ref_patch_frame_list_sps_flag", h.UseSPSRefList)
	} else {
		fw.require(!h.UseSPSRefList, "pfh_ref_patch_frame_list_sps_flag", "patch sequence parameter set has no reference lists")
	}
	if !h.UseSPSRefList {
		fw.require(h.RefListIndex == 0, "pfh_ref_patch_frame_list_idx", "list index with an inline list")
		writeRefListStruct(fw, &h.RefList, &p.psps)
		return h.RefList
	}
	fw.require(len(h.RefList.Entries) == 0, "num_ref_entries", "inline list with an sps list selected")
	if !fw.require(int(h.RefListIndex) < n, "pfh_ref_patch_frame_list_idx", "list index %d of %d lists", h.RefListIndex, n) {
		return RefListStruct{}
	}
	if n > 1 {
		fw.u("pfh_ref_patch_frame_list_idx", uint64(h.RefListIndex), refListIndexBits(n))
	}
	return p.psps.RefLists[h.RefListIndex]
}

func readPatchFrameHeader(fr *fieldReader, p *frameParams, fs *frameState, h *PatchFrameHeader) BitCounts {
	h.Address = fr.ue("pfh_address")
	t := fr.ue("pfh_type")
	if !fr.require(t <= uint32(FrameP), "pfh_type", "unknown frame type %d", t) {
		return BitCounts{}
	}
	h.Type = FrameType(t)
	h.OrderCntLSB = fr.u32("pfh_patch_frame_order_cnt_lsb", p.psps.OrderCntLSBBits())

	active := readRefListSelection(fr, p, h)

	lt := active.LongTermCount()
	for range lt {
		var o Override[uint32]
		o.Present = fr.flag("pfh_additional_pfoc_lsb_present_flag")
		if o.Present {
			o.Value = fr.u32("pfh_additional_pfoc_lsb_val", int(p.pfps.AdditionalLtPfocLSBLen))
		}
		h.AdditionalPOCLSB = append(h.AdditionalPOCLSB, o)
	}

	if h.Type == FrameP && len(active.Entries) > 1 {
		h.NumRefIdxActiveMinus1.Present = fr.flag("pfh_num_ref_idx_active_override_flag")
		if h.NumRefIdxActiveMinus1.Present {
			v := fr.ue("pfh_num_ref_idx_active_minus1")
			fr.require(int(v) < len(active.Entries), "pfh_num_ref_idx_active_minus1",
				"%d active references from a list of %d", uint64(v)+1, len(active.Entries))
			h.NumRefIdxActiveMinus1.Value = v
		}
	}

	var counts BitCounts
	if h.Type == FrameI {
		for c := range h.BitCounts {
			h.BitCounts[c] = Overridden(fr.u8(bitCountElements[c], 8)) //nolint:mnd // u(8)
			counts[c] = h.BitCounts[c].Value
		}
	} else {
		if !fr.require(fs.hasPrevious, bitCountElements[BitCountShiftU], "P frame without a previous frame") {
			return counts
		}
		override := fr.flag("pfh_inter_predict_patch_bit_count_flag")
		for c := range h.BitCounts {
			if override && !fr.flag("pfh_inter_predict_"+bitCountElements[c]) {
				h.BitCounts[c] = Overridden(fr.u8(bitCountElements[c], 8)) //nolint:mnd // u(8)
			}
			counts[c] = h.BitCounts[c].Resolve(fs.bitCounts[c])
		}
	}
	if c, ok := counts.valid(); !ok {
		fr.fail(bitCountElements[c], "bit count %d out of range", counts[c])
	}
	fr.align("pfh_byte_alignment")
	return counts
}

func readRefListSelection(fr *fieldReader, p *frameParams, h *PatchFrameHeader) RefListStruct {
	n := len(p.psps.RefLists)
	if n > 0 {
		h.UseSPSRefList = fr.flag("pfh_ref_patch_frame_list_sps_flag")
	}
	if !h.UseSPSRefList {
		h.RefList = readRefListStruct(fr, &p.psps)
		return h.RefList
	}
	if n > 1 {
		h.RefListIndex = fr.u32("pfh_ref_patch_frame_list_idx", refListIndexBits(n))
	}
	if !fr.require(int(h.RefListIndex) < n, "pfh_ref_patch_frame_list_idx", "list index %d of %d lists", h.RefListIndex, n) {
		return RefListStruct{}
	}
	return p.psps.RefLists[h.RefListIndex]
}

func writePatchFrameDataUnit(fw *fieldWriter, p *frameParams, t FrameType, counts BitCounts, f *PatchFrame) {
	for _, patch := range f.Patches {
		if !fw.require(patch != nil, "pfdu_patch_mode", "nil patch record") {
			return
		}
		fw.flag("pfdu_more_available_flag", true)
		code, ok := modeCode(t, patch.Mode())
		if !fw.require(ok, "pfdu_patch_mode", "%v patch in %v frame", patch.Mode(), t) {
			return
		}
		fw.ue("pfdu_patch_mode", code)
		switch patch := patch.(type) {
		case SkipPatch:
		case IntraPatch:
			writeIntraPatch(fw, p, counts, &patch)
		case DeltaPatch:
			writeDeltaPatch(fw, &patch)
		case PCMPatch:
			writePCMPatch(fw, p, counts, &patch)
		default:
			fw.fail("pfdu_patch_mode", "unsupported patch record %T", patch)
		}
	}
	fw.flag("pfdu_more_available_flag", false)
	writePointLocalReconstruction(fw, p, f.PointLocalReconstruction)
	fw.align()
}

func readPatchFrameDataUnit(fr *fieldReader, p *frameParams, t FrameType, counts BitCounts, f *PatchFrame) {
	for more := fr.flag("pfdu_more_available_flag"); more && fr.err == nil; more = fr.flag("pfdu_more_available_flag") {
		code := fr.ue("pfdu_patch_mode")
		mode, ok := codeMode(t, code)
		if !fr.require(ok, "pfdu_patch_mode", "patch mode code %d in %v frame", code, t) {
			return
		}
		var patch Patch
		switch mode {
		case PatchSkip:
			patch = SkipPatch{}
		case PatchIntra:
			patch = readIntraPatch(fr, p, counts)
		case PatchDelta:
			patch = readDeltaPatch(fr)
		case PatchPCM:
			patch = readPCMPatch(fr, p, counts)
		}
		f.Patches = append(f.Patches, patch)
	}
	f.PointLocalReconstruction = readPointLocalReconstruction(fr, p)
	fr.align("pfdu_byte_alignment")
}

func writeIntraPatch(fw *fieldWriter, p *frameParams, counts BitCounts, ip *IntraPatch) {
	if p.pfps.LocalOverrideGeometryPatch {
		fw.flag("pid_override_geometry_patch_flag", ip.GeometryPatchParameterSetID.Present)
		if id, ok := ip.GeometryPatchParameterSetID.Get(); ok {
			fw.ue("pid_geometry_patch_parameter_set_id", id)
		}
		requireInherited(fw, "pid_geometry_patch_parameter_set_id", ip.GeometryPatchParameterSetID)
	} else {
		requireZero(fw, "pid_override_geometry_patch_flag", ip.GeometryPatchParameterSetID, "geometry patch override")
	}
	attrs := ip.AttributePatchParameterSetIDs
	if !fw.require(len(attrs) == 0 || len(attrs) == p.sps.AttributeCount(), "pid_override_attribute_patch_flag",
		"%d attribute overrides for %d attributes", len(attrs), p.sps.AttributeCount()) {
		return
	}
	// Decoding yields nil when no entry is present.
	if !fw.require(len(attrs) == 0 || slices.ContainsFunc(attrs, func(o Override[uint32]) bool { return o.Present }),
		"pid_override_attribute_patch_flag", "attribute override list without a present entry") {
		return
	}
	for i, enabled := range p.pfps.LocalOverrideAttributePatch {
		var o Override[uint32]
		if len(attrs) > 0 {
			o = attrs[i]
		}
		if !enabled {
			requireZero(fw, "pid_override_attribute_patch_flag", o, "attribute patch override")
			continue
		}
		fw.flag("pid_override_attribute_patch_flag", o.Present)
		if o.Present {
			fw.ue("pid_attribute_patch_parameter_set_id", o.Value)
		}
		requireInherited(fw, "pid_attribute_patch_parameter_set_id", o)
	}

	fw.u("pid_2d_shift_u", uint64(ip.Shift2DU), counts.Width(BitCountShiftU))
	fw.u("pid_2d_shift_v", uint64(ip.Shift2DV), counts.Width(BitCountShiftV))
	fw.se("pid_2d_delta_size_u", ip.DeltaSize2DU)
	fw.se("pid_2d_delta_size_v", ip.DeltaSize2DV)
	fw.u("pid_3d_shift_tangent_axis", uint64(ip.Shift3DTangent), counts.Width(BitCountTangent))
	fw.u("pid_3d_shift_bitangent_axis", uint64(ip.Shift3DBitangent), counts.Width(BitCountBitangent))
	fw.u("pid_3d_shift_normal_axis", uint64(ip.Shift3DNormal), counts.Width(BitCountNormal))
	fw.require(ip.NormalAxis <= maxNormalAxis, "pid_normal_axis", "normal axis %d", ip.NormalAxis)
	fw.u("pid_normal_axis", uint64(ip.NormalAxis), normalAxisBits)
	if p.sps.AnyAbsoluteLayer() {
		fw.flag("pid_projection_mode", ip.ProjectionMode)
	} else {
		fw.require(!ip.ProjectionMode, "pid_projection_mode", "projection mode needs an absolute coded layer")
	}
	if p.pfps.PatchOrientationPresent {
		fw.u("pid_patch_orientation_index", uint64(ip.Orientation), orientationBits)
	} else {
		fw.require(ip.Orientation == 0, "pid_patch_orientation_index", "patch orientation is not present")
	}
	if w := counts.Width(BitCountLOD); w > 0 {
		fw.u("pid_lod", uint64(ip.LOD), w)
	} else {
		fw.require(ip.LOD == 0, "pid_lod", "lod with a zero lod bit count")
	}
}

func readIntraPatch(fr *fieldReader, p *frameParams, counts BitCounts) IntraPatch {
	var ip IntraPatch
	if p.pfps.LocalOverrideGeometryPatch {
		ip.GeometryPatchParameterSetID.Present = fr.flag("pid_override_geometry_patch_flag")
		if ip.GeometryPatchParameterSetID.Present {
			ip.GeometryPatchParameterSetID.Value = fr.ue("pid_geometry_patch_parameter_set_id")
		}
	}
	if slices.Contains(p.pfps.LocalOverrideAttributePatch, true) {
		attrs := make([]Override[uint32], len(p.pfps.LocalOverrideAttributePatch))
		for i, enabled := range p.pfps.LocalOverrideAttributePatch {
			if enabled && fr.flag("pid_override_attribute_patch_flag") {
				attrs[i] = Overridden(fr.ue("pid_attribute_patch_parameter_set_id"))
			}
		}
		if slices.ContainsFunc(attrs, func(o Override[uint32]) bool { return o.Present }) {
			ip.AttributePatchParameterSetIDs = attrs
		}
	}

	ip.Shift2DU = fr.u32("pid_2d_shift_u", counts.Width(BitCountShiftU))
	ip.Shift2DV = fr.u32("pid_2d_shift_v", counts.Width(BitCountShiftV))
	ip.DeltaSize2DU = fr.se("pid_2d_delta_size_u")
	ip.DeltaSize2DV = fr.se("pid_2d_delta_size_v")
	ip.Shift3DTangent = fr.u32("pid_3d_shift_tangent_axis", counts.Width(BitCountTangent))
	ip.Shift3DBitangent = fr.u32("pid_3d_shift_bitangent_axis", counts.Width(BitCountBitangent))
	ip.Shift3DNormal = fr.u32("pid_3d_shift_normal_axis", counts.Width(BitCountNormal))
	ip.NormalAxis = fr.u8("pid_normal_axis", normalAxisBits)
	fr.require(ip.NormalAxis <= maxNormalAxis, "pid_normal_axis", "normal axis %d", ip.NormalAxis)
	if p.sps.AnyAbsoluteLayer() {
		ip.ProjectionMode = fr.flag("pid_projection_mode")
	}
	if p.pfps.PatchOrientationPresent {
		ip.Orientation = fr.u8("pid_patch_orientation_index", orientationBits)
	}
	if w := counts.Width(BitCountLOD); w > 0 {
		ip.LOD = fr.u32("pid_lod", w)
	}
	return ip
}

func writeDeltaPatch(fw *fieldWriter, dp *DeltaPatch) {
	fw.ue("dpdu_patch_index", dp.ReferenceIndex)
	fw.se("dpdu_2d_shift_u", dp.DeltaShift2DU)
	fw.se("dpdu_2d_shift_v", dp.DeltaShift2DV)
	fw.se("dpdu_2d_delta_size_u", dp.DeltaSize2DU)
	fw.se("dpdu_2d_delta_size_v", dp.DeltaSize2DV)
	fw.se("dpdu_3d_shift_tangent_axis", dp.DeltaShift3DTangent)
	fw.se("dpdu_3d_shift_bitangent_axis", dp.DeltaShift3DBitangent)
	fw.se("dpdu_3d_shift_normal_axis", dp.DeltaShift3DNormal)
}

func readDeltaPatch(fr *fieldReader) DeltaPatch {
	return DeltaPatch{
		ReferenceIndex:        fr.ue("dpdu_patch_index"),
		DeltaShift2DU:         fr.se("dpdu_2d_shift_u"),
		DeltaShift2DV:         fr.se("dpdu_2d_shift_v"),
		DeltaSize2DU:          fr.se("dpdu_2d_delta_size_u"),
		DeltaSize2DV:          fr.se("dpdu_2d_delta_size_v"),
		DeltaShift3DTangent:   fr.se("dpdu_3d_shift_tangent_axis"),
		DeltaShift3DBitangent: fr.se("dpdu_3d_shift_bitangent_axis"),
		DeltaShift3DNormal:    fr.se("dpdu_3d_shift_normal_axis"),
	}
}

func writePCMPatch(fw *fieldWriter, p *frameParams, counts BitCounts, pp *PCMPatch) {
	if !fw.require(p.sps.PCMPatchEnabled, "pfdu_patch_mode", "pcm patch with pcm patches disabled") {
		return
	}
	if p.sps.PCMSeparateVideoPresent {
		fw.flag("ppdu_patch_in_pcm_video_flag", pp.InSeparateVideo)
	} else {
		fw.require(!pp.InSeparateVideo, "ppdu_patch_in_pcm_video_flag", "separate pcm video is not present")
	}
	fw.u("ppdu_2d_shift_u", uint64(pp.Shift2DU), counts.Width(BitCountShiftU))
	fw.u("ppdu_2d_shift_v", uint64(pp.Shift2DV), counts.Width(BitCountShiftV))
	fw.u("ppdu_2d_size_u", uint64(pp.Size2DU), counts.Width(BitCountShiftU))
	fw.u("ppdu_2d_size_v", uint64(pp.Size2DV), counts.Width(BitCountShiftV))
	fw.ue("ppdu_pcm_points", pp.PointCount)
}

func readPCMPatch(fr *fieldReader, p *frameParams, counts BitCounts) PCMPatch {
	var pp PCMPatch
	if !fr.require(p.sps.PCMPatchEnabled, "pfdu_patch_mode", "pcm patch with pcm patches disabled") {
		return pp
	}
	if p.sps.PCMSeparateVideoPresent {
		pp.InSeparateVideo = fr.flag("ppdu_patch_in_pcm_video_flag")
	}
	pp.Shift2DU = fr.u32("ppdu_2d_shift_u", counts.Width(BitCountShiftU))
	pp.Shift2DV = fr.u32("ppdu_2d_shift_v", counts.Width(BitCountShiftV))
	pp.Size2DU = fr.u32("ppdu_2d_size_u", counts.Width(BitCountShiftU))
	pp.Size2DV = fr.u32("ppdu_2d_size_v", counts.Width(BitCountShiftV))
	pp.PointCount = fr.ue("ppdu_pcm_points")
	return pp
}

func writePointLocalReconstruction(fw *fieldWriter, p *frameParams, blocks []PLRBlock) {
	if !p.sps.PointLocalReconstructionEnabled {
		fw.require(len(blocks) == 0, "plri_block_count", "point local reconstruction is not enabled")
		return
	}
	fw.ue("plri_block_count", uint32(len(blocks))) //nolint:gosec // bounded by memory
	for _, b := range blocks {
		fw.flag("plri_interpolate_flag", b.Interpolate)
		if b.Interpolate {
			fw.ue("plri_neighbour_minus1", b.NeighbourMinus1)
		} else {
			fw.require(b.NeighbourMinus1 == 0, "plri_neighbour_minus1", "neighbour count without interpolation")
		}
		fw.ue("plri_minimum_depth_minus1", b.MinimumDepthMinus1)
		if b.Interpolate || b.MinimumDepthMinus1 > 0 {
			fw.flag("plri_filling_flag", b.Filling)
		} else {
			fw.require(!b.Filling, "plri_filling_flag", "filling without interpolation or minimum depth")
		}
	}
}

func readPointLocalReconstruction(fr *fieldReader, p *frameParams) []PLRBlock {
	if !p.sps.PointLocalReconstructionEnabled {
		return nil
	}
	n := fr.count("plri_block_count", fr.ue("plri_block_count"), 2) //nolint:mnd // interpolate flag and depth
	var blocks []PLRBlock
	for range n {
		var b PLRBlock
		b.Interpolate = fr.flag("plri_interpolate_flag")
		if b.Interpolate {
			b.NeighbourMinus1 = fr.ue("plri_neighbour_minus1")
		}
		b.MinimumDepthMinus1 = fr.ue("plri_minimum_depth_minus1")
		if b.Interpolate || b.MinimumDepthMinus1 > 0 {
			b.Filling = fr.flag("plri_filling_flag")
		}
		if fr.err != nil {
			return nil
		}
		blocks = append(blocks, b)
	}
	return blocks
}
