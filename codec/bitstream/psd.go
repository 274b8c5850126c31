package bitstream

import (
	"maps"
	"math"
	"slices"

	"github.com/ugparu/vpcc/utils/logger"
)

// psdUnitType is the ue(v) type of a patch sequence data unit.
type psdUnitType uint32

const (
	psdSequenceParameterSet psdUnitType = iota
	psdFrameParameterSet
	psdGeometryFrameParameterSet
	psdAttributeFrameParameterSet
	psdGeometryPatchParameterSet
	psdAttributePatchParameterSet
	psdPatchFrameLayerUnit
)

func (t psdUnitType) String() string {
	switch t {
	case psdSequenceParameterSet:
		return "PSD_SPS"
	case psdFrameParameterSet:
		return "PSD_FPS"
	case psdGeometryFrameParameterSet:
		return "PSD_GFPS"
	case psdAttributeFrameParameterSet:
		return "PSD_AFPS"
	case psdGeometryPatchParameterSet:
		return "PSD_GPPS"
	case psdAttributePatchParameterSet:
		return "PSD_APPS"
	case psdPatchFrameLayerUnit:
		return "PSD_PFLU"
	}
	return "PSD_UNKNOWN"
}

const (
	psdUnitTypeElement  = "psd_unit_type"
	psdTerminateElement = "psd_terminate_patch_sequence_information_flag"

	maxLog2OrderCntLSBMinus4  = 28
	maxAdditionalLtPfocLSBLen = 32
	afpsAttributeIndexBits    = 7
	patchPointSizeBits        = 16
)

func sortedIDs[V any](m map[uint32]V) []uint32 {
	return slices.Sorted(maps.Keys(m))
}

// writePatchSequenceData writes the parameter set arenas in ascending id
// order, followed by one patch frame layer unit per frame.
func writePatchSequenceData(fw *fieldWriter, ctx *Context) {
	if !fw.require(len(ctx.PatchSequenceParameterSets) > 0, psdUnitTypeElement, "no patch sequence parameter set") {
		return
	}
	total := len(ctx.PatchSequenceParameterSets) + len(ctx.GeometryFrameParameterSets) +
		len(ctx.AttributeFrameParameterSets) + len(ctx.GeometryPatchParameterSets) +
		len(ctx.AttributePatchParameterSets) + len(ctx.PatchFrameParameterSets) + len(ctx.Frames)
	written := 0
	unit := func(t psdUnitType, write func()) {
		if fw.err != nil {
			return
		}
		fw.ue(psdUnitTypeElement, uint32(t))
		write()
		written++
		fw.flag(psdTerminateElement, written == total)
	}

	for _, id := range sortedIDs(ctx.PatchSequenceParameterSets) {
		psps := ctx.PatchSequenceParameterSets[id]
		unit(psdSequenceParameterSet, func() { writePatchSequenceParameterSet(fw, id, &psps) })
	}
	for _, id := range sortedIDs(ctx.GeometryFrameParameterSets) {
		gfps := ctx.GeometryFrameParameterSets[id]
		unit(psdGeometryFrameParameterSet, func() { writeGeometryFrameParameterSet(fw, ctx, id, &gfps) })
	}
	for _, id := range sortedIDs(ctx.AttributeFrameParameterSets) {
		afps := ctx.AttributeFrameParameterSets[id]
		unit(psdAttributeFrameParameterSet, func() { writeAttributeFrameParameterSet(fw, ctx, id, &afps) })
	}
	for _, id := range sortedIDs(ctx.GeometryPatchParameterSets) {
		gpps := ctx.GeometryPatchParameterSets[id]
		unit(psdGeometryPatchParameterSet, func() { writeGeometryPatchParameterSet(fw, ctx, id, &gpps) })
	}
	for _, id := range sortedIDs(ctx.AttributePatchParameterSets) {
		apps := ctx.AttributePatchParameterSets[id]
		unit(psdAttributePatchParameterSet, func() { writeAttributePatchParameterSet(fw, ctx, id, &apps) })
	}
	for _, id := range sortedIDs(ctx.PatchFrameParameterSets) {
		pfps := ctx.PatchFrameParameterSets[id]
		unit(psdFrameParameterSet, func() { writePatchFrameParameterSet(fw, ctx, id, &pfps) })
	}
	var fs frameState
	for i := range ctx.Frames {
		unit(psdPatchFrameLayerUnit, func() { writePatchFrameLayerUnit(fw, ctx, &fs, &ctx.Frames[i]) })
	}
	fw.align()
}

func readPatchSequenceData(fr *fieldReader, ctx *Context) {
	var fs frameState
	for fr.err == nil {
		t := psdUnitType(fr.ue(psdUnitTypeElement))
		switch t {
		case psdSequenceParameterSet:
			readPatchSequenceParameterSet(fr, ctx)
		case psdGeometryFrameParameterSet:
			readGeometryFrameParameterSet(fr, ctx)
		case psdAttributeFrameParameterSet:
			readAttributeFrameParameterSet(fr, ctx)
		case psdGeometryPatchParameterSet:
			readGeometryPatchParameterSet(fr, ctx)
		case psdAttributePatchParameterSet:
			readAttributePatchParameterSet(fr, ctx)
		case psdFrameParameterSet:
			readPatchFrameParameterSet(fr, ctx)
		case psdPatchFrameLayerUnit:
			readPatchFrameLayerUnit(fr, ctx, &fs)
		default:
			fr.fail(psdUnitTypeElement, "unknown patch sequence data unit type %d", t)
		}
		if fr.err == nil {
			logger.Tracef(t, "decoded patch sequence data unit at bit %d", fr.r.Pos())
		}
		if fr.flag(psdTerminateElement) {
			break
		}
	}
	fr.align("psd_byte_alignment")
	fr.require(len(ctx.PatchSequenceParameterSets) > 0, psdUnitTypeElement, "no patch sequence parameter set")
}

// requireID checks that an arena key matches the id stored in the value.
func requireID(fw *fieldWriter, name string, key, id uint32) bool {
	return fw.require(key == id, name, "arena key %d holds id %d", key, id)
}

// readID reads a parameter set id and rejects ids already decoded.
func readID[V any](fr *fieldReader, name string, arena map[uint32]V) uint32 {
	id := fr.ue(name)
	if _, dup := arena[id]; dup {
		fr.fail(name, "duplicate id %d", id)
	}
	return id
}

func readRef[V any](fr *fieldReader, name string, arena map[uint32]V) (V, uint32) {
	id := fr.ue(name)
	v, ok := arena[id]
	if fr.err == nil && !ok {
		fr.fail(name, "reference to undefined id %d", id)
	}
	return v, id
}

func writePatchSequenceParameterSet(fw *fieldWriter, key uint32, psps *PatchSequenceParameterSet) {
	if !requireID(fw, "psps_patch_sequence_parameter_set_id", key, psps.ID) {
		return
	}
	fw.ue("psps_patch_sequence_parameter_set_id", psps.ID)
	if !fw.require(psps.Log2MaxPatchFrameOrderCntLSBMinus4 <= maxLog2OrderCntLSBMinus4, "psps_log2_max_patch_frame_order_cnt_lsb_minus4",
		"value %d exceeds %d", psps.Log2MaxPatchFrameOrderCntLSBMinus4, maxLog2OrderCntLSBMinus4) {
		return
	}
	fw.ue("psps_log2_max_patch_frame_order_cnt_lsb_minus4", psps.Log2MaxPatchFrameOrderCntLSBMinus4)
	fw.ue("psps_max_dec_patch_frame_buffering_minus1", psps.MaxDecPatchFrameBufferingMinus1)
	fw.flag("psps_long_term_ref_patch_frames_flag", psps.LongTermRefPatchFramesEnabled)
	fw.ue("psps_num_ref_patch_frame_lists_in_psps", uint32(len(psps.RefLists))) //nolint:gosec // bounded by memory
	for i := range psps.RefLists {
		writeRefListStruct(fw, &psps.RefLists[i], psps)
	}
}

func readPatchSequenceParameterSet(fr *fieldReader, ctx *Context) {
	var psps PatchSequenceParameterSet
	psps.ID = readID(fr, "psps_patch_sequence_parameter_set_id", ctx.PatchSequenceParameterSets)
	psps.Log2MaxPatchFrameOrderCntLSBMinus4 = fr.ue("psps_log2_max_patch_frame_order_cnt_lsb_minus4")
	if !fr.require(psps.Log2MaxPatchFrameOrderCntLSBMinus4 <= maxLog2OrderCntLSBMinus4, "psps_log2_max_patch_frame_order_cnt_lsb_minus4",
		"value %d exceeds %d", psps.Log2MaxPatchFrameOrderCntLSBMinus4, maxLog2OrderCntLSBMinus4) {
		return
	}
	psps.MaxDecPatchFrameBufferingMinus1 = fr.ue("psps_max_dec_patch_frame_buffering_minus1")
	psps.LongTermRefPatchFramesEnabled = fr.flag("psps_long_term_ref_patch_frames_flag")
	n := fr.count("psps_num_ref_patch_frame_lists_in_psps", fr.ue("psps_num_ref_patch_frame_lists_in_psps"), 1)
	for range n {
		l := readRefListStruct(fr, &psps)
		if fr.err != nil {
			return
		}
		psps.RefLists = append(psps.RefLists, l)
	}
	if fr.err == nil {
		ctx.PatchSequenceParameterSets[psps.ID] = psps
	}
}

func writeRefListStruct(fw *fieldWriter, l *RefListStruct, psps *PatchSequenceParameterSet) {
	fw.ue("num_ref_entries", uint32(len(l.Entries))) //nolint:gosec // bounded by memory
	for _, e := range l.Entries {
		if psps.LongTermRefPatchFramesEnabled {
			fw.flag("st_ref_patch_frame_flag", e.ShortTerm)
		} else {
			fw.require(e.ShortTerm, "st_ref_patch_frame_flag", "long-term entry without long-term references")
		}
		if e.ShortTerm {
			fw.require(e.LongTermLSB == 0, "pfoc_lsb_lt", "long-term lsb on a short-term entry")
			abs := uint32(e.DeltaPOC) //nolint:gosec // non-negative branch
			if e.DeltaPOC < 0 {
				abs = uint32(-int64(e.DeltaPOC)) //nolint:gosec // at most 2^31
			}
			fw.ue("abs_delta_pfoc_st", abs)
			if abs > 0 {
				fw.flag("straf_entry_sign_flag", e.DeltaPOC >= 0)
			}
		} else {
			fw.require(e.DeltaPOC == 0, "abs_delta_pfoc_st", "poc delta on a long-term entry")
			fw.u("pfoc_lsb_lt", uint64(e.LongTermLSB), psps.OrderCntLSBBits())
		}
	}
}

func readRefListStruct(fr *fieldReader, psps *PatchSequenceParameterSet) RefListStruct {
	var l RefListStruct
	n := fr.count("num_ref_entries", fr.ue("num_ref_entries"), 1)
	for range n {
		e := RefEntry{ShortTerm: true}
		if psps.LongTermRefPatchFramesEnabled {
			e.ShortTerm = fr.flag("st_ref_patch_frame_flag")
		}
		if e.ShortTerm {
			abs := int64(fr.ue("abs_delta_pfoc_st"))
			if abs > 0 && !fr.flag("straf_entry_sign_flag") {
				abs = -abs
			}
			if !fr.require(abs >= math.MinInt32 && abs <= math.MaxInt32, "abs_delta_pfoc_st", "poc delta %d out of range", abs) {
				return l
			}
			e.DeltaPOC = int32(abs)
		} else {
			e.LongTermLSB = fr.u32("pfoc_lsb_lt", psps.OrderCntLSBBits())
		}
		if fr.err != nil {
			return l
		}
		l.Entries = append(l.Entries, e)
	}
	return l
}

func writeGeometryFrameParameterSet(fw *fieldWriter, ctx *Context, key uint32, gfps *GeometryFrameParameterSet) {
	if !requireID(fw, "gfps_geometry_frame_parameter_set_id", key, gfps.ID) {
		return
	}
	_, ok := ctx.PatchSequenceParameterSets[gfps.PatchSequenceParameterSetID]
	if !fw.require(ok, "gfps_patch_sequence_parameter_set_id", "reference to undefined id %d", gfps.PatchSequenceParameterSetID) {
		return
	}
	gps := &ctx.SPS.Geometry
	fw.ue("gfps_geometry_frame_parameter_set_id", gfps.ID)
	fw.ue("gfps_patch_sequence_parameter_set_id", gfps.PatchSequenceParameterSetID)
	if gps.MetadataEnabled {
		fw.flag("gfps_override_geometry_params_flag", gfps.Metadata.Present)
		if m, ok := gfps.Metadata.Get(); ok {
			writeGeometryMetadata(fw, &m)
		}
		requireInherited(fw, "gfps_override_geometry_params_flag", gfps.Metadata)
	} else {
		requireZero(fw, "gfps_override_geometry_params_flag", gfps.Metadata, "disabled geometry metadata override")
	}
	if gps.PatchMetadataEnabled {
		fw.flag("gfps_override_geometry_patch_params_flag", gfps.PatchMetadata.Present)
		if f, ok := gfps.PatchMetadata.Get(); ok {
			writeGeometryPatchFlags(fw, f)
		}
		requireInherited(fw, "gfps_override_geometry_patch_params_flag", gfps.PatchMetadata)
	} else {
		requireZero(fw, "gfps_override_geometry_patch_params_flag", gfps.PatchMetadata, "disabled geometry patch metadata override")
	}
	fw.align()
}

func readGeometryFrameParameterSet(fr *fieldReader, ctx *Context) {
	var gfps GeometryFrameParameterSet
	gfps.ID = readID(fr, "gfps_geometry_frame_parameter_set_id", ctx.GeometryFrameParameterSets)
	_, gfps.PatchSequenceParameterSetID = readRef(fr, "gfps_patch_sequence_parameter_set_id", ctx.PatchSequenceParameterSets)
	gps := &ctx.SPS.Geometry
	if gps.MetadataEnabled {
		gfps.Metadata.Present = fr.flag("gfps_override_geometry_params_flag")
		if gfps.Metadata.Present {
			readGeometryMetadata(fr, &gfps.Metadata.Value)
		}
	}
	if gps.PatchMetadataEnabled {
		gfps.PatchMetadata.Present = fr.flag("gfps_override_geometry_patch_params_flag")
		if gfps.PatchMetadata.Present {
			gfps.PatchMetadata.Value = readGeometryPatchFlags(fr)
		}
	}
	fr.align("gfps_byte_alignment")
	if fr.err == nil {
		ctx.GeometryFrameParameterSets[gfps.ID] = gfps
	}
}

func writeAttributeFrameParameterSet(fw *fieldWriter, ctx *Context, key uint32, afps *AttributeFrameParameterSet) {
	if !requireID(fw, "afps_attribute_frame_parameter_set_id", key, afps.ID) {
		return
	}
	_, ok := ctx.PatchSequenceParameterSets[afps.PatchSequenceParameterSetID]
	if !fw.require(ok, "afps_patch_sequence_parameter_set_id", "reference to undefined id %d", afps.PatchSequenceParameterSetID) {
		return
	}
	if !fw.require(int(afps.AttributeIndex) < ctx.SPS.AttributeCount(), "afps_attribute_index",
		"attribute index %d with %d attributes", afps.AttributeIndex, ctx.SPS.AttributeCount()) {
		return
	}
	aps := &ctx.SPS.Attributes[afps.AttributeIndex]
	fw.ue("afps_attribute_frame_parameter_set_id", afps.ID)
	fw.ue("afps_patch_sequence_parameter_set_id", afps.PatchSequenceParameterSetID)
	fw.u("afps_attribute_index", uint64(afps.AttributeIndex), afpsAttributeIndexBits)
	if aps.MetadataEnabled {
		fw.flag("afps_override_attribute_params_flag", afps.Metadata.Present)
		if m, ok := afps.Metadata.Get(); ok {
			writeAttributeMetadata(fw, &m, aps.Dimension())
		}
		requireInherited(fw, "afps_override_attribute_params_flag", afps.Metadata)
	} else {
		requireZero(fw, "afps_override_attribute_params_flag", afps.Metadata, "disabled attribute metadata override")
	}
	if aps.PatchMetadataEnabled {
		fw.flag("afps_override_attribute_patch_params_flag", afps.PatchMetadata.Present)
		if f, ok := afps.PatchMetadata.Get(); ok {
			writeAttributePatchFlags(fw, f)
		}
		requireInherited(fw, "afps_override_attribute_patch_params_flag", afps.PatchMetadata)
	} else {
		requireZero(fw, "afps_override_attribute_patch_params_flag", afps.PatchMetadata, "disabled attribute patch metadata override")
	}
	fw.align()
}

func readAttributeFrameParameterSet(fr *fieldReader, ctx *Context) {
	var afps AttributeFrameParameterSet
	afps.ID = readID(fr, "afps_attribute_frame_parameter_set_id", ctx.AttributeFrameParameterSets)
	_, afps.PatchSequenceParameterSetID = readRef(fr, "afps_patch_sequence_parameter_set_id", ctx.PatchSequenceParameterSets)
	afps.AttributeIndex = fr.u8("afps_attribute_index", afpsAttributeIndexBits)
	if !fr.require(int(afps.AttributeIndex) < ctx.SPS.AttributeCount(), "afps_attribute_index",
		"attribute index %d with %d attributes", afps.AttributeIndex, ctx.SPS.AttributeCount()) {
		return
	}
	aps := &ctx.SPS.Attributes[afps.AttributeIndex]
	if aps.MetadataEnabled {
		afps.Metadata.Present = fr.flag("afps_override_attribute_params_flag")
		if afps.Metadata.Present {
			readAttributeMetadata(fr, &afps.Metadata.Value, aps.Dimension())
		}
	}
	if aps.PatchMetadataEnabled {
		afps.PatchMetadata.Present = fr.flag("afps_override_attribute_patch_params_flag")
		if afps.PatchMetadata.Present {
			afps.PatchMetadata.Value = readAttributePatchFlags(fr)
		}
	}
	fr.align("afps_byte_alignment")
	if fr.err == nil {
		ctx.AttributeFrameParameterSets[afps.ID] = afps
	}
}

// geometryPatchFlags returns the geometry patch metadata categories enabled
// for patches using gfps.
func geometryPatchFlags(gps *GeometryParameterSet, gfps *GeometryFrameParameterSet) GeometryPatchFlags {
	if !gps.PatchMetadataEnabled {
		return GeometryPatchFlags{}
	}
	return gfps.PatchMetadata.Resolve(gps.PatchMetadata)
}

// attributePatchFlags returns the attribute patch metadata categories
// enabled for patches using afps.
func attributePatchFlags(aps *AttributeParameterSet, afps *AttributeFrameParameterSet) AttributePatchFlags {
	if !aps.PatchMetadataEnabled {
		return AttributePatchFlags{}
	}
	return afps.PatchMetadata.Resolve(aps.PatchMetadata)
}

func writeGeometryPatchParameterSet(fw *fieldWriter, ctx *Context, key uint32, gpps *GeometryPatchParameterSet) {
	if !requireID(fw, "gpps_geometry_patch_parameter_set_id", key, gpps.ID) {
		return
	}
	gfps, ok := ctx.GeometryFrameParameterSets[gpps.GeometryFrameParameterSetID]
	if !fw.require(ok, "gpps_geometry_frame_parameter_set_id", "reference to undefined id %d", gpps.GeometryFrameParameterSetID) {
		return
	}
	fw.ue("gpps_geometry_patch_parameter_set_id", gpps.ID)
	fw.ue("gpps_geometry_frame_parameter_set_id", gpps.GeometryFrameParameterSetID)
	flags := geometryPatchFlags(&ctx.SPS.Geometry, &gfps)
	if flags.Any() {
		fw.flag("gpps_geometry_patch_params_present_flag", gpps.Metadata.Present)
		if m, ok := gpps.Metadata.Get(); ok {
			writeGeometryPatchMetadata(fw, &m, flags)
		}
		requireInherited(fw, "gpps_geometry_patch_params_present_flag", gpps.Metadata)
	} else {
		requireZero(fw, "gpps_geometry_patch_params_present_flag", gpps.Metadata, "geometry patch metadata without an enabled category")
	}
	fw.align()
}

func readGeometryPatchParameterSet(fr *fieldReader, ctx *Context) {
	var gpps GeometryPatchParameterSet
	gpps.ID = readID(fr, "gpps_geometry_patch_parameter_set_id", ctx.GeometryPatchParameterSets)
	var gfps GeometryFrameParameterSet
	gfps, gpps.GeometryFrameParameterSetID = readRef(fr, "gpps_geometry_frame_parameter_set_id", ctx.GeometryFrameParameterSets)
	flags := geometryPatchFlags(&ctx.SPS.Geometry, &gfps)
	if flags.Any() {
		gpps.Metadata.Present = fr.flag("gpps_geometry_patch_params_present_flag")
		if gpps.Metadata.Present {
			readGeometryPatchMetadata(fr, &gpps.Metadata.Value, flags)
		}
	}
	fr.align("gpps_byte_alignment")
	if fr.err == nil {
		ctx.GeometryPatchParameterSets[gpps.ID] = gpps
	}
}

func writeGeometryPatchMetadata(fw *fieldWriter, m *GeometryPatchMetadata, flags GeometryPatchFlags) {
	writeCategory(fw, "gpm_geometry_patch_scale_params_present_flag", flags.Scale, m.Scale, func(v [3]uint32) {
		for _, c := range v {
			fw.u("gpm_geometry_patch_scale_on_axis", uint64(c), 32) //nolint:mnd // u(32)
		}
	})
	writeCategory(fw, "gpm_geometry_patch_offset_params_present_flag", flags.Offset, m.Offset, func(v [3]int32) {
		for _, c := range v {
			fw.i32("gpm_geometry_patch_offset_on_axis", c)
		}
	})
	writeCategory(fw, "gpm_geometry_patch_rotation_params_present_flag", flags.Rotation, m.Rotation, func(v [3]int32) {
		for _, c := range v {
			fw.i32("gpm_geometry_patch_rotation_on_axis", c)
		}
	})
	writeCategory(fw, "gpm_geometry_patch_point_size_info_present_flag", flags.PointSize, m.PointSize, func(v uint16) {
		fw.u("gpm_geometry_patch_point_size_info", uint64(v), patchPointSizeBits)
	})
	writeCategory(fw, "gpm_geometry_patch_point_shape_info_present_flag", flags.PointShape, m.PointShape, func(v uint8) {
		fw.u("gpm_geometry_patch_point_shape_info", uint64(v), 8) //nolint:mnd // u(8)
	})
}

func readGeometryPatchMetadata(fr *fieldReader, m *GeometryPatchMetadata, flags GeometryPatchFlags) {
	readCategory(fr, "gpm_geometry_patch_scale_params_present_flag", flags.Scale, &m.Scale, func() (v [3]uint32) {
		for i := range v {
			v[i] = fr.u32("gpm_geometry_patch_scale_on_axis", 32) //nolint:mnd // u(32)
		}
		return v
	})
	readCategory(fr, "gpm_geometry_patch_offset_params_present_flag", flags.Offset, &m.Offset, func() (v [3]int32) {
		for i := range v {
			v[i] = fr.i32("gpm_geometry_patch_offset_on_axis")
		}
		return v
	})
	readCategory(fr, "gpm_geometry_patch_rotation_params_present_flag", flags.Rotation, &m.Rotation, func() (v [3]int32) {
		for i := range v {
			v[i] = fr.i32("gpm_geometry_patch_rotation_on_axis")
		}
		return v
	})
	readCategory(fr, "gpm_geometry_patch_point_size_info_present_flag", flags.PointSize, &m.PointSize, func() uint16 {
		return fr.u16("gpm_geometry_patch_point_size_info", patchPointSizeBits)
	})
	readCategory(fr, "gpm_geometry_patch_point_shape_info_present_flag", flags.PointShape, &m.PointShape, func() uint8 {
		return fr.u8("gpm_geometry_patch_point_shape_info", 8) //nolint:mnd // u(8)
	})
}

// writeCategory writes a patch metadata category: its presence flag and
// value when the category is enabled, nothing otherwise. Values that would
// not be written are rejected.
func writeCategory[T any](fw *fieldWriter, name string, enabled bool, o Override[T], write func(T)) {
	if !enabled {
		requireZero(fw, name, o, "disabled category")
		return
	}
	fw.flag(name, o.Present)
	if o.Present {
		write(o.Value)
	}
	requireInherited(fw, name, o)
}

func readCategory[T any](fr *fieldReader, name string, enabled bool, o *Override[T], read func() T) {
	if !enabled {
		return
	}
	o.Present = fr.flag(name)
	if o.Present {
		o.Value = read()
	}
}

func writeAttributePatchParameterSet(fw *fieldWriter, ctx *Context, key uint32, apps *AttributePatchParameterSet) {
	if !requireID(fw, "apps_attribute_patch_parameter_set_id", key, apps.ID) {
		return
	}
	afps, ok := ctx.AttributeFrameParameterSets[apps.AttributeFrameParameterSetID]
	if !fw.require(ok, "apps_attribute_frame_parameter_set_id", "reference to undefined id %d", apps.AttributeFrameParameterSetID) {
		return
	}
	aps := &ctx.SPS.Attributes[afps.AttributeIndex]
	fw.ue("apps_attribute_patch_parameter_set_id", apps.ID)
	fw.ue("apps_attribute_frame_parameter_set_id", apps.AttributeFrameParameterSetID)
	flags := attributePatchFlags(aps, &afps)
	if flags.Any() {
		fw.flag("apps_attribute_patch_params_present_flag", apps.Metadata.Present)
		if m, ok := apps.Metadata.Get(); ok {
			dim := aps.Dimension()
			writeCategory(fw, "apm_attribute_patch_scale_params_present_flag", flags.Scale, m.Scale, func(v []uint32) {
				writeScaleValues(fw, "apm_attribute_patch_scale", v, dim)
			})
			writeCategory(fw, "apm_attribute_patch_offset_params_present_flag", flags.Offset, m.Offset, func(v []int32) {
				writeOffsetValues(fw, "apm_attribute_patch_offset", v, dim)
			})
		}
		requireInherited(fw, "apps_attribute_patch_params_present_flag", apps.Metadata)
	} else {
		requireZero(fw, "apps_attribute_patch_params_present_flag", apps.Metadata, "attribute patch metadata without an enabled category")
	}
	fw.align()
}

func readAttributePatchParameterSet(fr *fieldReader, ctx *Context) {
	var apps AttributePatchParameterSet
	apps.ID = readID(fr, "apps_attribute_patch_parameter_set_id", ctx.AttributePatchParameterSets)
	var afps AttributeFrameParameterSet
	afps, apps.AttributeFrameParameterSetID = readRef(fr, "apps_attribute_frame_parameter_set_id", ctx.AttributeFrameParameterSets)
	if fr.err != nil {
		return
	}
	aps := &ctx.SPS.Attributes[afps.AttributeIndex]
	flags := attributePatchFlags(aps, &afps)
	if flags.Any() {
		apps.Metadata.Present = fr.flag("apps_attribute_patch_params_present_flag")
		if apps.Metadata.Present {
			dim := aps.Dimension()
			m := &apps.Metadata.Value
			readCategory(fr, "apm_attribute_patch_scale_params_present_flag", flags.Scale, &m.Scale, func() []uint32 {
				return readScaleValues(fr, "apm_attribute_patch_scale", dim)
			})
			readCategory(fr, "apm_attribute_patch_offset_params_present_flag", flags.Offset, &m.Offset, func() []int32 {
				return readOffsetValues(fr, "apm_attribute_patch_offset", dim)
			})
		}
	}
	fr.align("apps_byte_alignment")
	if fr.err == nil {
		ctx.AttributePatchParameterSets[apps.ID] = apps
	}
}

func writePatchFrameParameterSet(fw *fieldWriter, ctx *Context, key uint32, pfps *PatchFrameParameterSet) {
	if !requireID(fw, "pfps_patch_frame_parameter_set_id", key, pfps.ID) {
		return
	}
	_, ok := ctx.PatchSequenceParameterSets[pfps.PatchSequenceParameterSetID]
	if !fw.require(ok, "pfps_patch_sequence_parameter_set_id", "reference to undefined id %d", pfps.PatchSequenceParameterSetID) {
		return
	}
	if !fw.require(len(pfps.LocalOverrideAttributePatch) == ctx.SPS.AttributeCount(), "pfps_local_override_attribute_patch_enable_flag",
		"%d flags for %d attributes", len(pfps.LocalOverrideAttributePatch), ctx.SPS.AttributeCount()) {
		return
	}
	fw.ue("pfps_patch_frame_parameter_set_id", pfps.ID)
	fw.ue("pfps_patch_sequence_parameter_set_id", pfps.PatchSequenceParameterSetID)
	fw.flag("pfps_local_override_geometry_patch_enable_flag", pfps.LocalOverrideGeometryPatch)
	for _, f := range pfps.LocalOverrideAttributePatch {
		fw.flag("pfps_local_override_attribute_patch_enable_flag", f)
	}
	if !fw.require(pfps.AdditionalLtPfocLSBLen <= maxAdditionalLtPfocLSBLen, "pfps_additional_lt_pfoc_lsb_len",
		"value %d exceeds %d", pfps.AdditionalLtPfocLSBLen, maxAdditionalLtPfocLSBLen) {
		return
	}
	fw.ue("pfps_additional_lt_pfoc_lsb_len", pfps.AdditionalLtPfocLSBLen)
	if ctx.SPS.PatchOrientationEnabled {
		fw.flag("pfps_patch_orientation_present_flag", pfps.PatchOrientationPresent)
	} else {
		fw.require(!pfps.PatchOrientationPresent, "pfps_patch_orientation_present_flag", "patch orientation is not enabled")
	}
	fw.align()
}

func readPatchFrameParameterSet(fr *fieldReader, ctx *Context) {
	var pfps PatchFrameParameterSet
	pfps.ID = readID(fr, "pfps_patch_frame_parameter_set_id", ctx.PatchFrameParameterSets)
	_, pfps.PatchSequenceParameterSetID = readRef(fr, "pfps_patch_sequence_parameter_set_id", ctx.PatchSequenceParameterSets)
	pfps.LocalOverrideGeometryPatch = fr.flag("pfps_local_override_geometry_patch_enable_flag")
	for range ctx.SPS.AttributeCount() {
		pfps.LocalOverrideAttributePatch = append(pfps.LocalOverrideAttributePatch,
			fr.flag("pfps_local_override_attribute_patch_enable_flag"))
	}
	pfps.AdditionalLtPfocLSBLen = fr.ue("pfps_additional_lt_pfoc_lsb_len")
	fr.require(pfps.AdditionalLtPfocLSBLen <= maxAdditionalLtPfocLSBLen, "pfps_additional_lt_pfoc_lsb_len",
		"value %d exceeds %d", pfps.AdditionalLtPfocLSBLen, maxAdditionalLtPfocLSBLen)
	if ctx.SPS.PatchOrientationEnabled {
		pfps.PatchOrientationPresent = fr.flag("pfps_patch_orientation_present_flag")
	}
	fr.align("pfps_byte_alignment")
	if fr.err == nil {
		ctx.PatchFrameParameterSets[pfps.ID] = pfps
	}
}
