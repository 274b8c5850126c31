package bitstream

import (
	"fmt"
	"math"
)

// ResolvedFrame is a patch frame with every inherited value filled in.
type ResolvedFrame struct {
	Type               FrameType
	BitCounts          BitCounts
	OrientationPresent bool
	Patches            []ResolvedPatch
}

// ResolvedPatch holds the absolute geometry of a patch and the metadata
// that applies to it.
type ResolvedPatch struct {
	Mode PatchMode

	Shift2DU         uint32
	Shift2DV         uint32
	Size2DU          uint32
	Size2DV          uint32
	Shift3DTangent   uint32
	Shift3DBitangent uint32
	Shift3DNormal    uint32
	NormalAxis       uint8
	ProjectionMode   bool
	Orientation      uint8
	LOD              uint32

	InSeparateVideo bool
	PointCount      uint32

	Geometry   ResolvedGeometryMetadata
	Attributes []ResolvedAttributeMetadata
}

type ResolvedGeometryMetadata struct {
	Frame GeometryMetadata
	Patch GeometryPatchMetadata
}

type ResolvedAttributeMetadata struct {
	Frame AttributeMetadata
	Patch AttributePatchMetadata
}

// Resolve walks the frames of ctx in order and resolves bit-count
// inheritance, patch prediction and the metadata id chains. It fails with
// ErrUnsupportedConfiguration when a reference cannot be followed.
func Resolve(ctx *Context) ([]ResolvedFrame, error) {
	if ctx == nil {
		return nil, &SyntaxError{Kind: ErrUnsupportedConfiguration, Element: "context", Offset: -1, Err: errNilContext}
	}
	return resolve(ctx, ErrUnsupportedConfiguration)
}

type resolver struct {
	ctx  *Context
	kind error
}

func (r *resolver) errorf(frame, patch int, element string, format string, args ...any) error {
	where := fmt.Sprintf("frame %d", frame)
	if patch >= 0 {
		where += fmt.Sprintf(" patch %d", patch)
	}
	return newSyntaxError(r.kind, where+": "+element, -1, format, args...)
}

func resolve(ctx *Context, kind error) ([]ResolvedFrame, error) {
	r := resolver{ctx: ctx, kind: kind}
	frames := make([]ResolvedFrame, 0, len(ctx.Frames))
	var prev *ResolvedFrame
	for i := range ctx.Frames {
		rf, err := r.frame(i, &ctx.Frames[i], prev)
		if err != nil {
			return nil, err
		}
		frames = append(frames, rf)
		prev = &frames[len(frames)-1]
	}
	return frames, nil
}

func (r *resolver) frame(idx int, f *PatchFrame, prev *ResolvedFrame) (ResolvedFrame, error) {
	h := &f.Header
	rf := ResolvedFrame{Type: h.Type}
	pfps, ok := r.ctx.PatchFrameParameterSets[h.PatchFrameParameterSetID]
	if !ok {
		return rf, r.errorf(idx, -1, "pfh_patch_frame_parameter_set_id", "reference to undefined id %d", h.PatchFrameParameterSetID)
	}
	rf.OrientationPresent = pfps.PatchOrientationPresent

	if h.Type == FrameP && prev == nil {
		return rf, r.errorf(idx, -1, "pfh_type", "P frame without a previous frame")
	}
	for c, o := range h.BitCounts {
		switch {
		case o.Present:
			rf.BitCounts[c] = o.Value
		case h.Type == FrameI:
			return rf, r.errorf(idx, -1, bitCountElements[c], "I frames carry the full bit-count table")
		default:
			rf.BitCounts[c] = prev.BitCounts[c]
		}
	}

	var lastU, lastV uint32
	for j, patch := range f.Patches {
		var (
			rp  ResolvedPatch
			err error
		)
		switch p := patch.(type) {
		case IntraPatch:
			rp, err = r.intra(idx, j, &p, &pfps, lastU, lastV)
		case DeltaPatch:
			rp, err = r.delta(idx, j, &p, prev)
		case SkipPatch:
			if prev == nil || j >= len(prev.Patches) {
				return rf, r.errorf(idx, j, "pfdu_patch_mode", "skip patch without a patch %d in the previous frame", j)
			}
			rp = prev.Patches[j]
			rp.Mode = PatchSkip
		case PCMPatch:
			rp = ResolvedPatch{
				Mode:            PatchPCM,
				Shift2DU:        p.Shift2DU,
				Shift2DV:        p.Shift2DV,
				Size2DU:         p.Size2DU,
				Size2DV:         p.Size2DV,
				InSeparateVideo: p.InSeparateVideo,
				PointCount:      p.PointCount,
			}
		default:
			err = r.errorf(idx, j, "pfdu_patch_mode", "unsupported patch record %T", patch)
		}
		if err != nil {
			return rf, err
		}
		if rp.Mode == PatchIntra || rp.Mode == PatchDelta {
			lastU, lastV = rp.Size2DU, rp.Size2DV
		}
		rf.Patches = append(rf.Patches, rp)
	}
	return rf, nil
}

// addDelta applies a signed delta to an unsigned base.
func addDelta(base uint32, delta int32) (uint32, bool) {
	v := int64(base) + int64(delta)
	return uint32(v), v >= 0 && v <= math.MaxUint32 //nolint:gosec // range checked
}

func (r *resolver) intra(idx, j int, p *IntraPatch, pfps *PatchFrameParameterSet, lastU, lastV uint32) (ResolvedPatch, error) {
	rp := ResolvedPatch{
		Mode:             PatchIntra,
		Shift2DU:         p.Shift2DU,
		Shift2DV:         p.Shift2DV,
		Shift3DTangent:   p.Shift3DTangent,
		Shift3DBitangent: p.Shift3DBitangent,
		Shift3DNormal:    p.Shift3DNormal,
		NormalAxis:       p.NormalAxis,
		ProjectionMode:   p.ProjectionMode,
		Orientation:      p.Orientation,
		LOD:              p.LOD,
	}
	var okU, okV bool
	rp.Size2DU, okU = addDelta(lastU, p.DeltaSize2DU)
	rp.Size2DV, okV = addDelta(lastV, p.DeltaSize2DV)
	if !okU || !okV {
		return rp, r.errorf(idx, j, "pid_2d_delta_size_u", "patch size out of range")
	}

	sps := &r.ctx.SPS
	rp.Geometry.Frame = sequenceGeometryMetadata(&sps.Geometry)
	if id, ok := p.GeometryPatchParameterSetID.Get(); ok {
		gpps, ok := r.ctx.GeometryPatchParameterSets[id]
		if !ok {
			return rp, r.errorf(idx, j, "pid_geometry_patch_parameter_set_id", "reference to undefined id %d", id)
		}
		gfps, ok := r.ctx.GeometryFrameParameterSets[gpps.GeometryFrameParameterSetID]
		if !ok {
			return rp, r.errorf(idx, j, "gpps_geometry_frame_parameter_set_id", "reference to undefined id %d", gpps.GeometryFrameParameterSetID)
		}
		rp.Geometry.Frame = gfps.Metadata.Resolve(rp.Geometry.Frame)
		rp.Geometry.Patch = gpps.Metadata.Value
	}

	if sps.AttributeCount() == 0 {
		return rp, nil
	}
	if len(p.AttributePatchParameterSetIDs) != 0 && len(p.AttributePatchParameterSetIDs) != sps.AttributeCount() {
		return rp, r.errorf(idx, j, "pid_attribute_patch_parameter_set_id", "%d attribute overrides for %d attributes",
			len(p.AttributePatchParameterSetIDs), sps.AttributeCount())
	}
	rp.Attributes = make([]ResolvedAttributeMetadata, sps.AttributeCount())
	for i := range rp.Attributes {
		rp.Attributes[i].Frame = sequenceAttributeMetadata(&sps.Attributes[i])
		if len(p.AttributePatchParameterSetIDs) == 0 {
			continue
		}
		id, ok := p.AttributePatchParameterSetIDs[i].Get()
		if !ok {
			continue
		}
		apps, ok := r.ctx.AttributePatchParameterSets[id]
		if !ok {
			return rp, r.errorf(idx, j, "pid_attribute_patch_parameter_set_id", "reference to undefined id %d", id)
		}
		afps, ok := r.ctx.AttributeFrameParameterSets[apps.AttributeFrameParameterSetID]
		if !ok {
			return rp, r.errorf(idx, j, "apps_attribute_frame_parameter_set_id", "reference to undefined id %d", apps.AttributeFrameParameterSetID)
		}
		if int(afps.AttributeIndex) != i {
			return rp, r.errorf(idx, j, "pid_attribute_patch_parameter_set_id",
				"attribute %d override names a parameter set for attribute %d", i, afps.AttributeIndex)
		}
		rp.Attributes[i].Frame = afps.Metadata.Resolve(rp.Attributes[i].Frame)
		rp.Attributes[i].Patch = apps.Metadata.Value
	}
	return rp, nil
}

func (r *resolver) delta(idx, j int, p *DeltaPatch, prev *ResolvedFrame) (ResolvedPatch, error) {
	if prev == nil || int(p.ReferenceIndex) >= len(prev.Patches) {
		return ResolvedPatch{}, r.errorf(idx, j, "dpdu_patch_index", "reference to missing patch %d of the previous frame", p.ReferenceIndex)
	}
	ref := prev.Patches[p.ReferenceIndex]
	if ref.Mode == PatchPCM {
		return ResolvedPatch{}, r.errorf(idx, j, "dpdu_patch_index", "reference to pcm patch %d", p.ReferenceIndex)
	}
	rp := ref
	rp.Mode = PatchDelta
	deltas := []struct {
		v     *uint32
		delta int32
		name  string
	}{
		{&rp.Shift2DU, p.DeltaShift2DU, "dpdu_2d_shift_u"},
		{&rp.Shift2DV, p.DeltaShift2DV, "dpdu_2d_shift_v"},
		{&rp.Size2DU, p.DeltaSize2DU, "dpdu_2d_delta_size_u"},
		{&rp.Size2DV, p.DeltaSize2DV, "dpdu_2d_delta_size_v"},
		{&rp.Shift3DTangent, p.DeltaShift3DTangent, "dpdu_3d_shift_tangent_axis"},
		{&rp.Shift3DBitangent, p.DeltaShift3DBitangent, "dpdu_3d_shift_bitangent_axis"},
		{&rp.Shift3DNormal, p.DeltaShift3DNormal, "dpdu_3d_shift_normal_axis"},
	}
	for _, d := range deltas {
		v, ok := addDelta(*d.v, d.delta)
		if !ok {
			return rp, r.errorf(idx, j, d.name, "value out of range after delta %d", d.delta)
		}
		*d.v = v
	}
	return rp, nil
}

func sequenceGeometryMetadata(gps *GeometryParameterSet) GeometryMetadata {
	if !gps.MetadataEnabled {
		return GeometryMetadata{}
	}
	return gps.Metadata
}

func sequenceAttributeMetadata(aps *AttributeParameterSet) AttributeMetadata {
	if !aps.MetadataEnabled {
		return AttributeMetadata{}
	}
	return aps.Metadata
}
