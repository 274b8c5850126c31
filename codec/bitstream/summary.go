package bitstream

// Summary is a compact, serializable view of a decoded Context.
type Summary struct {
	Sequence      SequenceSummary `yaml:"sequence" json:"sequence"`
	Video         map[string]int  `yaml:"video" json:"video"`
	ParameterSets map[string]int  `yaml:"parameter_sets" json:"parameter_sets"`
	Frames        []FrameSummary  `yaml:"frames" json:"frames"`
}

type SequenceSummary struct {
	ID                   uint8  `yaml:"id" json:"id"`
	Profile              uint8  `yaml:"profile" json:"profile"`
	Level                uint8  `yaml:"level" json:"level"`
	Width                uint16 `yaml:"width" json:"width"`
	Height               uint16 `yaml:"height" json:"height"`
	LayerCount           uint8  `yaml:"layer_count" json:"layer_count"`
	MultipleLayerStreams bool   `yaml:"multiple_layer_streams" json:"multiple_layer_streams"`
	AttributeCount       int    `yaml:"attribute_count" json:"attribute_count"`
	GeometryBitDepth     uint8  `yaml:"geometry_bit_depth" json:"geometry_bit_depth"`
	PCMPatches           bool   `yaml:"pcm_patches" json:"pcm_patches"`
	PCMSeparateVideo     bool   `yaml:"pcm_separate_video" json:"pcm_separate_video"`
}

type FrameSummary struct {
	Type        string         `yaml:"type" json:"type"`
	OrderCntLSB uint32         `yaml:"order_cnt_lsb" json:"order_cnt_lsb"`
	Patches     map[string]int `yaml:"patches" json:"patches"`
	PLRBlocks   int            `yaml:"plr_blocks,omitempty" json:"plr_blocks,omitempty"`
}

// Summarize builds a Summary of ctx: video stream sizes, parameter set
// counts and a patch mode histogram per frame.
func Summarize(ctx *Context) Summary {
	sps := &ctx.SPS
	s := Summary{
		Sequence: SequenceSummary{
			ID:                   sps.ID,
			Profile:              sps.ProfileTierLevel.ProfileIDC,
			Level:                sps.ProfileTierLevel.LevelIDC,
			Width:                sps.Width,
			Height:               sps.Height,
			LayerCount:           sps.LayerCount,
			MultipleLayerStreams: sps.MultipleLayerStreamsPresent,
			AttributeCount:       sps.AttributeCount(),
			GeometryBitDepth:     sps.Geometry.CoordinatesBitDepth,
			PCMPatches:           sps.PCMPatchEnabled,
			PCMSeparateVideo:     sps.PCMSeparateVideoPresent,
		},
		Video: map[string]int{},
		ParameterSets: map[string]int{
			psdSequenceParameterSet.String():       len(ctx.PatchSequenceParameterSets),
			psdGeometryFrameParameterSet.String():  len(ctx.GeometryFrameParameterSets),
			psdAttributeFrameParameterSet.String(): len(ctx.AttributeFrameParameterSets),
			psdGeometryPatchParameterSet.String():  len(ctx.GeometryPatchParameterSets),
			psdAttributePatchParameterSet.String(): len(ctx.AttributePatchParameterSets),
			psdFrameParameterSet.String():          len(ctx.PatchFrameParameterSets),
		},
	}
	for _, vt := range VideoStreams(sps) {
		s.Video[vt.String()] = len(ctx.Video[vt])
	}
	for i := range ctx.Frames {
		f := &ctx.Frames[i]
		fs := FrameSummary{
			Type:        f.Header.Type.String(),
			OrderCntLSB: f.Header.OrderCntLSB,
			Patches:     map[string]int{},
			PLRBlocks:   len(f.PointLocalReconstruction),
		}
		for _, p := range f.Patches {
			fs.Patches[p.Mode().String()]++
		}
		s.Frames = append(s.Frames, fs)
	}
	return s
}

