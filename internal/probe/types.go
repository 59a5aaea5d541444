package probe

import (
	"time"

	"reeldex/internal/catalog"
)

// Result is the normalized technical record for one probed file.
type Result struct {
	Resolution        string
	ResolutionClass   string
	VideoCodec        string
	BitDepth          int
	FrameRate         string
	ColorTransfer     string
	ColorPrimaries    string
	HDRFormats        []string
	DVProfile         *int
	AudioCodec        string
	AudioChannels     int
	AudioLanguage     string
	AudioTracks       []catalog.AudioTrack
	SubtitleLanguages []string
	Container         string
	SizeBytes         int64
	DurationSeconds   *float64
	MBPerMinute       *float64
	ReleaseGroup      string
	RawJSON           string
}

// DefaultTimeout bounds one ffprobe invocation.
const DefaultTimeout = 60 * time.Second

// ffprobeOutput mirrors the subset of `ffprobe -of json` output the parser
// reads. Numeric fields ffprobe prints as strings stay strings here.
type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	Index            int               `json:"index"`
	CodecType        string            `json:"codec_type"`
	CodecName        string            `json:"codec_name"`
	Profile          string            `json:"profile"`
	Width            int               `json:"width"`
	Height           int               `json:"height"`
	PixFmt           string            `json:"pix_fmt"`
	BitsPerRawSample string            `json:"bits_per_raw_sample"`
	AvgFrameRate     string            `json:"avg_frame_rate"`
	ColorTransfer    string            `json:"color_transfer"`
	ColorPrimaries   string            `json:"color_primaries"`
	Channels         int               `json:"channels"`
	ChannelLayout    string            `json:"channel_layout"`
	BitRate          string            `json:"bit_rate"`
	Disposition      streamDisposition `json:"disposition"`
	Tags             map[string]string `json:"tags"`
	SideDataList     []ffprobeSideData `json:"side_data_list"`
}

type streamDisposition struct {
	Default int `json:"default"`
}

type ffprobeSideData struct {
	SideDataType string `json:"side_data_type"`
	DVProfile    *int   `json:"dv_profile"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

func (s *ffprobeStream) language() string {
	if s.Tags == nil {
		return ""
	}
	return s.Tags["language"]
}
