package probe

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"reeldex/internal/catalog"
)

const (
	hdrDolbyVision = "Dolby Vision"
	hdrHDR10       = "HDR10"
	hdrHDR10Plus   = "HDR10+"
	hdrHLG         = "HLG"
)

// Parse distills raw ffprobe JSON for one file into a Result. The file name
// is only used for release-group extraction; sizeBytes comes from the stat
// the walker already did and overrides format.size when positive.
func Parse(raw []byte, fileName string, sizeBytes int64) (*Result, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}

	result := &Result{
		Container:    out.Format.FormatName,
		ReleaseGroup: ReleaseGroup(fileName),
		RawJSON:      string(raw),
	}

	if sizeBytes <= 0 {
		sizeBytes, _ = strconv.ParseInt(out.Format.Size, 10, 64)
	}
	result.SizeBytes = sizeBytes

	if duration, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil && duration > 0 {
		result.DurationSeconds = &duration
		mbPerMinute := round2(float64(sizeBytes) / (1024 * 1024) / (duration / 60))
		result.MBPerMinute = &mbPerMinute
	}

	video := firstStream(out.Streams, "video")
	if video != nil {
		result.Resolution = fmt.Sprintf("%dx%d", video.Width, video.Height)
		result.ResolutionClass = ClassifyResolution(video.Width, video.Height)
		result.VideoCodec = video.CodecName
		result.BitDepth = bitDepth(video)
		result.FrameRate = video.AvgFrameRate
		result.ColorTransfer = video.ColorTransfer
		result.ColorPrimaries = video.ColorPrimaries
		result.HDRFormats, result.DVProfile = hdrFormats(video)
	}

	result.AudioTracks = audioTracks(out.Streams)
	if primary := primaryAudio(result.AudioTracks); primary != nil {
		result.AudioCodec = primary.Codec
		result.AudioChannels = primary.Channels
		result.AudioLanguage = primary.Language
	}
	result.SubtitleLanguages = subtitleLanguages(out.Streams)

	return result, nil
}

// ClassifyResolution maps pixel dimensions to a class. Thresholds test
// height OR width so wide-aspect transfers (e.g. 3840x1600) land in the
// class their width implies instead of being under-classified by height.
func ClassifyResolution(width, height int) string {
	switch {
	case height >= 2160 || width >= 3800:
		return "2160p"
	case height >= 1080 || width >= 1880:
		return "1080p"
	case height >= 720 || width >= 1240:
		return "720p"
	case height > 0:
		return "480p"
	default:
		return "other"
	}
}

func bitDepth(video *ffprobeStream) int {
	if bits, err := strconv.Atoi(video.BitsPerRawSample); err == nil && bits > 0 {
		return bits
	}
	pixFmt := strings.ToLower(video.PixFmt)
	switch {
	case strings.Contains(pixFmt, "12"):
		return 12
	case strings.Contains(pixFmt, "10le"), strings.Contains(pixFmt, "10be"), strings.Contains(pixFmt, "p10"):
		return 10
	default:
		return 8
	}
}

// hdrFormats builds the HDR format set from stream side data, with a
// transfer/primaries fallback for encoders that omit the explicit markers.
// The fallback never duplicates an HDR10 or Dolby Vision entry already
// inferred from side data.
func hdrFormats(video *ffprobeStream) ([]string, *int) {
	var (
		formats   []string
		dvProfile *int
	)
	seen := map[string]bool{}
	add := func(format string) {
		if !seen[format] {
			seen[format] = true
			formats = append(formats, format)
		}
	}

	for i := range video.SideDataList {
		side := &video.SideDataList[i]
		kind := strings.ToLower(side.SideDataType)
		switch {
		case strings.Contains(kind, "dovi") || strings.Contains(kind, "dolby vision"):
			add(hdrDolbyVision)
			if side.DVProfile != nil {
				dvProfile = side.DVProfile
			}
		case strings.Contains(kind, "mastering display"), strings.Contains(kind, "content light level"):
			add(hdrHDR10)
		case strings.Contains(kind, "hdr10+"), strings.Contains(kind, "smpte2094"), strings.Contains(kind, "smpte 2094"):
			add(hdrHDR10Plus)
		}
	}

	if strings.EqualFold(video.ColorTransfer, "arib-std-b67") {
		add(hdrHLG)
	}
	if strings.EqualFold(video.ColorTransfer, "smpte2084") &&
		strings.EqualFold(video.ColorPrimaries, "bt2020") &&
		!seen[hdrDolbyVision] && !seen[hdrHDR10] {
		add(hdrHDR10)
	}

	return formats, dvProfile
}

func audioTracks(streams []ffprobeStream) []catalog.AudioTrack {
	var tracks []catalog.AudioTrack
	for i := range streams {
		stream := &streams[i]
		if stream.CodecType != "audio" {
			continue
		}
		bitRate, _ := strconv.ParseInt(stream.BitRate, 10, 64)
		tracks = append(tracks, catalog.AudioTrack{
			Codec:    stream.CodecName,
			Profile:  stream.Profile,
			Channels: stream.Channels,
			Layout:   stream.ChannelLayout,
			Language: stream.language(),
			Default:  stream.Disposition.Default != 0,
			BitRate:  bitRate,
		})
	}
	return tracks
}

func primaryAudio(tracks []catalog.AudioTrack) *catalog.AudioTrack {
	for i := range tracks {
		if tracks[i].Default {
			return &tracks[i]
		}
	}
	if len(tracks) > 0 {
		return &tracks[0]
	}
	return nil
}

func subtitleLanguages(streams []ffprobeStream) []string {
	var languages []string
	seen := map[string]bool{}
	for i := range streams {
		stream := &streams[i]
		if stream.CodecType != "subtitle" {
			continue
		}
		language := stream.language()
		if language == "" || seen[language] {
			continue
		}
		seen[language] = true
		languages = append(languages, language)
	}
	return languages
}

func firstStream(streams []ffprobeStream, codecType string) *ffprobeStream {
	for i := range streams {
		if streams[i].CodecType == codecType {
			return &streams[i]
		}
	}
	return nil
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

var (
	bracketGroupPattern = regexp.MustCompile(`\[([^\[\]]+)\]$`)
	dashGroupPattern    = regexp.MustCompile(`-([A-Za-z0-9.]{3,20})$`)
)

// releaseGroupDenyList holds technical tokens that follow a dash in scene
// names but are not release groups: resolutions, codecs, and sources.
var releaseGroupDenyList = map[string]bool{
	"480P":    true,
	"720P":    true,
	"1080P":   true,
	"2160P":   true,
	"4K":      true,
	"X264":    true,
	"X265":    true,
	"H264":    true,
	"H265":    true,
	"HEVC":    true,
	"AVC":     true,
	"AV1":     true,
	"AAC":     true,
	"AC3":     true,
	"EAC3":    true,
	"DTS":     true,
	"DD5.1":   true,
	"DL":      true,
	"WEB":     true,
	"WEBDL":   true,
	"WEBRIP":  true,
	"HDTV":    true,
	"HDR":     true,
	"HDR10":   true,
	"SDR":     true,
	"BLURAY":  true,
	"BDRIP":   true,
	"BRRIP":   true,
	"DVDRIP":  true,
	"REMUX":   true,
	"ATMOS":   true,
	"TRUEHD":  true,
	"10BIT":   true,
	"8BIT":    true,
	"PROPER":  true,
	"REPACK":  true,
	"UNRATED": true,
}

// ReleaseGroup extracts a release group from a file name. A trailing
// bracketed token before the extension wins over the dash form; a dash
// token on the deny-list yields nothing.
func ReleaseGroup(fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSpace(base)

	if matches := bracketGroupPattern.FindStringSubmatch(base); matches != nil {
		return matches[1]
	}
	if matches := dashGroupPattern.FindStringSubmatch(base); matches != nil {
		token := matches[1]
		if !releaseGroupDenyList[strings.ToUpper(token)] {
			return token
		}
	}
	return ""
}
