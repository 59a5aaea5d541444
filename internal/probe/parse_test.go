package probe

import (
	"testing"
)

func TestClassifyResolution(t *testing.T) {
	cases := []struct {
		width, height int
		want          string
	}{
		{3840, 2160, "2160p"},
		{3840, 1600, "2160p"},
		{1920, 1080, "1080p"},
		{1916, 796, "1080p"},
		{1280, 720, "720p"},
		{1248, 520, "720p"},
		{720, 480, "480p"},
		{0, 0, "other"},
	}
	for _, tc := range cases {
		if got := ClassifyResolution(tc.width, tc.height); got != tc.want {
			t.Fatalf("%dx%d: expected %q, got %q", tc.width, tc.height, tc.want, got)
		}
	}
}

func TestReleaseGroup(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Movie (2020) [YTS.MX].mkv", "YTS.MX"},
		{"Movie.2020.1080p.BluRay.x264-AMIABLE.mkv", "AMIABLE"},
		{"Movie.2020.2160p.WEB-DL.mkv", ""},
		{"Movie.2020.1080p-REMUX.mkv", ""},
		{"Movie.2020-SPARKS [EVO].mkv", "EVO"},
		{"Movie-ab.mkv", ""},
		{"plain movie.mkv", ""},
	}
	for _, tc := range cases {
		if got := ReleaseGroup(tc.name); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestParseDerivedFields(t *testing.T) {
	raw := []byte(`{
        "streams": [
            {
                "index": 0,
                "codec_type": "video",
                "codec_name": "hevc",
                "width": 3840,
                "height": 2160,
                "pix_fmt": "yuv420p10le",
                "avg_frame_rate": "24000/1001",
                "color_transfer": "smpte2084",
                "color_primaries": "bt2020",
                "side_data_list": [
                    {"side_data_type": "DOVI configuration record", "dv_profile": 8},
                    {"side_data_type": "Mastering display metadata"}
                ]
            },
            {
                "index": 1,
                "codec_type": "audio",
                "codec_name": "ac3",
                "channels": 2,
                "channel_layout": "stereo",
                "tags": {"language": "fra"}
            },
            {
                "index": 2,
                "codec_type": "audio",
                "codec_name": "truehd",
                "profile": "Dolby TrueHD + Dolby Atmos",
                "channels": 8,
                "channel_layout": "7.1",
                "bit_rate": "3500000",
                "disposition": {"default": 1},
                "tags": {"language": "eng"}
            },
            {
                "index": 3,
                "codec_type": "subtitle",
                "tags": {"language": "eng"}
            },
            {
                "index": 4,
                "codec_type": "subtitle",
                "tags": {"language": "eng"}
            },
            {
                "index": 5,
                "codec_type": "subtitle",
                "tags": {"language": "spa"}
            }
        ],
        "format": {
            "filename": "/library/Movie (2020)/Movie.2020.2160p-CiNEPHiLES.mkv",
            "format_name": "matroska,webm",
            "duration": "3600.000000",
            "size": "629145600"
        }
    }`)

	result, err := Parse(raw, "Movie.2020.2160p-CiNEPHiLES.mkv", 629145600)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if result.Resolution != "3840x2160" || result.ResolutionClass != "2160p" {
		t.Fatalf("unexpected resolution %q/%q", result.Resolution, result.ResolutionClass)
	}
	if result.BitDepth != 10 {
		t.Fatalf("expected bit depth 10 from pix_fmt, got %d", result.BitDepth)
	}
	if len(result.HDRFormats) != 2 || result.HDRFormats[0] != "Dolby Vision" || result.HDRFormats[1] != "HDR10" {
		t.Fatalf("expected [Dolby Vision HDR10] without fallback duplicate, got %v", result.HDRFormats)
	}
	if result.DVProfile == nil || *result.DVProfile != 8 {
		t.Fatalf("expected dv profile 8, got %v", result.DVProfile)
	}

	if result.AudioCodec != "truehd" || result.AudioChannels != 8 || result.AudioLanguage != "eng" {
		t.Fatalf("expected disposition-default audio to win, got %q/%d/%q", result.AudioCodec, result.AudioChannels, result.AudioLanguage)
	}
	if len(result.AudioTracks) != 2 || result.AudioTracks[1].BitRate != 3500000 {
		t.Fatalf("expected both audio tracks retained, got %v", result.AudioTracks)
	}
	if len(result.SubtitleLanguages) != 2 || result.SubtitleLanguages[0] != "eng" || result.SubtitleLanguages[1] != "spa" {
		t.Fatalf("expected unique subtitle languages in order, got %v", result.SubtitleLanguages)
	}

	if result.MBPerMinute == nil || *result.MBPerMinute != 10.0 {
		t.Fatalf("expected 10.00 MB/min for 600 MiB over 60 min, got %v", result.MBPerMinute)
	}
	if result.ReleaseGroup != "CiNEPHiLES" {
		t.Fatalf("expected release group from dash token, got %q", result.ReleaseGroup)
	}
	if result.Container != "matroska,webm" {
		t.Fatalf("unexpected container %q", result.Container)
	}
}

func TestParseHDRFallback(t *testing.T) {
	raw := []byte(`{
        "streams": [{
            "codec_type": "video",
            "codec_name": "hevc",
            "width": 3840,
            "height": 2160,
            "bits_per_raw_sample": "10",
            "color_transfer": "smpte2084",
            "color_primaries": "bt2020"
        }],
        "format": {"format_name": "matroska", "duration": "100"}
    }`)
	result, err := Parse(raw, "movie.mkv", 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.HDRFormats) != 1 || result.HDRFormats[0] != "HDR10" {
		t.Fatalf("expected fallback HDR10 without side data, got %v", result.HDRFormats)
	}
	if result.BitDepth != 10 {
		t.Fatalf("expected explicit bits_per_raw_sample to win, got %d", result.BitDepth)
	}
}

func TestParseHLGAndSDRDefaults(t *testing.T) {
	raw := []byte(`{
        "streams": [{
            "codec_type": "video",
            "codec_name": "h264",
            "width": 1920,
            "height": 1080,
            "pix_fmt": "yuv420p",
            "color_transfer": "arib-std-b67"
        }],
        "format": {"format_name": "matroska"}
    }`)
	result, err := Parse(raw, "movie.mkv", 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.HDRFormats) != 1 || result.HDRFormats[0] != "HLG" {
		t.Fatalf("expected HLG, got %v", result.HDRFormats)
	}
	if result.BitDepth != 8 {
		t.Fatalf("expected default bit depth 8, got %d", result.BitDepth)
	}
	if result.DurationSeconds != nil || result.MBPerMinute != nil {
		t.Fatalf("expected no duration-derived fields, got %v %v", result.DurationSeconds, result.MBPerMinute)
	}
}
