package verify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// largeGopThresholdSeconds is the keyframe gap above which seeking gets
// noticeably sluggish.
const largeGopThresholdSeconds = 4.0

type packetList struct {
	Packets []packet `json:"packets"`
}

type packet struct {
	PTSTime string `json:"pts_time"`
	DTSTime string `json:"dts_time"`
	Flags   string `json:"flags"`
}

// keyframeStats summarizes keyframe spacing over the sampled interval.
type keyframeStats struct {
	Keyframes int
	MaxGap    float64
	AvgGap    float64
}

// analyzeKeyframes computes the maximum and average gap between keyframes
// from ffprobe packet JSON. Packets without a usable timestamp are ignored.
func analyzeKeyframes(raw []byte) (*keyframeStats, error) {
	var list packetList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode packet list: %w", err)
	}

	var times []float64
	for _, pkt := range list.Packets {
		if !strings.Contains(pkt.Flags, "K") {
			continue
		}
		value := pkt.PTSTime
		if value == "" || value == "N/A" {
			value = pkt.DTSTime
		}
		ts, err := strconv.ParseFloat(value, 64)
		if err != nil {
			continue
		}
		times = append(times, ts)
	}

	stats := &keyframeStats{Keyframes: len(times)}
	if len(times) < 2 {
		return stats, nil
	}

	var total float64
	for i := 1; i < len(times); i++ {
		gap := times[i] - times[i-1]
		if gap < 0 {
			continue
		}
		total += gap
		if gap > stats.MaxGap {
			stats.MaxGap = gap
		}
	}
	stats.AvgGap = total / float64(len(times)-1)
	return stats, nil
}
