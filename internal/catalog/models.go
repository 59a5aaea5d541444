package catalog

import (
	"strings"
	"time"
)

// VerifyStatus reflects the deep-verify lifecycle of a file. It is only
// meaningful once the file has a successful scan.
type VerifyStatus string

const (
	VerifyPending VerifyStatus = "pending"
	VerifyPass    VerifyStatus = "pass"
	VerifyFail    VerifyStatus = "fail"
	VerifyError   VerifyStatus = "error"
)

// ParseVerifyStatus converts a string into a known VerifyStatus.
func ParseVerifyStatus(value string) (VerifyStatus, bool) {
	normalized := VerifyStatus(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case VerifyPending, VerifyPass, VerifyFail, VerifyError:
		return normalized, true
	}
	return "", false
}

// Review states for match log entries.
const (
	ReviewRejected  = -1
	ReviewPending   = 0
	ReviewConfirmed = 1
)

// Enrichment holds metadata merged in from the external media server.
type Enrichment struct {
	ProviderID      string
	ProviderTitle   string
	ProviderYear    *int
	CriticRating    *float64
	CommunityRating *float64
	Genres          []string
	Synopsis        string
	ProviderPath    string
	EnrichedAt      *time.Time
}

// Movie is one library folder.
type Movie struct {
	ID         int64
	FolderPath string
	FolderName string
	Title      string
	Year       *int
	Tags       []string
	Notes      string
	Enrichment Enrichment
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AudioTrack describes one audio stream of a file.
type AudioTrack struct {
	Codec    string `json:"codec"`
	Profile  string `json:"profile,omitempty"`
	Channels int    `json:"channels"`
	Layout   string `json:"layout,omitempty"`
	Language string `json:"language,omitempty"`
	Default  bool   `json:"default"`
	BitRate  int64  `json:"bit_rate,omitempty"`
}

// Flag severities. FLAG marks confirmed playback defects, WARN marks quality
// concerns that do not affect the pass/fail outcome.
const (
	SeverityFlag = "flag"
	SeverityWarn = "warn"
)

// QualityFlag is a structured verify finding attached to a file.
type QualityFlag struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// MovieFile is one principal video file inside a movie folder.
type MovieFile struct {
	ID                int64
	MovieID           int64
	FilePath          string
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
	AudioTracks       []AudioTrack
	SubtitleLanguages []string
	Container         string
	SizeBytes         int64
	DurationSeconds   *float64
	MBPerMinute       *float64
	ReleaseGroup      string
	ProbeJSON         string
	ScannedAt         *time.Time
	ScanError         string
	VerifyStatus      VerifyStatus
	VerifyFlags       []QualityFlag
	VerifiedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Scanned reports whether the file has a successful probe on record.
func (f *MovieFile) Scanned() bool {
	return f != nil && f.ScannedAt != nil && f.ScanError == ""
}

// ScanRun is an append-only record of one walk-and-probe session.
type ScanRun struct {
	ID              int64
	RootPath        string
	StartedAt       time.Time
	FinishedAt      *time.Time
	FolderCount     int
	FileCount       int
	OKCount         int
	ErrorCount      int
	DurationSeconds float64
	Notes           string
}

// MatchLogEntry is one reconciliation attempt in the audit log.
type MatchLogEntry struct {
	ID              int64
	JobID           string
	QueryTitle      string
	QueryYear       *int
	QueryProviderID string
	Strategy        string
	Confidence      float64
	MovieID         *int64
	Ambiguous       bool
	AmbiguityReason string
	Reviewed        int
	CreatedAt       time.Time
}
