package model

import (
	"encoding/json"
	"time"
)

// ContentType is the closed discriminator selecting which generation
// routine and output classification apply to a schedule.
type ContentType string

const (
	ContentTypeImageGeneration ContentType = "image-generation"
	ContentTypePrintOnShirt    ContentType = "print-on-shirt"
	ContentTypeVideoGeneration ContentType = "video-generation"
	ContentTypeJournal         ContentType = "journal"
)

func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeImageGeneration, ContentTypePrintOnShirt, ContentTypeVideoGeneration, ContentTypeJournal:
		return true
	}
	return false
}

// Kind maps the content type to the classification its output records carry.
func (c ContentType) Kind() ContentKind {
	switch c {
	case ContentTypeImageGeneration:
		return ContentKindImage
	case ContentTypePrintOnShirt:
		return ContentKindDesign
	case ContentTypeVideoGeneration:
		return ContentKindVideo
	case ContentTypeJournal:
		return ContentKindJournal
	}
	return ContentKind(c)
}

type ScheduleStatus string

const (
	ScheduleStatusActive  ScheduleStatus = "active"
	ScheduleStatusPaused  ScheduleStatus = "paused"
	ScheduleStatusStopped ScheduleStatus = "stopped"
)

const (
	DefaultDurationHours   = 24
	DefaultIntervalMinutes = 60
	DefaultMaxOutputs      = 10
)

// ScheduleConfig is the cadence/lifetime bundle the UI writes.
type ScheduleConfig struct {
	Enabled         bool
	DurationHours   int
	IntervalMinutes int
}

// Settings is the normalized view of the content-type-specific generation
// settings bundle. It is produced once at the store-read boundary by
// NormalizeSettings; nothing downstream looks at raw field names again.
type Settings struct {
	MaxOutputs      int
	AspectRatio     string
	NegativePrompt  string
	SourceImageURLs []string
	UseBucketImages bool
	BucketSetA      []string
	BucketSetB      []string
	VideoMode       string
	VideoDurationS  int
	StartImageURL   string

	// WindowedLimit decides whether the run-limit count is restricted to
	// records created within the schedule's duration window. Video
	// schedules default to a windowed count, the others to all-time.
	WindowedLimit bool
}

// NormalizeSettings flattens the historical field-name aliases of the raw
// settings bundle into a Settings value. Unknown fields are ignored.
func NormalizeSettings(raw []byte, ct ContentType) Settings {
	var m map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &m)
	}

	s := Settings{
		MaxOutputs:      intField(m, DefaultMaxOutputs, "max_images", "max_images_to_generate", "max_outputs", "max_videos"),
		AspectRatio:     strField(m, "", "aspect_ratio"),
		NegativePrompt:  strField(m, "", "negative_prompt"),
		SourceImageURLs: strSlice(m, "source_images", "image_urls"),
		UseBucketImages: boolField(m, false, "use_bucket_images"),
		BucketSetA:      strSlice(m, "bucket_set_a", "bucket_images_1"),
		BucketSetB:      strSlice(m, "bucket_set_b", "bucket_images_2"),
		VideoMode:       strField(m, "", "video_mode", "mode"),
		VideoDurationS:  intField(m, 0, "video_duration_seconds", "video_duration"),
		StartImageURL:   strField(m, "", "start_image_url", "start_image"),
	}
	s.WindowedLimit = boolField(m, ct == ContentTypeVideoGeneration, "windowed_limit")
	if s.MaxOutputs <= 0 {
		s.MaxOutputs = DefaultMaxOutputs
	}
	return s
}

// Schedule is a persisted recurring generation intent.
type Schedule struct {
	ID          string
	OwnerID     string
	TaskID      string
	ContentType ContentType
	Prompt      string
	Config      ScheduleConfig
	RawSettings []byte // settings bundle as stored
	Settings    Settings
	Status      ScheduleStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastRun     *time.Time
	NextRun     *time.Time
}

// IsDue reports whether the schedule is eligible to run at now.
func (s *Schedule) IsDue(now time.Time) bool {
	return s.Status == ScheduleStatusActive && s.NextRun != nil && !s.NextRun.After(now)
}

// DurationExpired reports whether the schedule's total allowed lifetime has
// elapsed since creation.
func (s *Schedule) DurationExpired(now time.Time) bool {
	h := s.Config.DurationHours
	if h <= 0 {
		h = DefaultDurationHours
	}
	return now.Sub(s.CreatedAt) >= time.Duration(h)*time.Hour
}

// Interval is the configured gap between runs.
func (s *Schedule) Interval() time.Duration {
	m := s.Config.IntervalMinutes
	if m <= 0 {
		m = DefaultIntervalMinutes
	}
	return time.Duration(m) * time.Minute
}

// LimitWindowStart returns the lower bound for the run-limit count, or nil
// when the count is all-time.
func (s *Schedule) LimitWindowStart(now time.Time) *time.Time {
	if !s.Settings.WindowedLimit {
		return nil
	}
	h := s.Config.DurationHours
	if h <= 0 {
		h = DefaultDurationHours
	}
	t := now.Add(-time.Duration(h) * time.Hour)
	return &t
}

func intField(m map[string]any, def int, names ...string) int {
	for _, n := range names {
		if v, ok := m[n]; ok {
			switch x := v.(type) {
			case float64:
				return int(x)
			case int:
				return x
			case json.Number:
				if i, err := x.Int64(); err == nil {
					return int(i)
				}
			}
		}
	}
	return def
}

func strField(m map[string]any, def string, names ...string) string {
	for _, n := range names {
		if v, ok := m[n]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return def
}

func boolField(m map[string]any, def bool, names ...string) bool {
	for _, n := range names {
		if v, ok := m[n]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}
	return def
}

func strSlice(m map[string]any, names ...string) []string {
	for _, n := range names {
		v, ok := m[n]
		if !ok {
			continue
		}
		arr, ok := v.([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(arr))
		for _, e := range arr {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}
