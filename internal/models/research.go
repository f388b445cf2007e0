// Package models defines the job records served by the YM Factory backend.
package models

import (
	"sort"
	"time"
)

// ResearchJob is a backend task that discovers candidate source videos for a
// topic and synthesizes a summary.
type ResearchJob struct {
	ID              string         `json:"id"`
	Status          ResearchStatus `json:"status"`
	GenreTopic      string         `json:"genre_topic"`
	VideoTopic      string         `json:"video_topic,omitempty"` // older payloads
	ResearchDepth   string         `json:"research_depth,omitempty"`
	ResearchSummary *string        `json:"research_summary"`
	ErrorMessage    *string        `json:"error_message,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Topic returns the topic label the job was started with.
func (j ResearchJob) Topic() string {
	if j.GenreTopic != "" {
		return j.GenreTopic
	}
	return j.VideoTopic
}

// Summary returns the research summary, or "" while it is not available.
func (j ResearchJob) Summary() string {
	if j.ResearchSummary == nil {
		return ""
	}
	return *j.ResearchSummary
}

// ResearchJobDetail is a research job plus the videos it discovered.
type ResearchJobDetail struct {
	ResearchJob
	Videos []ResearchVideo `json:"videos"`
}

// ResearchVideo is a candidate source video scored by the backend.
type ResearchVideo struct {
	VideoID         string     `json:"video_id"`
	Title           string     `json:"title"`
	Channel         *string    `json:"channel,omitempty"`
	ViewCount       *int64     `json:"view_count"`
	Likes           *int64     `json:"likes,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	PublishedAt     *time.Time `json:"published_at"`
	Thumbnail       *string    `json:"thumbnail_url,omitempty"`
	URL             *string    `json:"url,omitempty"`
	RelevanceScore  *int       `json:"relevance_score,omitempty"`
	Reasoning       *string    `json:"gemini_reasoning,omitempty"`
}

// WatchURL returns the public URL of the video.
func (v ResearchVideo) WatchURL() string {
	if v.URL != nil && *v.URL != "" {
		return *v.URL
	}
	return "https://youtube.com/watch?v=" + v.VideoID
}

// ThumbnailURL returns the thumbnail reported by the backend, or the
// standard medium-quality YouTube thumbnail.
func (v ResearchVideo) ThumbnailURL() string {
	if v.Thumbnail != nil && *v.Thumbnail != "" {
		return *v.Thumbnail
	}
	return "https://img.youtube.com/vi/" + v.VideoID + "/mqdefault.jpg"
}

// RankByRelevance returns a copy of videos ordered by descending relevance
// score. Ties keep their original order and unscored videos sort last.
func RankByRelevance(videos []ResearchVideo) []ResearchVideo {
	ranked := make([]ResearchVideo, len(videos))
	copy(ranked, videos)
	sort.SliceStable(ranked, func(i, k int) bool {
		a, b := ranked[i].RelevanceScore, ranked[k].RelevanceScore
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return ranked
}
