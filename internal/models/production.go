package models

import "time"

// ProductionJob generates per-scene images and audio tracks from a brief.
type ProductionJob struct {
	ID            string           `json:"id"`
	CurationJobID string           `json:"curation_job_id"`
	Status        ProductionStatus `json:"status"`
	NumScenes     int              `json:"num_scenes"`
	NumTracks     int              `json:"num_tracks"`
	CreatedAt     time.Time        `json:"created_at"`
	ErrorMessage  *string          `json:"error_message,omitempty"`
}

// ProductionJobDetail is the production job with its generated assets.
type ProductionJobDetail struct {
	Job    ProductionJob `json:"job"`
	Scenes []Scene       `json:"scenes"`
	Tracks []Track       `json:"tracks"`
}

// Scene is the image asset generated for one storyboard scene.
type Scene struct {
	ID           string      `json:"id"`
	SceneNumber  int         `json:"scene_number"`
	Description  string      `json:"description"`
	ImagePrompt  string      `json:"image_prompt"`
	ImageURL     *string     `json:"image_url,omitempty"`
	Status       AssetStatus `json:"status"`
	ErrorMessage *string     `json:"error_message,omitempty"`
}

// Track is a generated soundtrack song.
type Track struct {
	ID              string      `json:"id"`
	TrackNumber     int         `json:"track_number"`
	SongPrompt      string      `json:"song_prompt"`
	SunoStatus      AssetStatus `json:"suno_status"`
	AudioURL        *string     `json:"audio_url,omitempty"`
	Title           *string     `json:"title,omitempty"`
	DurationSeconds *float64    `json:"duration_seconds,omitempty"`
	ErrorMessage    *string     `json:"error_message,omitempty"`
}

// CompletedScenes counts scenes whose image finished successfully.
func (d *ProductionJobDetail) CompletedScenes() int {
	n := 0
	for _, s := range d.Scenes {
		if s.Status == AssetCompleted {
			n++
		}
	}
	return n
}

// Progress returns the fraction of planned scenes that are complete.
func (d *ProductionJobDetail) Progress() float64 {
	if d.Job.NumScenes <= 0 {
		return 0
	}
	p := float64(d.CompletedScenes()) / float64(d.Job.NumScenes)
	if p > 1 {
		return 1
	}
	return p
}
