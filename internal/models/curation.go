package models

import (
	"sort"
	"time"
)

// CurationJob turns selected research output into a creative brief.
type CurationJob struct {
	ID            string         `json:"id"`
	ResearchJobID string         `json:"research_job_id"`
	Status        CurationStatus `json:"status"`
	CreativeBrief *CreativeBrief `json:"creative_brief,omitempty"`
	NumScenes     *int           `json:"num_scenes,omitempty"`
	CreatedAt     *time.Time     `json:"created_at,omitempty"`
}

// SceneCount returns the number of storyboard scenes the backend reported.
func (j CurationJob) SceneCount() int {
	if j.NumScenes != nil {
		return *j.NumScenes
	}
	if j.CreativeBrief != nil {
		return len(j.CreativeBrief.Storyboard)
	}
	return 0
}

// Title returns the brief title, or "" before the brief exists.
func (j CurationJob) Title() string {
	if j.CreativeBrief == nil {
		return ""
	}
	return j.CreativeBrief.Title
}

// FailureReason returns the backend's error for a failed brief.
func (j CurationJob) FailureReason() string {
	if j.CreativeBrief == nil || j.CreativeBrief.Error == nil {
		return ""
	}
	return *j.CreativeBrief.Error
}

// CreativeBrief is the structured storyboard produced by curation.
type CreativeBrief struct {
	Title         string            `json:"title"`
	Hook          string            `json:"hook"`
	NarrativeGoal string            `json:"narrative_goal"`
	MusicMood     string            `json:"music_mood"`
	ColorPalette  []string          `json:"color_palette"`
	Storyboard    []StoryboardScene `json:"storyboard"`
	Error         *string           `json:"error,omitempty"`
}

// StoryboardScene is one planned scene of a creative brief.
type StoryboardScene struct {
	SceneIndex   int     `json:"scene_index"`
	Narration    string  `json:"narration"`
	VisualPrompt string  `json:"visual_prompt"`
	Pacing       string  `json:"pacing"`
	Duration     float64 `json:"duration"`
}

// Scenes returns the storyboard ordered by scene index. The brief itself is
// not modified.
func (b *CreativeBrief) Scenes() []StoryboardScene {
	if b == nil {
		return nil
	}
	scenes := make([]StoryboardScene, len(b.Storyboard))
	copy(scenes, b.Storyboard)
	sort.SliceStable(scenes, func(i, k int) bool {
		return scenes[i].SceneIndex < scenes[k].SceneIndex
	})
	return scenes
}
