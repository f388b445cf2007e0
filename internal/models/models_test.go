package models_test

import (
	"encoding/json"
	"testing"

	"github.com/raphaelgruber/ymfactory/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestResearchStatusTerminal(t *testing.T) {
	terminal := []models.ResearchStatus{models.ResearchCompleted, models.ResearchFailed, models.ResearchError}
	active := []models.ResearchStatus{models.ResearchPending, models.ResearchSearching, models.ResearchAnalyzing, "reticulating"}

	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "%s should be terminal", s)
		assert.False(t, s.ShouldPoll(), "%s should not poll", s)
	}
	for _, s := range active {
		assert.False(t, s.IsTerminal(), "%s should not be terminal", s)
		assert.True(t, s.ShouldPoll(), "%s should poll", s)
	}
	assert.False(t, models.ResearchStatus("reticulating").Known())
	assert.True(t, models.ResearchAnalyzing.Known())
}

func TestCurationAndProductionStatusTerminal(t *testing.T) {
	assert.True(t, models.CurationCompleted.IsTerminal())
	assert.True(t, models.CurationError.IsTerminal())
	assert.True(t, models.CurationGeneratingBrief.ShouldPoll())
	assert.True(t, models.CurationPending.ShouldPoll())

	assert.True(t, models.ProductionCompleted.IsTerminal())
	assert.True(t, models.ProductionFailed.IsTerminal())
	assert.True(t, models.ProductionError.IsTerminal())
	assert.True(t, models.ProductionProcessing.ShouldPoll())
	assert.True(t, models.ProductionQueued.ShouldPoll())

	assert.True(t, models.AssetFailed.IsTerminal())
	assert.True(t, models.AssetPolling.InProgress())
	assert.False(t, models.AssetPending.InProgress())
}

func TestAnyActive(t *testing.T) {
	assert.False(t, models.AnyResearchActive(nil), "empty list has nothing in flight")
	assert.True(t, models.AnyResearchActive([]models.ResearchJob{
		{Status: models.ResearchCompleted},
		{Status: models.ResearchSearching},
	}))
	assert.False(t, models.AnyResearchActive([]models.ResearchJob{
		{Status: models.ResearchCompleted},
		{Status: models.ResearchError},
	}))

	assert.True(t, models.AnyCurationActive([]models.CurationJob{{Status: models.CurationGeneratingBrief}}))
	assert.False(t, models.AnyCurationActive([]models.CurationJob{{Status: models.CurationCompleted}}))

	assert.True(t, models.AnyProductionActive([]models.ProductionJob{{Status: models.ProductionProcessing}}))
	assert.False(t, models.AnyProductionActive([]models.ProductionJob{{Status: models.ProductionFailed}}))
}

func TestRankByRelevance(t *testing.T) {
	videos := []models.ResearchVideo{
		{VideoID: "a", RelevanceScore: intPtr(7)},
		{VideoID: "b", RelevanceScore: intPtr(9)},
	}

	ranked := models.RankByRelevance(videos)
	require.Len(t, ranked, 2)
	assert.Equal(t, "b", ranked[0].VideoID)
	assert.Equal(t, "a", ranked[1].VideoID)

	// stored order is untouched
	assert.Equal(t, "a", videos[0].VideoID)
}

func TestRankByRelevanceTiesAndUnscored(t *testing.T) {
	videos := []models.ResearchVideo{
		{VideoID: "none"},
		{VideoID: "x", RelevanceScore: intPtr(5)},
		{VideoID: "y", RelevanceScore: intPtr(5)},
		{VideoID: "top", RelevanceScore: intPtr(10)},
	}

	ranked := models.RankByRelevance(videos)
	ids := make([]string, len(ranked))
	for i, v := range ranked {
		ids[i] = v.VideoID
	}
	assert.Equal(t, []string{"top", "x", "y", "none"}, ids)
}

func TestBriefScenesOrdered(t *testing.T) {
	brief := &models.CreativeBrief{
		Storyboard: []models.StoryboardScene{
			{SceneIndex: 3, Narration: "third"},
			{SceneIndex: 1, Narration: "first"},
			{SceneIndex: 2, Narration: "second"},
		},
	}

	scenes := brief.Scenes()
	require.Len(t, scenes, 3)
	assert.Equal(t, "first", scenes[0].Narration)
	assert.Equal(t, "second", scenes[1].Narration)
	assert.Equal(t, "third", scenes[2].Narration)
	assert.Equal(t, 3, brief.Storyboard[0].SceneIndex, "brief storyboard is not reordered")

	var nilBrief *models.CreativeBrief
	assert.Nil(t, nilBrief.Scenes())
}

func TestProductionProgress(t *testing.T) {
	d := &models.ProductionJobDetail{
		Job: models.ProductionJob{NumScenes: 4},
		Scenes: []models.Scene{
			{Status: models.AssetCompleted},
			{Status: models.AssetCompleted},
			{Status: models.AssetGenerating},
			{Status: models.AssetFailed},
		},
	}
	assert.Equal(t, 2, d.CompletedScenes())
	assert.InDelta(t, 0.5, d.Progress(), 1e-9)

	empty := &models.ProductionJobDetail{}
	assert.Zero(t, empty.Progress())
}

func TestResearchJobDecode(t *testing.T) {
	payload := `{
		"id": "0b7c",
		"status": "completed",
		"genre_topic": "History of Rome",
		"research_summary": "Rome was not built in a day.",
		"created_at": "2024-05-01T10:00:00Z",
		"videos": [
			{"video_id": "abc", "title": "Rome", "view_count": 1200, "published_at": "2021-03-04T00:00:00Z"},
			{"video_id": "def", "title": "Caesar", "view_count": null, "published_at": null, "relevance_score": 8}
		]
	}`

	var detail models.ResearchJobDetail
	require.NoError(t, json.Unmarshal([]byte(payload), &detail))
	assert.Equal(t, "History of Rome", detail.Topic())
	assert.Equal(t, models.ResearchCompleted, detail.Status)
	assert.Equal(t, "Rome was not built in a day.", detail.Summary())
	require.Len(t, detail.Videos, 2)
	assert.Nil(t, detail.Videos[1].ViewCount)
	assert.Equal(t, 8, *detail.Videos[1].RelevanceScore)
	assert.Equal(t, "https://youtube.com/watch?v=abc", detail.Videos[0].WatchURL())
	assert.Equal(t, "https://img.youtube.com/vi/abc/mqdefault.jpg", detail.Videos[0].ThumbnailURL())
}

func TestResearchJobTopicFallback(t *testing.T) {
	j := models.ResearchJob{VideoTopic: "Jazz"}
	assert.Equal(t, "Jazz", j.Topic())
	assert.Empty(t, j.Summary())
}

func TestCurationJobAccessors(t *testing.T) {
	msg := "model overloaded"
	j := models.CurationJob{
		Status:        models.CurationError,
		CreativeBrief: &models.CreativeBrief{Error: &msg, Storyboard: make([]models.StoryboardScene, 2)},
	}
	assert.Equal(t, "model overloaded", j.FailureReason())
	assert.Equal(t, 2, j.SceneCount())

	j.NumScenes = intPtr(6)
	assert.Equal(t, 6, j.SceneCount())
	assert.Empty(t, models.CurationJob{}.Title())
}
