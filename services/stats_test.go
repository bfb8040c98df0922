package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedarboard/cedar/models"
)

func TestComputeForumStatsEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(db)

	stats, err := svc.ComputeForumStats()
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.SectionCount)
	assert.EqualValues(t, 0, stats.SubsectionCount)
	assert.EqualValues(t, 0, stats.TopicCount)
	assert.EqualValues(t, 0, stats.PostCount)
	assert.Empty(t, stats.TopicsBySection)
}

func TestComputeForumStats(t *testing.T) {
	db := newTestDB(t)
	forum := NewForumService(db)
	svc := NewStatsService(db)

	admin := newUser(t, db, "admin", models.RoleAdmin, false)
	u1 := newUser(t, db, "u1", models.RoleRegular, false)

	general, err := forum.CreateSection(admin, "General", "")
	require.NoError(t, err)
	offtopic, err := forum.CreateSection(admin, "Offtopic", "")
	require.NoError(t, err)

	intro, err := forum.CreateSubsection(admin, general.ID, "Intro", "")
	require.NoError(t, err)
	news, err := forum.CreateSubsection(admin, general.ID, "News", "")
	require.NoError(t, err)
	random, err := forum.CreateSubsection(admin, offtopic.ID, "Random", "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := forum.CreateTopic(intro.ID, u1.ID, "intro topic", "content")
		require.NoError(t, err)
	}
	topic, err := forum.CreateTopic(news.ID, u1.ID, "news topic", "content")
	require.NoError(t, err)
	_, err = forum.CreatePost(topic.ID, u1.ID, "a post", nil)
	require.NoError(t, err)

	stats, err := svc.ComputeForumStats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.SectionCount)
	assert.EqualValues(t, 3, stats.SubsectionCount)
	assert.EqualValues(t, 4, stats.TopicCount)
	assert.EqualValues(t, 1, stats.PostCount)

	require.Len(t, stats.TopicsBySection, 2)
	assert.Equal(t, TopicCount{ID: general.ID, Name: "General", TopicCount: 4}, stats.TopicsBySection[0])
	assert.Equal(t, TopicCount{ID: offtopic.ID, Name: "Offtopic", TopicCount: 0}, stats.TopicsBySection[1])

	require.Len(t, stats.TopicsBySubsection, 3)
	assert.Equal(t, TopicCount{ID: intro.ID, Name: "Intro", TopicCount: 3}, stats.TopicsBySubsection[0])
	assert.Equal(t, TopicCount{ID: news.ID, Name: "News", TopicCount: 1}, stats.TopicsBySubsection[1])
	assert.Equal(t, TopicCount{ID: random.ID, Name: "Random", TopicCount: 0}, stats.TopicsBySubsection[2])
}
