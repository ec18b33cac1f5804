package trending

import (
	"context"
	"testing"
	"time"

	"github.com/djstage/backend/internal/content"
	"github.com/djstage/backend/internal/errors"
	"github.com/djstage/backend/internal/logger"
	"github.com/djstage/backend/internal/models"
	"github.com/djstage/backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type LedgerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	ledger *Ledger
	entry  *models.TrendingEntry
}

func (suite *LedgerTestSuite) SetupTest() {
	logger.InitializeForTests()
	suite.db = testutil.OpenTestDB(suite.T())
	suite.ledger = NewLedger(suite.db)

	mix := &models.Mix{
		Title:    "Warmup Set",
		FileURL:  "https://cdn.example.com/mixes/warmup.mp3",
		FileType: "audio",
		DJID:     "22222222-2222-2222-2222-222222222222",
	}
	require.NoError(suite.T(), suite.db.Create(mix).Error)

	registry := NewRegistry(suite.db, content.NewStore(suite.db))
	entry, created, err := registry.Upsert(context.Background(), UpsertInput{
		ContentType: models.ContentTypeMix,
		ContentID:   mix.ID,
		Period:      models.PeriodDaily,
	})
	require.NoError(suite.T(), err)
	require.True(suite.T(), created)
	suite.entry = entry
}

func (suite *LedgerTestSuite) reloadEntry() *models.TrendingEntry {
	var entry models.TrendingEntry
	require.NoError(suite.T(), suite.db.First(&entry, "id = ?", suite.entry.ID).Error)
	return &entry
}

func (suite *LedgerTestSuite) TestLikeBumpsEngagement() {
	t := suite.T()

	like, err := suite.ledger.Like(context.Background(), suite.entry.ID)
	require.NoError(t, err)
	require.NotEmpty(t, like.ID)
	require.Equal(t, suite.entry.ID, like.TrendingID)

	entry := suite.reloadEntry()
	require.Equal(t, 1, entry.EngagementCount)
	require.InDelta(t, Score(0, 1), entry.Score, 1e-9)

	count, err := suite.ledger.CountLikes(context.Background(), suite.entry.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func (suite *LedgerTestSuite) TestThreeLikesScore() {
	t := suite.T()

	for i := 0; i < 3; i++ {
		_, err := suite.ledger.Like(context.Background(), suite.entry.ID)
		require.NoError(t, err)
	}

	entry := suite.reloadEntry()
	require.Equal(t, 3, entry.EngagementCount)
	// 0.6*log10(4), the view term is zero
	require.InDelta(t, 0.361236, entry.Score, 1e-5)
}

func (suite *LedgerTestSuite) TestLikeUnknownEntry() {
	_, err := suite.ledger.Like(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.Error(suite.T(), err)
	apiErr, ok := err.(*errors.APIError)
	require.True(suite.T(), ok)
	require.Equal(suite.T(), errors.ErrNotFound, apiErr.Code)

	// Failed like leaves no ledger row behind
	var likes int64
	suite.db.Model(&models.TrendingLike{}).Count(&likes)
	require.Zero(suite.T(), likes)
}

func (suite *LedgerTestSuite) TestUnlikeRoundTrip() {
	t := suite.T()

	_, err := suite.ledger.Like(context.Background(), suite.entry.ID)
	require.NoError(t, err)

	require.NoError(t, suite.ledger.Unlike(context.Background(), suite.entry.ID))

	entry := suite.reloadEntry()
	require.Equal(t, 0, entry.EngagementCount, "unlike returns the counter to its pre-like value")
	require.Zero(t, entry.Score)

	count, err := suite.ledger.CountLikes(context.Background(), suite.entry.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func (suite *LedgerTestSuite) TestUnlikeRemovesExactlyOneRow() {
	t := suite.T()

	for i := 0; i < 3; i++ {
		_, err := suite.ledger.Like(context.Background(), suite.entry.ID)
		require.NoError(t, err)
	}

	require.NoError(t, suite.ledger.Unlike(context.Background(), suite.entry.ID))

	count, err := suite.ledger.CountLikes(context.Background(), suite.entry.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
	require.Equal(t, 2, suite.reloadEntry().EngagementCount)
}

func (suite *LedgerTestSuite) TestUnlikeWithoutLikes() {
	err := suite.ledger.Unlike(context.Background(), suite.entry.ID)
	require.Error(suite.T(), err)
	apiErr, ok := err.(*errors.APIError)
	require.True(suite.T(), ok)
	require.Equal(suite.T(), errors.ErrNotFound, apiErr.Code)
}

func (suite *LedgerTestSuite) TestAddCommentValidatesText() {
	t := suite.T()

	_, err := suite.ledger.AddComment(context.Background(), suite.entry.ID, "   ")
	require.Error(t, err)
	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok)
	require.Equal(t, errors.ErrValidation, apiErr.Code)

	require.Equal(t, 0, suite.reloadEntry().EngagementCount)
}

func (suite *LedgerTestSuite) TestCommentsNewestFirst() {
	t := suite.T()

	first, err := suite.ledger.AddComment(context.Background(), suite.entry.ID, "opening track is fire")
	require.NoError(t, err)
	// Force distinct timestamps on sqlite's clock granularity
	suite.db.Model(first).Update("created_at", first.CreatedAt.Add(-time.Second))

	second, err := suite.ledger.AddComment(context.Background(), suite.entry.ID, "that transition at 12:30")
	require.NoError(t, err)

	comments, err := suite.ledger.ListComments(context.Background(), suite.entry.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, second.ID, comments[0].ID)
	require.Equal(t, first.ID, comments[1].ID)

	count, err := suite.ledger.CountComments(context.Background(), suite.entry.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	require.Equal(t, 2, suite.reloadEntry().EngagementCount)
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}
