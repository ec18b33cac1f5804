package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/djstage/backend/internal/auth"
	"github.com/djstage/backend/internal/content"
	"github.com/djstage/backend/internal/logger"
	"github.com/djstage/backend/internal/models"
	"github.com/djstage/backend/internal/testutil"
	"github.com/djstage/backend/internal/trending"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

var testJWTSecret = []byte("test-secret")

// TrendingHandlerTestSuite drives the trending API end to end over an
// in-memory database.
type TrendingHandlerTestSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	registry *trending.Registry
	ledger   *trending.Ledger
	testMix  *models.Mix
	testEvnt *models.Event
}

func (suite *TrendingHandlerTestSuite) SetupTest() {
	logger.InitializeForTests()
	suite.db = testutil.OpenTestDB(suite.T())

	resolver := content.NewStore(suite.db)
	suite.registry = trending.NewRegistry(suite.db, resolver)
	suite.ledger = trending.NewLedger(suite.db)
	ranking := trending.NewRanking(suite.db, resolver, suite.ledger)
	h := NewHandlers(suite.registry, suite.ledger, ranking, nil)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	RegisterRoutes(suite.router, h, auth.RequireAdmin(testJWTSecret))

	suite.testMix = &models.Mix{
		Title:    "Amapiano Sessions",
		FileURL:  "https://cdn.example.com/mixes/amapiano.mp3",
		FileType: "audio",
		DJID:     "44444444-4444-4444-4444-444444444444",
	}
	require.NoError(suite.T(), suite.db.Create(suite.testMix).Error)

	suite.testEvnt = &models.Event{
		Name:      "Warehouse Rave",
		Venue:     "The Foundry",
		StartDate: time.Now().Add(24 * time.Hour),
		EndDate:   time.Now().Add(30 * time.Hour),
		DJID:      "44444444-4444-4444-4444-444444444444",
	}
	require.NoError(suite.T(), suite.db.Create(suite.testEvnt).Error)
}

// seedEntry creates a trending entry directly through the registry.
func (suite *TrendingHandlerTestSuite) seedEntry(score float64) *models.TrendingEntry {
	entry, created, err := suite.registry.Upsert(context.Background(), trending.UpsertInput{
		ContentType: models.ContentTypeMix,
		ContentID:   suite.testMix.ID,
		Period:      models.PeriodDaily,
		Score:       &score,
	})
	require.NoError(suite.T(), err)
	require.True(suite.T(), created)
	return entry
}

func (suite *TrendingHandlerTestSuite) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "admin-1",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testJWTSecret)
	require.NoError(t, err)
	return signed
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (suite *TrendingHandlerTestSuite) TestGetTrendingOrdersByScore() {
	t := suite.T()

	mix2 := &models.Mix{
		Title:    "Closing Set",
		FileURL:  "https://cdn.example.com/mixes/closing.mp3",
		FileType: "audio",
		DJID:     "44444444-4444-4444-4444-444444444444",
	}
	require.NoError(t, suite.db.Create(mix2).Error)

	low := 0.1
	high := 0.9
	_, _, err := suite.registry.Upsert(context.Background(), trending.UpsertInput{
		ContentType: models.ContentTypeMix, ContentID: suite.testMix.ID,
		Period: models.PeriodDaily, Score: &low,
	})
	require.NoError(t, err)
	_, _, err = suite.registry.Upsert(context.Background(), trending.UpsertInput{
		ContentType: models.ContentTypeMix, ContentID: mix2.ID,
		Period: models.PeriodDaily, Score: &high,
	})
	require.NoError(t, err)

	w := suite.request("GET", "/api/v1/trending?period=daily", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].([]interface{})
	require.Len(t, data, 2)

	first := data[0].(map[string]interface{})
	second := data[1].(map[string]interface{})
	assert.Equal(t, 0.9, first["score"])
	assert.Equal(t, 0.1, second["score"])
	assert.NotNil(t, first["content"])
}

func (suite *TrendingHandlerTestSuite) TestGetTrendingByTypeRejectsBadType() {
	w := suite.request("GET", "/api/v1/trending/type?type=playlist", nil, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	body := decodeBody(suite.T(), w)
	assert.Equal(suite.T(), false, body["success"])
	assert.Equal(suite.T(), "VALIDATION_ERROR", body["code"])
}

func (suite *TrendingHandlerTestSuite) TestViewAndEngageIncrements() {
	t := suite.T()
	entry := suite.seedEntry(0)

	w := suite.request("POST", "/api/v1/trending/"+entry.ID+"/view", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = suite.request("POST", "/api/v1/trending/"+entry.ID+"/engage", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["view_count"])
	assert.EqualValues(t, 1, data["engagement_count"])
	assert.InDelta(t, trending.Score(1, 1), data["score"].(float64), 1e-9)
}

func (suite *TrendingHandlerTestSuite) TestViewUnknownEntry() {
	w := suite.request("POST", "/api/v1/trending/00000000-0000-0000-0000-000000000000/view", nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TrendingHandlerTestSuite) TestLikeUnlikeFlow() {
	t := suite.T()
	entry := suite.seedEntry(0)

	w := suite.request("POST", "/api/v1/trending/"+entry.ID+"/like", nil, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = suite.request("DELETE", "/api/v1/trending/"+entry.ID+"/like", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Nothing left to unlike
	w = suite.request("DELETE", "/api/v1/trending/"+entry.ID+"/like", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *TrendingHandlerTestSuite) TestCommentFlow() {
	t := suite.T()
	entry := suite.seedEntry(0)

	w := suite.request("POST", "/api/v1/trending/"+entry.ID+"/comment",
		map[string]interface{}{"comment": "this one slaps"}, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = suite.request("POST", "/api/v1/trending/"+entry.ID+"/comment",
		map[string]interface{}{"comment": ""}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request("GET", "/api/v1/trending/"+entry.ID+"/comments", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	comment := data[0].(map[string]interface{})
	assert.Equal(t, "this one slaps", comment["comment"])
}

func (suite *TrendingHandlerTestSuite) TestCreateTrendingRequiresAdmin() {
	t := suite.T()

	payload := map[string]interface{}{
		"content_type": "mix",
		"content_id":   suite.testMix.ID,
	}

	w := suite.request("POST", "/api/v1/trending", payload, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = suite.request("POST", "/api/v1/trending", payload, signToken(t, "user"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func (suite *TrendingHandlerTestSuite) TestCreateThenUpdateTrending() {
	t := suite.T()
	token := signToken(t, "admin")

	payload := map[string]interface{}{
		"content_type":    "mix",
		"content_id":      suite.testMix.ID,
		"trending_period": "weekly",
		"score":           0.42,
		"view_count":      7,
	}

	w := suite.request("POST", "/api/v1/trending", payload, token)
	assert.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, 0.42, data["score"])
	assert.NotNil(t, data["content"])

	// Same natural key: updated, not duplicated
	payload["score"] = 0.84
	w = suite.request("POST", "/api/v1/trending", payload, token)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.TrendingEntry{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func (suite *TrendingHandlerTestSuite) TestCreateTrendingUnknownContent() {
	t := suite.T()
	token := signToken(t, "admin")

	w := suite.request("POST", "/api/v1/trending", map[string]interface{}{
		"content_type": "event",
		"content_id":   suite.testEvnt.ID,
	}, token)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = suite.request("POST", "/api/v1/trending", map[string]interface{}{
		"content_type": "event",
		"content_id":   "00000000-0000-0000-0000-000000000000",
	}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *TrendingHandlerTestSuite) TestUpdateMetrics() {
	t := suite.T()
	entry := suite.seedEntry(0)

	w := suite.request("PUT", "/api/v1/trending/metrics/"+entry.ID, map[string]interface{}{
		"view_count":       100,
		"engagement_count": 20,
	}, signToken(t, "admin"))
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 100, data["view_count"])
	assert.EqualValues(t, 20, data["engagement_count"])
	assert.InDelta(t, trending.Score(100, 20), data["score"].(float64), 1e-9)
}

func (suite *TrendingHandlerTestSuite) TestSetActiveHidesFromList() {
	t := suite.T()
	entry := suite.seedEntry(0.5)
	token := signToken(t, "admin")

	w := suite.request("PUT", "/api/v1/trending/"+entry.ID+"/active",
		map[string]interface{}{"is_active": false}, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = suite.request("GET", "/api/v1/trending?period=daily", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	data, _ := body["data"].([]interface{})
	assert.Empty(t, data)
}

func (suite *TrendingHandlerTestSuite) TestDeleteTrending() {
	t := suite.T()
	entry := suite.seedEntry(0.5)

	w := suite.request("DELETE", "/api/v1/trending/"+entry.ID, nil, signToken(t, "admin"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = suite.request("DELETE", "/api/v1/trending/"+entry.ID, nil, signToken(t, "admin"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *TrendingHandlerTestSuite) TestStatusEndpoint() {
	t := suite.T()

	for _, period := range []models.TrendingPeriod{models.PeriodDaily, models.PeriodWeekly} {
		_, _, err := suite.registry.Upsert(context.Background(), trending.UpsertInput{
			ContentType: models.ContentTypeMix,
			ContentID:   suite.testMix.ID,
			Period:      period,
		})
		require.NoError(t, err)
	}

	path := fmt.Sprintf("/api/v1/trending/status/mix/%s", suite.testMix.ID)
	w := suite.request("GET", path, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].([]interface{})
	assert.Len(t, data, 2)
}

func TestTrendingHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TrendingHandlerTestSuite))
}
