package service

import (
	"fmt"
	"testing"

	"simorder/dao/model"
	"simorder/response"
	"simorder/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestDownsampleStride(t *testing.T) {
	rounds := make([]model.Round, 12345)
	for i := range rounds {
		rounds[i].RoundIndex = i + 1
	}

	kept, sampled := downsample(rounds, analysisSampling{Enabled: true, MaxPoints: 1000})
	assert.True(t, sampled)
	require.Len(t, kept, 1000)

	// stride floor(12345/1000) = 12, first row kept, strictly increasing
	assert.Equal(t, 1, kept[0].RoundIndex)
	assert.Equal(t, 13, kept[1].RoundIndex)
	for i := 1; i < len(kept); i++ {
		assert.Equal(t, 12, kept[i].RoundIndex-kept[i-1].RoundIndex)
	}
}

func TestDownsamplePassThrough(t *testing.T) {
	rounds := make([]model.Round, 500)

	kept, sampled := downsample(rounds, analysisSampling{Enabled: true, MaxPoints: 1000})
	assert.False(t, sampled)
	assert.Len(t, kept, 500)

	kept, sampled = downsample(rounds, analysisSampling{Enabled: false, MaxPoints: 10})
	assert.False(t, sampled)
	assert.Len(t, kept, 500)
}

func TestDownsampleCapsMaxPoints(t *testing.T) {
	rounds := make([]model.Round, 10)

	// maxPoints <= 0 falls back to the default, which exceeds 10 rows
	kept, sampled := downsample(rounds, analysisSampling{Enabled: true})
	assert.False(t, sampled)
	assert.Len(t, kept, 10)

	kept, sampled = downsample(rounds, analysisSampling{Enabled: true, MaxPoints: 4})
	assert.True(t, sampled)
	assert.Len(t, kept, 4)
}

func seedRounds(t *testing.T, db *gorm.DB, orderID, simTypeID, resultID uint, count int) {
	t.Helper()
	for i := 1; i <= count; i++ {
		r := model.Round{
			SimTypeResultID: resultID,
			RoundIndex:      i,
			OrderID:         orderID,
			SimTypeID:       simTypeID,
			Status:          model.OrderSucceeded,
			Params:          datatypes.JSON(fmt.Sprintf(`{"thickness": %d}`, i)),
			Outputs:         datatypes.JSON(fmt.Sprintf(`{"maxStress": %d.5}`, i*10)),
		}
		r.Valid = 1
		require.NoError(t, db.Create(&r).Error)
	}
}

func TestAnalyze(t *testing.T) {
	db := newTestDB(t)
	seedRounds(t, db, 1, 10, 1, 5)

	resp, err := Analyze(db, analysisReq{
		OrderID: 1, SimTypeID: 10, ChartType: model.ChartScatter,
		XField: "thickness", YField: "maxStress", ZField: "missing",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ChartScatter, resp.ChartType)
	assert.Equal(t, 5, resp.TotalPoints)
	assert.False(t, resp.Sampled)
	require.Len(t, resp.Data, 5)

	first := resp.Data[0]
	assert.Equal(t, 1, first["roundIndex"])
	assert.Equal(t, float64(1), first["x"])
	assert.Equal(t, 10.5, first["y"])
	assert.Nil(t, first["z"])
}

func TestAnalyzeFilters(t *testing.T) {
	db := newTestDB(t)
	seedRounds(t, db, 1, 10, 1, 10)
	require.NoError(t, db.Model(&model.Round{}).Where("round_index = ?", 5).
		Update("status", model.OrderFailed).Error)

	req := analysisReq{OrderID: 1, SimTypeID: 10, ChartType: model.ChartLine, XField: "thickness"}
	req.Filters.RoundIndex.Min = intPtr(3)
	req.Filters.RoundIndex.Max = intPtr(7)
	succeeded := int(model.OrderSucceeded)
	req.Filters.Status = &succeeded

	resp, err := Analyze(db, req)
	require.NoError(t, err)
	assert.Equal(t, 4, resp.TotalPoints)
	for _, p := range resp.Data {
		idx := p["roundIndex"].(int)
		assert.GreaterOrEqual(t, idx, 3)
		assert.LessOrEqual(t, idx, 7)
		assert.NotEqual(t, 5, idx)
	}
}

func TestAnalyzeEmptyAndBadChart(t *testing.T) {
	db := newTestDB(t)

	resp, err := Analyze(db, analysisReq{
		OrderID: 1, SimTypeID: 10, ChartType: model.ChartBar, XField: "thickness",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.TotalPoints)
	assert.False(t, resp.Sampled)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)

	_, err = Analyze(db, analysisReq{OrderID: 1, SimTypeID: 10, ChartType: "PIE"})
	assert.Equal(t, response.InvalidRequest, errCode(t, err))
}

func seedSimTypeResult(t *testing.T, db *gorm.DB, id, orderID, simTypeID uint) *model.SimTypeResult {
	t.Helper()
	r := &model.SimTypeResult{OrderID: orderID, SimTypeID: simTypeID, Status: model.OrderPending}
	r.ID = id
	r.Valid = 1
	require.NoError(t, db.Create(r).Error)
	return r
}

func TestListRounds(t *testing.T) {
	db := newTestDB(t)
	seedSimTypeResult(t, db, 1, 1, 10)
	seedRounds(t, db, 1, 10, 1, 7)

	page, err := ListRounds(db, 1, listRoundsQuery{
		PageQuery: util.PageQuery{Page: 1, PageSize: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), page.Total)
	assert.Equal(t, int64(3), page.Pages)
	require.Len(t, page.List, 3)
	assert.Equal(t, 1, page.List[0].RoundIndex)
	assert.Equal(t, 3, page.List[2].RoundIndex)

	page, err = ListRounds(db, 1, listRoundsQuery{
		PageQuery: util.PageQuery{Page: 3, PageSize: 3},
	})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, 7, page.List[0].RoundIndex)

	// oversized page sizes clamp to the cap
	page, err = ListRounds(db, 1, listRoundsQuery{
		PageQuery: util.PageQuery{PageSize: 99999},
	})
	require.NoError(t, err)
	assert.Equal(t, roundPageSizeMax, page.PageSize)

	failed := int(model.OrderFailed)
	page, err = ListRounds(db, 1, listRoundsQuery{Status: &failed})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)

	_, err = ListRounds(db, 99, listRoundsQuery{})
	assert.Equal(t, response.ResourceNotFound, errCode(t, err))
}

func TestUpdateStatuses(t *testing.T) {
	db := newTestDB(t)
	seedSimTypeResult(t, db, 1, 1, 10)
	seedRounds(t, db, 1, 10, 1, 1)

	running := int(model.OrderRunning)
	require.NoError(t, UpdateSimTypeResultStatus(db, 1, updateStatusReq{
		Status: &running, Progress: intPtr(40),
	}))
	result, err := GetSimTypeResult(db, 1)
	require.NoError(t, err)
	assert.Equal(t, model.OrderRunning, result.Status)
	assert.Equal(t, 40, result.Progress)

	failed := int(model.OrderFailed)
	require.NoError(t, UpdateRoundStatus(db, 1, updateStatusReq{
		Status: &failed, ErrorMsg: strPtr("solver diverged"),
	}))
	round, err := GetRound(db, 1)
	require.NoError(t, err)
	assert.Equal(t, model.OrderFailed, round.Status)
	require.NotNil(t, round.ErrorMsg)
	assert.Equal(t, "solver diverged", *round.ErrorMsg)

	err = UpdateRoundStatus(db, 99, updateStatusReq{Status: &failed})
	assert.Equal(t, response.ResourceNotFound, errCode(t, err))
}
