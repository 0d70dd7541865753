package service

import (
	"encoding/json"

	"simorder/dao/model"
	"simorder/dao/query"
	"simorder/response"
	"simorder/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	roundPageSizeDefault = 100
	roundPageSizeMax     = 500

	analysisMaxPointsDefault = 2000
	analysisMaxPointsCap     = 100000
)

func ListOrderSimTypeResults(db *gorm.DB, orderID uint) ([]model.SimTypeResult, error) {
	var results []model.SimTypeResult
	err := db.Where("order_id = ?", orderID).
		Order("sort asc, id asc").Find(&results).Error
	if err != nil {
		return nil, response.NewInternal(err)
	}
	return results, nil
}

func GetSimTypeResult(db *gorm.DB, id uint) (*model.SimTypeResult, error) {
	var result model.SimTypeResult
	err := db.Where("id = ?", id).First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("sim type result")
	}
	if err != nil {
		return nil, response.NewInternal(err)
	}
	return &result, nil
}

// roundListItem is the trimmed round shape for list pages; detail reads
// return the full model.Round.
type roundListItem struct {
	ID            uint              `json:"id"`
	RoundIndex    int               `json:"roundIndex"`
	Params        json.RawMessage   `json:"params"`
	Outputs       json.RawMessage   `json:"outputs"`
	Status        model.OrderStatus `json:"status"`
	FlowCurNodeID *string           `json:"flowCurNodeId"`
	StuckModuleID *uint             `json:"stuckModuleId"`
}

type roundPage struct {
	List     []roundListItem `json:"list"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	Pages    int64           `json:"pages"`
}

type listRoundsQuery struct {
	util.PageQuery
	Status *int `form:"status"`
}

// ListRounds pages the rounds of one sim type result by ascending
// roundIndex.
func ListRounds(db *gorm.DB, simTypeResultID uint, q listRoundsQuery) (*roundPage, error) {
	if _, err := GetSimTypeResult(db, simTypeResultID); err != nil {
		return nil, err
	}
	page, pageSize := q.Clamp(roundPageSizeDefault, roundPageSizeMax)

	tx := db.Model(&model.Round{}).Where("sim_type_result_id = ?", simTypeResultID)
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, response.NewInternal(err)
	}
	var rounds []model.Round
	if err := tx.Order("round_index asc").
		Offset(util.Offset(page, pageSize)).Limit(pageSize).
		Find(&rounds).Error; err != nil {
		return nil, response.NewInternal(err)
	}
	items := make([]roundListItem, 0, len(rounds))
	for _, r := range rounds {
		items = append(items, roundListItem{
			ID:            r.ID,
			RoundIndex:    r.RoundIndex,
			Params:        json.RawMessage(r.Params),
			Outputs:       json.RawMessage(r.Outputs),
			Status:        r.Status,
			FlowCurNodeID: r.FlowCurNodeID,
			StuckModuleID: r.StuckModuleID,
		})
	}
	return &roundPage{
		List:     items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    util.Pages(total, pageSize),
	}, nil
}

func GetRound(db *gorm.DB, id uint) (*model.Round, error) {
	var round model.Round
	err := db.Where("id = ?", id).First(&round).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("round")
	}
	if err != nil {
		return nil, response.NewInternal(err)
	}
	return &round, nil
}

type updateStatusReq struct {
	Status   *int    `json:"status" binding:"required"`
	Progress *int    `json:"progress"`
	ErrorMsg *string `json:"errorMsg"`
}

// UpdateSimTypeResultStatus is the execution pipeline's write path.
func UpdateSimTypeResultStatus(db *gorm.DB, id uint, req updateStatusReq) error {
	if _, err := GetSimTypeResult(db, id); err != nil {
		return err
	}
	cols := map[string]any{"status": *req.Status}
	if req.Progress != nil {
		cols["progress"] = *req.Progress
	}
	if err := db.Model(&model.SimTypeResult{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return response.NewInternal(err)
	}
	return nil
}

func UpdateRoundStatus(db *gorm.DB, id uint, req updateStatusReq) error {
	if _, err := GetRound(db, id); err != nil {
		return err
	}
	cols := map[string]any{"status": *req.Status}
	if req.Progress != nil {
		cols["progress"] = *req.Progress
	}
	if req.ErrorMsg != nil {
		cols["error_msg"] = *req.ErrorMsg
	}
	if err := db.Model(&model.Round{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return response.NewInternal(err)
	}
	return nil
}

type analysisFilters struct {
	RoundIndex struct {
		Min *int `json:"min"`
		Max *int `json:"max"`
	} `json:"roundIndex"`
	Status *int `json:"status"`
}

type analysisSampling struct {
	Enabled   bool `json:"enabled"`
	MaxPoints int  `json:"maxPoints"`
}

type analysisReq struct {
	OrderID   uint             `json:"orderId" binding:"required"`
	SimTypeID uint             `json:"simTypeId" binding:"required"`
	ChartType model.ChartType  `json:"chartType" binding:"required"`
	XField    string           `json:"xField"`
	YField    string           `json:"yField"`
	ZField    string           `json:"zField"`
	Filters   analysisFilters  `json:"filters"`
	Sampling  analysisSampling `json:"sampling"`
}

type analysisResp struct {
	ChartType   model.ChartType  `json:"chartType"`
	Data        []map[string]any `json:"data"`
	TotalPoints int              `json:"totalPoints"`
	Sampled     bool             `json:"sampled"`
}

// Analyze filters the rounds of (orderId, simTypeId), extracts the named
// fields from the params-then-outputs bags and downsamples at a fixed
// stride to at most maxPoints rows.
func Analyze(db *gorm.DB, req analysisReq) (*analysisResp, error) {
	switch req.ChartType {
	case model.ChartScatter, model.ChartLine, model.ChartBar, model.ChartHist3D:
	default:
		return nil, response.NewValidationf("chartType %q is not SCATTER, LINE, BAR or HIST3D", req.ChartType)
	}

	tx := db.Model(&model.Round{}).
		Where("order_id = ? AND sim_type_id = ?", req.OrderID, req.SimTypeID)
	if req.Filters.RoundIndex.Min != nil {
		tx = tx.Where("round_index >= ?", *req.Filters.RoundIndex.Min)
	}
	if req.Filters.RoundIndex.Max != nil {
		tx = tx.Where("round_index <= ?", *req.Filters.RoundIndex.Max)
	}
	if req.Filters.Status != nil {
		tx = tx.Where("status = ?", *req.Filters.Status)
	}
	var rounds []model.Round
	if err := tx.Order("round_index asc").Find(&rounds).Error; err != nil {
		return nil, response.NewInternal(err)
	}

	kept, sampled := downsample(rounds, req.Sampling)
	data := make([]map[string]any, 0, len(kept))
	for _, r := range kept {
		point := map[string]any{"roundIndex": r.RoundIndex}
		params := decodeBag(r.Params)
		outputs := decodeBag(r.Outputs)
		if req.XField != "" {
			point["x"] = extractField(params, outputs, req.XField)
		}
		if req.YField != "" {
			point["y"] = extractField(params, outputs, req.YField)
		}
		if req.ZField != "" {
			point["z"] = extractField(params, outputs, req.ZField)
		}
		data = append(data, point)
	}
	return &analysisResp{
		ChartType:   req.ChartType,
		Data:        data,
		TotalPoints: len(data),
		Sampled:     sampled,
	}, nil
}

// downsample keeps rows at stride floor(count/maxPoints), capped at
// maxPoints rows; the kept roundIndex sequence stays strictly increasing.
func downsample(rounds []model.Round, s analysisSampling) (kept []model.Round, sampled bool) {
	maxPoints := s.MaxPoints
	if maxPoints <= 0 {
		maxPoints = analysisMaxPointsDefault
	}
	if maxPoints > analysisMaxPointsCap {
		maxPoints = analysisMaxPointsCap
	}
	if !s.Enabled || len(rounds) <= maxPoints {
		return rounds, false
	}
	step := len(rounds) / maxPoints
	kept = make([]model.Round, 0, maxPoints)
	for i := 0; i < len(rounds) && len(kept) < maxPoints; i += step {
		kept = append(kept, rounds[i])
	}
	return kept, true
}

func decodeBag(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// extractField looks the field up first in params then in outputs; absent
// keys yield nil and the client filters.
func extractField(params, outputs map[string]any, field string) any {
	if v, ok := params[field]; ok {
		return v
	}
	if v, ok := outputs[field]; ok {
		return v
	}
	return nil
}

func RegisterResult(g *gin.RouterGroup) {
	g.GET("/results/order/:id/sim-types", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		results, err := ListOrderSimTypeResults(query.DB, id)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, results)
	})

	g.GET("/results/sim-type/:id", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		result, err := GetSimTypeResult(query.DB, id)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, result)
	})

	g.GET("/results/sim-type/:id/rounds", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		var q listRoundsQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		page, err := ListRounds(query.DB, id, q)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, page)
	})

	g.GET("/results/rounds/:id", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		round, err := GetRound(query.DB, id)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, round)
	})

	g.PATCH("/results/sim-type/:id/status", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		var req updateStatusReq
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		if err := UpdateSimTypeResultStatus(query.DB, id, req); err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, nil)
	})

	g.PATCH("/results/round/:id/status", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		var req updateStatusReq
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		if err := UpdateRoundStatus(query.DB, id, req); err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, nil)
	})

	g.POST("/results/analysis", func(c *gin.Context) {
		var req analysisReq
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		resp, err := Analyze(query.DB, req)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, resp)
	})
}
