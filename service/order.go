package service

import (
	"fmt"
	"time"

	"simorder/dao/model"
	"simorder/dao/query"
	"simorder/response"
	"simorder/util"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	orderPageSizeDefault = 20
	orderPageSizeMax     = 100
)

// GenOrderNo builds "ORD-" + UTC date + "-" + currentMillis mod 1e5,
// zero-padded to five digits. Uniqueness holds only at millisecond
// resolution; a collision surfaces as DuplicateResource and the caller
// retries.
func GenOrderNo(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%05d", now.UTC().Format("20060102"), now.UnixMilli()%100000)
}

type submitOrderReq struct {
	ProjectID       uint             `json:"projectId" binding:"required"`
	OriginFile      model.OriginFile `json:"originFile"`
	FoldTypeID      *uint            `json:"foldTypeId"`
	ParticipantUids []uint           `json:"participantUids"`
	Remark          string           `json:"remark"`
	SimTypeIDs      []uint           `json:"simTypeIds"`
	OptParam        datatypes.JSON   `json:"optParam"`
	WorkflowID      *uint            `json:"workflowId"`
	SubmitCheck     datatypes.JSON   `json:"submitCheck"`
	ClientMeta      datatypes.JSON   `json:"clientMeta"`
}

// SubmitOrder persists a new pending order together with one pending
// SimTypeResult row per chosen sim type. optParam is stored verbatim.
func SubmitOrder(db *gorm.DB, req submitOrderReq, userID uint) (*model.Order, error) {
	order := &model.Order{
		OrderNo:         GenOrderNo(time.Now()),
		ProjectID:       req.ProjectID,
		OriginFile:      datatypes.NewJSONType(req.OriginFile),
		FoldTypeID:      req.FoldTypeID,
		ParticipantUids: req.ParticipantUids,
		Remark:          req.Remark,
		SimTypeIDs:      req.SimTypeIDs,
		OptParam:        req.OptParam,
		WorkflowID:      req.WorkflowID,
		SubmitCheck:     req.SubmitCheck,
		ClientMeta:      req.ClientMeta,
		Status:          model.OrderPending,
		Progress:        0,
		CreatedBy:       userID,
	}
	order.Valid = 1
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetAtom[model.Project](tx, "project", req.ProjectID); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&model.Order{}).
			Where("order_no = ?", order.OrderNo).Count(&n).Error; err != nil {
			return response.NewInternal(err)
		}
		if n > 0 {
			return response.NewDuplicate("order number collision, please retry")
		}
		if err := tx.Create(order).Error; err != nil {
			return response.NewInternal(err)
		}
		for _, simTypeID := range req.SimTypeIDs {
			result := model.SimTypeResult{
				OrderID:   order.ID,
				SimTypeID: simTypeID,
				Status:    model.OrderPending,
			}
			result.Valid = 1
			if err := tx.Create(&result).Error; err != nil {
				return response.NewInternal(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

type listOrdersQuery struct {
	util.PageQuery
	Status    *int   `form:"status"`
	ProjectID *uint  `form:"projectId"`
	SimTypeID *uint  `form:"simTypeId"`
	OrderNo   string `form:"orderNo"`
	CreatedBy *uint  `form:"createdBy"`
	StartDate *int64 `form:"startDate"`
	EndDate   *int64 `form:"endDate"`
}

type orderPage struct {
	List     []model.Order `json:"list"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	Pages    int64         `json:"pages"`
}

// ListOrders applies the optional filters and pages createdAt-descending.
// The simTypeId filter joins the order's result rows rather than scanning
// the JSON id array.
func ListOrders(db *gorm.DB, q listOrdersQuery) (*orderPage, error) {
	page, pageSize := q.Clamp(orderPageSizeDefault, orderPageSizeMax)

	tx := db.Model(&model.Order{})
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}
	if q.ProjectID != nil {
		tx = tx.Where("project_id = ?", *q.ProjectID)
	}
	if q.SimTypeID != nil {
		tx = tx.Where("id IN (?)", db.Model(&model.SimTypeResult{}).
			Select("order_id").Where("sim_type_id = ?", *q.SimTypeID))
	}
	if q.OrderNo != "" {
		tx = tx.Where("order_no LIKE ?", "%"+q.OrderNo+"%")
	}
	if q.CreatedBy != nil {
		tx = tx.Where("created_by = ?", *q.CreatedBy)
	}
	if q.StartDate != nil {
		tx = tx.Where("created_at >= ?", *q.StartDate)
	}
	if q.EndDate != nil {
		tx = tx.Where("created_at <= ?", *q.EndDate)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, response.NewInternal(err)
	}
	var orders []model.Order
	if err := tx.Order("created_at desc, id desc").
		Offset(util.Offset(page, pageSize)).Limit(pageSize).
		Find(&orders).Error; err != nil {
		return nil, response.NewInternal(err)
	}
	return &orderPage{
		List:     orders,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    util.Pages(total, pageSize),
	}, nil
}

func GetOrder(db *gorm.DB, id uint) (*model.Order, error) {
	var order model.Order
	err := db.Where("id = ?", id).First(&order).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound("order")
	}
	if err != nil {
		return nil, response.NewInternal(err)
	}
	return &order, nil
}

type updateOrderReq struct {
	Remark          *string         `json:"remark"`
	ParticipantUids *[]uint         `json:"participantUids"`
	OptParam        *datatypes.JSON `json:"optParam"`
}

// UpdateOrder mutates only remark, participantUids and optParam.
func UpdateOrder(db *gorm.DB, id uint, req updateOrderReq) (*model.Order, error) {
	cols := map[string]any{}
	if req.Remark != nil {
		cols["remark"] = *req.Remark
	}
	if req.ParticipantUids != nil {
		cols["participant_uids"] = datatypes.JSONSlice[uint](*req.ParticipantUids)
	}
	if req.OptParam != nil {
		cols["opt_param"] = *req.OptParam
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetOrder(tx, id); err != nil {
			return err
		}
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&model.Order{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return response.NewInternal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetOrder(db, id)
}

// DeleteOrder is permitted only while the order is pending; the cascade
// removes the order's result and round rows in the same transaction.
func DeleteOrder(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		order, err := GetOrder(tx, id)
		if err != nil {
			return err
		}
		if order.Status != model.OrderPending {
			return response.NewBusiness("only pending orders may be deleted")
		}
		if err := tx.Where("order_id = ?", id).Delete(&model.Round{}).Error; err != nil {
			return response.NewInternal(err)
		}
		if err := tx.Where("order_id = ?", id).Delete(&model.SimTypeResult{}).Error; err != nil {
			return response.NewInternal(err)
		}
		if err := tx.Delete(&model.Order{}, id).Error; err != nil {
			return response.NewInternal(err)
		}
		return nil
	})
}

func RegisterOrder(g *gin.RouterGroup) {
	g.GET("/orders/init-config", GetInitConfig)

	g.POST("/orders", func(c *gin.Context) {
		var req submitOrderReq
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		order, err := SubmitOrder(query.DB, req, currentUserID(c))
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, order)
	})

	g.GET("/orders", func(c *gin.Context) {
		var q listOrdersQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		page, err := ListOrders(query.DB, q)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, page)
	})

	g.GET("/orders/:id", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		order, err := GetOrder(query.DB, id)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, order)
	})

	g.PUT("/orders/:id", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		var req updateOrderReq
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		order, err := UpdateOrder(query.DB, id, req)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, order)
	})

	g.DELETE("/orders/:id", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		if err := DeleteOrder(query.DB, id); err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, nil)
	})

	g.GET("/orders/:id/result", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		if _, err := GetOrder(query.DB, id); err != nil {
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
}
