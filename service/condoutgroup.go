package service

import (
	"strconv"
	"strings"

	"simorder/cache"
	"simorder/dao/model"
	"simorder/dao/query"
	"simorder/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var condOutGroupDef = atomDef[model.CondOutGroup]{
	kind:       "cond-out group",
	codeColumn: "name",
	codeOf:     func(g *model.CondOutGroup) string { return g.Name },
	validate: func(g *model.CondOutGroup) error {
		g.Name = strings.TrimSpace(g.Name)
		if g.Name == "" {
			return response.NewValidation("name required")
		}
		return nil
	},
}

// MaterializedCondition is a group condition merged with its def: the
// def's schema is inlined, the rel's configData override is kept.
type MaterializedCondition struct {
	ConditionDefID  uint           `json:"conditionDefId"`
	ConditionName   string         `json:"conditionName"`
	ConditionCode   string         `json:"conditionCode"`
	Unit            string         `json:"unit"`
	ConditionSchema datatypes.JSON `json:"conditionSchema"`
	ConfigData      datatypes.JSON `json:"configData"`
	Sort            int            `json:"sort"`
}

type MaterializedOutput struct {
	OutputDefID uint   `json:"outputDefId"`
	OutputName  string `json:"outputName"`
	OutputCode  string `json:"outputCode"`
	Unit        string `json:"unit"`
	ValType     string `json:"valType"`
	Sort        int    `json:"sort"`
}

func ListCondOutGroupConditions(db *gorm.DB, groupID uint) ([]MaterializedCondition, error) {
	if _, err := GetAtom[model.CondOutGroup](db, "cond-out group", groupID); err != nil {
		return nil, err
	}
	var rels []model.CondOutGroupConditionRel
	if err := db.Where("cond_out_group_id = ?", groupID).
		Order("sort asc, id asc").Find(&rels).Error; err != nil {
		return nil, response.NewInternal(err)
	}
	out := make([]MaterializedCondition, 0, len(rels))
	for _, rel := range rels {
		var def model.ConditionDef
		err := db.Where("id = ? AND valid = 1", rel.ConditionDefID).First(&def).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return nil, response.NewInternal(err)
		}
		out = append(out, MaterializedCondition{
			ConditionDefID:  def.ID,
			ConditionName:   def.Name,
			ConditionCode:   def.Code,
			Unit:            def.Unit,
			ConditionSchema: def.ConditionSchema,
			ConfigData:      rel.ConfigData,
			Sort:            rel.Sort,
		})
	}
	return out, nil
}

func ListCondOutGroupOutputs(db *gorm.DB, groupID uint) ([]MaterializedOutput, error) {
	if _, err := GetAtom[model.CondOutGroup](db, "cond-out group", groupID); err != nil {
		return nil, err
	}
	var rels []model.CondOutGroupOutputRel
	if err := db.Where("cond_out_group_id = ?", groupID).
		Order("sort asc, id asc").Find(&rels).Error; err != nil {
		return nil, response.NewInternal(err)
	}
	out := make([]MaterializedOutput, 0, len(rels))
	for _, rel := range rels {
		var def model.OutputDef
		err := db.Where("id = ? AND valid = 1", rel.OutputDefID).First(&def).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return nil, response.NewInternal(err)
		}
		out = append(out, MaterializedOutput{
			OutputDefID: def.ID,
			OutputName:  def.Name,
			OutputCode:  def.Code,
			Unit:        def.Unit,
			ValType:     string(def.ValType),
			Sort:        rel.Sort,
		})
	}
	return out, nil
}

type addCondReq struct {
	ConditionDefID uint           `json:"conditionDefId" binding:"required"`
	ConfigData     datatypes.JSON `json:"configData"`
	Sort           int            `json:"sort"`
}

func AddCondOutGroupCondition(db *gorm.DB, groupID uint, req addCondReq) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetAtom[model.CondOutGroup](tx, "cond-out group", groupID); err != nil {
			return err
		}
		if _, err := GetAtom[model.ConditionDef](tx, "condition def", req.ConditionDefID); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&model.CondOutGroupConditionRel{}).
			Where("cond_out_group_id = ? AND condition_def_id = ?", groupID, req.ConditionDefID).
			Count(&n).Error; err != nil {
			return response.NewInternal(err)
		}
		if n > 0 {
			return response.NewDuplicate("condition already in group")
		}
		rel := model.CondOutGroupConditionRel{
			CondOutGroupID: groupID,
			ConditionDefID: req.ConditionDefID,
			ConfigData:     req.ConfigData,
			Sort:           req.Sort,
		}
		if err := tx.Create(&rel).Error; err != nil {
			return response.NewInternal(err)
		}
		return nil
	})
}

type addOutputReq struct {
	OutputDefID uint `json:"outputDefId" binding:"required"`
	Sort        int  `json:"sort"`
}

func AddCondOutGroupOutput(db *gorm.DB, groupID uint, req addOutputReq) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetAtom[model.CondOutGroup](tx, "cond-out group", groupID); err != nil {
			return err
		}
		if _, err := GetAtom[model.OutputDef](tx, "output def", req.OutputDefID); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&model.CondOutGroupOutputRel{}).
			Where("cond_out_group_id = ? AND output_def_id = ?", groupID, req.OutputDefID).
			Count(&n).Error; err != nil {
			return response.NewInternal(err)
		}
		if n > 0 {
			return response.NewDuplicate("output already in group")
		}
		rel := model.CondOutGroupOutputRel{
			CondOutGroupID: groupID,
			OutputDefID:    req.OutputDefID,
			Sort:           req.Sort,
		}
		if err := tx.Create(&rel).Error; err != nil {
			return response.NewInternal(err)
		}
		return nil
	})
}

func RemoveCondOutGroupCondition(db *gorm.DB, groupID, condDefID uint) error {
	res := db.Where("cond_out_group_id = ? AND condition_def_id = ?", groupID, condDefID).
		Delete(&model.CondOutGroupConditionRel{})
	if res.Error != nil {
		return response.NewInternal(res.Error)
	}
	if res.RowsAffected == 0 {
		return response.NewNotFound("group condition")
	}
	return nil
}

func RemoveCondOutGroupOutput(db *gorm.DB, groupID, outputDefID uint) error {
	res := db.Where("cond_out_group_id = ? AND output_def_id = ?", groupID, outputDefID).
		Delete(&model.CondOutGroupOutputRel{})
	if res.Error != nil {
		return response.NewInternal(res.Error)
	}
	if res.RowsAffected == 0 {
		return response.NewNotFound("group output")
	}
	return nil
}

// DeleteCondOutGroup removes both member kinds and soft-deletes the group
// in one transaction.
func DeleteCondOutGroup(db *gorm.DB, groupID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := DeleteAtom[model.CondOutGroup](tx, "cond-out group", groupID); err != nil {
			return err
		}
		if err := tx.Where("cond_out_group_id = ?", groupID).
			Delete(&model.CondOutGroupConditionRel{}).Error; err != nil {
			return response.NewInternal(err)
		}
		if err := tx.Where("cond_out_group_id = ?", groupID).
			Delete(&model.CondOutGroupOutputRel{}).Error; err != nil {
			return response.NewInternal(err)
		}
		return nil
	})
}

func RegisterCondOutGroup(g *gin.RouterGroup) {
	g.GET("/cond-out-groups", listAtomsHandler(condOutGroupDef))
	g.POST("/cond-out-groups", createAtomHandler(condOutGroupDef))
	g.GET("/cond-out-groups/:id", getAtomHandler(condOutGroupDef))
	g.PUT("/cond-out-groups/:id", updateAtomHandler(condOutGroupDef))
	g.DELETE("/cond-out-groups/:id", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		if err := DeleteCondOutGroup(query.DB, id); err != nil {
			response.HandleError(c, err)
			return
		}
		cache.BumpEpoch(c.Request.Context())
		response.Success(c, nil)
	})

	g.GET("/cond-out-groups/:id/conditions", withGroupID(func(c *gin.Context, id uint) {
		items, err := ListCondOutGroupConditions(query.DB, id)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, items)
	}))
	g.POST("/cond-out-groups/:id/conditions", withGroupID(func(c *gin.Context, id uint) {
		var req addCondReq
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		if err := AddCondOutGroupCondition(query.DB, id, req); err != nil {
			response.HandleError(c, err)
			return
		}
		cache.BumpEpoch(c.Request.Context())
		response.Success(c, nil)
	}))
	g.DELETE("/cond-out-groups/:id/conditions/:conditionDefId", withGroupID(func(c *gin.Context, id uint) {
		defID, err := strconv.ParseUint(c.Param("conditionDefId"), 10, 64)
		if err != nil {
			response.BadRequestError(c, "invalid conditionDefId")
			return
		}
		if err := RemoveCondOutGroupCondition(query.DB, id, uint(defID)); err != nil {
			response.HandleError(c, err)
			return
		}
		cache.BumpEpoch(c.Request.Context())
		response.Success(c, nil)
	}))

	g.GET("/cond-out-groups/:id/outputs", withGroupID(func(c *gin.Context, id uint) {
		items, err := ListCondOutGroupOutputs(query.DB, id)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, items)
	}))
	g.POST("/cond-out-groups/:id/outputs", withGroupID(func(c *gin.Context, id uint) {
		var req addOutputReq
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		if err := AddCondOutGroupOutput(query.DB, id, req); err != nil {
			response.HandleError(c, err)
			return
		}
		cache.BumpEpoch(c.Request.Context())
		response.Success(c, nil)
	}))
	g.DELETE("/cond-out-groups/:id/outputs/:outputDefId", withGroupID(func(c *gin.Context, id uint) {
		defID, err := strconv.ParseUint(c.Param("outputDefId"), 10, 64)
		if err != nil {
			response.BadRequestError(c, "invalid outputDefId")
			return
		}
		if err := RemoveCondOutGroupOutput(query.DB, id, uint(defID)); err != nil {
			response.HandleError(c, err)
			return
		}
		cache.BumpEpoch(c.Request.Context())
		response.Success(c, nil)
	}))
}

func withGroupID(h func(*gin.Context, uint)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		h(c, id)
	}
}
