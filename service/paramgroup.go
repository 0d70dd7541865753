package service

import (
	"strconv"
	"strings"

	"simorder/cache"
	"simorder/dao/model"
	"simorder/dao/query"
	"simorder/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var paramGroupDef = atomDef[model.ParamGroup]{
	kind:       "param group",
	codeColumn: "name",
	codeOf:     func(g *model.ParamGroup) string { return g.Name },
	validate: func(g *model.ParamGroup) error {
		g.Name = strings.TrimSpace(g.Name)
		if g.Name == "" {
			return response.NewValidation("name required")
		}
		return nil
	},
}

// MaterializedParam is a ParamGroup member merged with its ParamDef
// schema; defaultValue prefers the group override over the def's own.
type MaterializedParam struct {
	ParamDefID   uint    `json:"paramDefId"`
	ParamName    string  `json:"paramName"`
	ParamKey     string  `json:"paramKey"`
	DefaultValue *string `json:"defaultValue"`
	Unit         string  `json:"unit"`
	ValType      string  `json:"valType"`
	Required     bool    `json:"required"`
	Sort         int     `json:"sort"`
}

// ListParamGroupParams materializes the members of one group in
// (sort, id) order, skipping members whose def was soft-deleted.
func ListParamGroupParams(db *gorm.DB, groupID uint) ([]MaterializedParam, error) {
	if _, err := GetAtom[model.ParamGroup](db, "param group", groupID); err != nil {
		return nil, err
	}
	var rels []model.ParamGroupParamRel
	if err := db.Where("param_group_id = ?", groupID).
		Order("sort asc, id asc").Find(&rels).Error; err != nil {
		return nil, response.NewInternal(err)
	}
	out := make([]MaterializedParam, 0, len(rels))
	for _, rel := range rels {
		var def model.ParamDef
		err := db.Where("id = ? AND valid = 1", rel.ParamDefID).First(&def).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return nil, response.NewInternal(err)
		}
		dv := rel.DefaultValue
		if dv == nil {
			dv = def.DefaultVal
		}
		out = append(out, MaterializedParam{
			ParamDefID:   def.ID,
			ParamName:    def.Name,
			ParamKey:     def.Key,
			DefaultValue: dv,
			Unit:         def.Unit,
			ValType:      string(def.ValType),
			Required:     def.Required,
			Sort:         rel.Sort,
		})
	}
	return out, nil
}

type addParamGroupParamReq struct {
	ParamDefID   uint    `json:"paramDefId" binding:"required"`
	DefaultValue *string `json:"defaultValue"`
	Sort         int     `json:"sort"`
}

// AddParamGroupParam links a ParamDef into a group; each def may appear
// at most once per group.
func AddParamGroupParam(db *gorm.DB, groupID uint, req addParamGroupParamReq) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetAtom[model.ParamGroup](tx, "param group", groupID); err != nil {
			return err
		}
		if _, err := GetAtom[model.ParamDef](tx, "param def", req.ParamDefID); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&model.ParamGroupParamRel{}).
			Where("param_group_id = ? AND param_def_id = ?", groupID, req.ParamDefID).
			Count(&n).Error; err != nil {
			return response.NewInternal(err)
		}
		if n > 0 {
			return response.NewDuplicate("param already in group")
		}
		rel := model.ParamGroupParamRel{
			ParamGroupID: groupID,
			ParamDefID:   req.ParamDefID,
			DefaultValue: req.DefaultValue,
			Sort:         req.Sort,
		}
		if err := tx.Create(&rel).Error; err != nil {
			return response.NewInternal(err)
		}
		return nil
	})
}

func RemoveParamGroupParam(db *gorm.DB, groupID, paramDefID uint) error {
	res := db.Where("param_group_id = ? AND param_def_id = ?", groupID, paramDefID).
		Delete(&model.ParamGroupParamRel{})
	if res.Error != nil {
		return response.NewInternal(res.Error)
	}
	if res.RowsAffected == 0 {
		return response.NewNotFound("group param")
	}
	return nil
}

// DeleteParamGroup removes the members and soft-deletes the group in one
// transaction so no orphan rel survives.
func DeleteParamGroup(db *gorm.DB, groupID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := DeleteAtom[model.ParamGroup](tx, "param group", groupID); err != nil {
			return err
		}
		if err := tx.Where("param_group_id = ?", groupID).
			Delete(&model.ParamGroupParamRel{}).Error; err != nil {
			return response.NewInternal(err)
		}
		return nil
	})
}

func RegisterParamGroup(g *gin.RouterGroup) {
	g.GET("/param-groups", listAtomsHandler(paramGroupDef))
	g.POST("/param-groups", createAtomHandler(paramGroupDef))
	g.GET("/param-groups/:id", getAtomHandler(paramGroupDef))
	g.PUT("/param-groups/:id", updateAtomHandler(paramGroupDef))
	g.DELETE("/param-groups/:id", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		if err := DeleteParamGroup(query.DB, id); err != nil {
			response.HandleError(c, err)
			return
		}
		cache.BumpEpoch(c.Request.Context())
		response.Success(c, nil)
	})
	g.GET("/param-groups/:id/params", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		params, err := ListParamGroupParams(query.DB, id)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, params)
	})
	g.POST("/param-groups/:id/params", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		var req addParamGroupParamReq
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		if err := AddParamGroupParam(query.DB, id, req); err != nil {
			response.HandleError(c, err)
			return
		}
		cache.BumpEpoch(c.Request.Context())
		response.Success(c, nil)
	})
	g.DELETE("/param-groups/:id/params/:paramDefId", func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		defID, err := strconv.ParseUint(c.Param("paramDefId"), 10, 64)
		if err != nil {
			response.BadRequestError(c, "invalid paramDefId")
			return
		}
		if err := RemoveParamGroupParam(query.DB, id, uint(defID)); err != nil {
			response.HandleError(c, err)
			return
		}
		cache.BumpEpoch(c.Request.Context())
		response.Success(c, nil)
	})
}
