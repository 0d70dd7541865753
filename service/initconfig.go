package service

import (
	"encoding/json"
	"strconv"

	"simorder/cache"
	"simorder/dao/model"
	"simorder/dao/query"
	"simorder/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// InitConfig is the resolved payload the order-submission UI consumes:
// the project, the chosen sim type, and the ordered option lists for the
// three per-sim-type slots with their defaults flagged.
type InitConfig struct {
	ProjectID   uint   `json:"projectId"`
	ProjectName string `json:"projectName"`
	SimTypeID   uint   `json:"simTypeId"`
	SimTypeName string `json:"simTypeName"`
	SimTypeCode string `json:"simTypeCode"`

	DefaultParamGroup *ParamGroupOption  `json:"defaultParamGroup"`
	ParamGroupOptions []ParamGroupOption `json:"paramGroupOptions"`

	DefaultCondOutGroup *CondOutGroupOption  `json:"defaultCondOutGroup"`
	CondOutGroupOptions []CondOutGroupOption `json:"condOutGroupOptions"`

	DefaultSolver *SolverOption  `json:"defaultSolver"`
	SolverOptions []SolverOption `json:"solverOptions"`
}

type ParamGroupOption struct {
	ParamGroupID uint                `json:"paramGroupId"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	IsDefault    bool                `json:"isDefault"`
	Sort         int                 `json:"sort"`
	Params       []MaterializedParam `json:"params"`
}

type CondOutGroupOption struct {
	CondOutGroupID uint                    `json:"condOutGroupId"`
	Name           string                  `json:"name"`
	Description    string                  `json:"description"`
	IsDefault      bool                    `json:"isDefault"`
	Sort           int                     `json:"sort"`
	Conditions     []MaterializedCondition `json:"conditions"`
	Outputs        []MaterializedOutput    `json:"outputs"`
}

type SolverOption struct {
	SolverID       uint   `json:"solverId"`
	Name           string `json:"name"`
	Code           string `json:"code"`
	Version        string `json:"version"`
	CPUCoreDefault int    `json:"cpuCoreDefault"`
	MemoryDefault  int    `json:"memoryDefault"`
	IsDefault      bool   `json:"isDefault"`
	Sort           int    `json:"sort"`
}

// ResolveInitConfig materializes the default order configuration for
// (projectId, simTypeId?) from one consistent snapshot.
func ResolveInitConfig(db *gorm.DB, projectID uint, simTypeID *uint) (*InitConfig, error) {
	var cfg *InitConfig
	err := db.Transaction(func(tx *gorm.DB) error {
		project, err := GetAtom[model.Project](tx, "project", projectID)
		if err != nil {
			return err
		}
		chosenID, err := chooseSimType(tx, projectID, simTypeID)
		if err != nil {
			return err
		}
		simType, err := GetAtom[model.SimType](tx, "sim type", chosenID)
		if err != nil {
			return err
		}
		cfg = &InitConfig{
			ProjectID:   project.ID,
			ProjectName: project.Name,
			SimTypeID:   simType.ID,
			SimTypeName: simType.Name,
			SimTypeCode: simType.Code,
		}
		if err := resolveParamGroupOptions(tx, cfg); err != nil {
			return err
		}
		if err := resolveCondOutGroupOptions(tx, cfg); err != nil {
			return err
		}
		return resolveSolverOptions(tx, cfg)
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// chooseSimType validates an explicit sim type against the project's edges
// or falls back to the project's unique default edge.
func chooseSimType(tx *gorm.DB, projectID uint, simTypeID *uint) (uint, error) {
	if simTypeID != nil {
		var n int64
		err := tx.Model(&model.ProjectSimTypeRel{}).
			Where("project_id = ? AND sim_type_id = ?", projectID, *simTypeID).
			Count(&n).Error
		if err != nil {
			return 0, response.NewInternal(err)
		}
		if n == 0 {
			return 0, response.NewBusiness("sim type not linked to project")
		}
		return *simTypeID, nil
	}
	var rel model.ProjectSimTypeRel
	err := tx.Where("project_id = ? AND is_default = 1", projectID).First(&rel).Error
	if err == gorm.ErrRecordNotFound {
		return 0, response.NewBusiness("no default sim type")
	}
	if err != nil {
		return 0, response.NewInternal(err)
	}
	return rel.SimTypeID, nil
}

func resolveParamGroupOptions(tx *gorm.DB, cfg *InitConfig) error {
	var rels []model.SimTypeParamGroupRel
	if err := tx.Where("sim_type_id = ?", cfg.SimTypeID).
		Order("sort asc, id asc").Find(&rels).Error; err != nil {
		return response.NewInternal(err)
	}
	cfg.ParamGroupOptions = make([]ParamGroupOption, 0, len(rels))
	for _, rel := range rels {
		var group model.ParamGroup
		err := tx.Where("id = ? AND valid = 1", rel.ParamGroupID).First(&group).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return response.NewInternal(err)
		}
		params, err := ListParamGroupParams(tx, group.ID)
		if err != nil {
			return err
		}
		opt := ParamGroupOption{
			ParamGroupID: group.ID,
			Name:         group.Name,
			Description:  group.Description,
			IsDefault:    rel.IsDefault == 1,
			Sort:         rel.Sort,
			Params:       params,
		}
		cfg.ParamGroupOptions = append(cfg.ParamGroupOptions, opt)
		if opt.IsDefault {
			def := opt
			cfg.DefaultParamGroup = &def
		}
	}
	return nil
}

func resolveCondOutGroupOptions(tx *gorm.DB, cfg *InitConfig) error {
	var rels []model.SimTypeCondOutGroupRel
	if err := tx.Where("sim_type_id = ?", cfg.SimTypeID).
		Order("sort asc, id asc").Find(&rels).Error; err != nil {
		return response.NewInternal(err)
	}
	cfg.CondOutGroupOptions = make([]CondOutGroupOption, 0, len(rels))
	for _, rel := range rels {
		var group model.CondOutGroup
		err := tx.Where("id = ? AND valid = 1", rel.CondOutGroupID).First(&group).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return response.NewInternal(err)
		}
		conditions, err := ListCondOutGroupConditions(tx, group.ID)
		if err != nil {
			return err
		}
		outputs, err := ListCondOutGroupOutputs(tx, group.ID)
		if err != nil {
			return err
		}
		opt := CondOutGroupOption{
			CondOutGroupID: group.ID,
			Name:           group.Name,
			Description:    group.Description,
			IsDefault:      rel.IsDefault == 1,
			Sort:           rel.Sort,
			Conditions:     conditions,
			Outputs:        outputs,
		}
		cfg.CondOutGroupOptions = append(cfg.CondOutGroupOptions, opt)
		if opt.IsDefault {
			def := opt
			cfg.DefaultCondOutGroup = &def
		}
	}
	return nil
}

func resolveSolverOptions(tx *gorm.DB, cfg *InitConfig) error {
	var rels []model.SimTypeSolverRel
	if err := tx.Where("sim_type_id = ?", cfg.SimTypeID).
		Order("sort asc, id asc").Find(&rels).Error; err != nil {
		return response.NewInternal(err)
	}
	cfg.SolverOptions = make([]SolverOption, 0, len(rels))
	for _, rel := range rels {
		var solver model.Solver
		err := tx.Where("id = ? AND valid = 1", rel.SolverID).First(&solver).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return response.NewInternal(err)
		}
		opt := SolverOption{
			SolverID:       solver.ID,
			Name:           solver.Name,
			Code:           solver.Code,
			Version:        solver.Version,
			CPUCoreDefault: solver.CPUCoreDefault,
			MemoryDefault:  solver.MemoryDefault,
			IsDefault:      rel.IsDefault == 1,
			Sort:           rel.Sort,
		}
		cfg.SolverOptions = append(cfg.SolverOptions, opt)
		if opt.IsDefault {
			def := opt
			cfg.DefaultSolver = &def
		}
	}
	return nil
}

// GetInitConfig handles GET /orders/init-config, with a best-effort redis
// read-through keyed by (epoch, projectId, simTypeId, foldTypeId).
func GetInitConfig(c *gin.Context) {
	projectID, err := uintQuery(c, "projectId")
	if err != nil || projectID == nil {
		response.BadRequestError(c, "projectId required")
		return
	}
	simTypeID, err := uintQuery(c, "simTypeId")
	if err != nil {
		response.BadRequestError(c, "invalid simTypeId")
		return
	}
	foldTypeID, err := uintQuery(c, "foldTypeId")
	if err != nil {
		response.BadRequestError(c, "invalid foldTypeId")
		return
	}

	ctx := c.Request.Context()
	var key string
	if cache.Enabled() {
		key = cache.InitConfigKey(cache.Epoch(ctx), *projectID, simTypeID, foldTypeID)
		if b, ok := cache.GetInitConfig(ctx, key); ok {
			response.Success(c, json.RawMessage(b))
			return
		}
	}

	cfg, err := ResolveInitConfig(query.DB, *projectID, simTypeID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if cache.Enabled() {
		if b, err := json.Marshal(cfg); err == nil {
			cache.SetInitConfig(ctx, key, b)
		}
	}
	response.Success(c, cfg)
}

func uintQuery(c *gin.Context, key string) (*uint, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, err
	}
	v := uint(n)
	return &v, nil
}
