package service

import (
	"encoding/json"
	"strconv"
	"time"

	"simorder/cache"
	"simorder/dao/query"
	"simorder/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// assocKind describes one of the four association tables so a single
// implementation can serve them all.
type assocKind struct {
	label       string // child label for messages, e.g. "sim type"
	table       string
	parentCol   string
	childCol    string
	parentTable string
	childTable  string
	childJSON   string // request body key for the child id
	hasVersion  bool   // child carries a version column (solvers)
}

var (
	projectSimTypeAssoc = assocKind{
		label: "sim type", table: "project_sim_type_rels",
		parentCol: "project_id", childCol: "sim_type_id",
		parentTable: "projects", childTable: "sim_types",
		childJSON: "simTypeId",
	}
	simTypeParamGroupAssoc = assocKind{
		label: "param group", table: "sim_type_param_group_rels",
		parentCol: "sim_type_id", childCol: "param_group_id",
		parentTable: "sim_types", childTable: "param_groups",
		childJSON: "paramGroupId",
	}
	simTypeCondOutGroupAssoc = assocKind{
		label: "cond-out group", table: "sim_type_cond_out_group_rels",
		parentCol: "sim_type_id", childCol: "cond_out_group_id",
		parentTable: "sim_types", childTable: "cond_out_groups",
		childJSON: "condOutGroupId",
	}
	simTypeSolverAssoc = assocKind{
		label: "solver", table: "sim_type_solver_rels",
		parentCol: "sim_type_id", childCol: "solver_id",
		parentTable: "sim_types", childTable: "solvers",
		childJSON: "solverId", hasVersion: true,
	}
)

// AssocEdgeView is an edge enriched with the child's identity for read
// paths; the persisted row stays bare.
type AssocEdgeView struct {
	ID           uint   `json:"id"`
	ParentID     uint   `json:"parentId"`
	ChildID      uint   `json:"childId"`
	IsDefault    int8   `json:"isDefault"`
	Sort         int    `json:"sort"`
	CreatedAt    int64  `json:"createdAt"`
	ChildName    string `json:"childName"`
	ChildCode    string `json:"childCode"`
	ChildVersion string `json:"childVersion,omitempty"`
}

// ListAssoc returns the parent's edges in (sort, id) order with child
// identity joined in. Edges to soft-deleted children keep their row but
// present empty identity; the resolver skips them.
func (k assocKind) ListAssoc(db *gorm.DB, parentID uint) ([]AssocEdgeView, error) {
	sel := "r.id, r." + k.parentCol + " AS parent_id, r." + k.childCol + " AS child_id, " +
		"r.is_default, r.sort, r.created_at, " +
		"COALESCE(c.name, '') AS child_name"
	if k.table == "sim_type_param_group_rels" || k.table == "sim_type_cond_out_group_rels" {
		// bundles have no code column
		sel += ", '' AS child_code"
	} else {
		sel += ", COALESCE(c.code, '') AS child_code"
	}
	if k.hasVersion {
		sel += ", COALESCE(c.version, '') AS child_version"
	}
	var edges []AssocEdgeView
	err := db.Table(k.table+" AS r").
		Select(sel).
		Joins("LEFT JOIN "+k.childTable+" AS c ON c.id = r."+k.childCol+" AND c.valid = 1").
		Where("r."+k.parentCol+" = ?", parentID).
		Order("r.sort asc, r.id asc").
		Scan(&edges).Error
	if err != nil {
		return nil, response.NewInternal(err)
	}
	return edges, nil
}

// AddAssoc links (parent, child). When isDefault is set the parent's
// current default is cleared in the same transaction, so readers never
// observe two defaults.
func (k assocKind) AddAssoc(db *gorm.DB, parentID, childID uint, isDefault int8, sort int) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := k.requireRow(tx, k.parentTable, parentID, "parent"); err != nil {
			return err
		}
		if err := k.requireRow(tx, k.childTable, childID, k.label); err != nil {
			return err
		}
		var n int64
		if err := tx.Table(k.table).
			Where(k.parentCol+" = ? AND "+k.childCol+" = ?", parentID, childID).
			Count(&n).Error; err != nil {
			return response.NewInternal(err)
		}
		if n > 0 {
			return response.NewDuplicate("already linked")
		}
		if isDefault == 1 {
			if err := tx.Table(k.table).
				Where(k.parentCol+" = ? AND is_default = 1", parentID).
				Update("is_default", 0).Error; err != nil {
				return response.NewInternal(err)
			}
		}
		row := map[string]any{
			k.parentCol:  parentID,
			k.childCol:   childID,
			"is_default": isDefault,
			"sort":       sort,
			"created_at": time.Now().Unix(),
		}
		if err := tx.Table(k.table).Create(row).Error; err != nil {
			return response.NewInternal(err)
		}
		return nil
	})
}

// SetDefaultAssoc makes (parent, child) the parent's sole default edge.
// Idempotent: re-setting the current default leaves the post-state
// unchanged and invariant-true.
func (k assocKind) SetDefaultAssoc(db *gorm.DB, parentID, childID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return applyDefault(tx, k, parentID, childID)
	})
}

// applyDefault is the transactional clear-then-set helper: it zeroes any
// current default of the parent, then flags the target edge, asserting
// exactly one row was hit.
func applyDefault(tx *gorm.DB, k assocKind, parentID, childID uint) error {
	if err := tx.Table(k.table).
		Where(k.parentCol+" = ? AND is_default = 1 AND "+k.childCol+" <> ?", parentID, childID).
		Update("is_default", 0).Error; err != nil {
		return response.NewInternal(err)
	}
	res := tx.Table(k.table).
		Where(k.parentCol+" = ? AND "+k.childCol+" = ?", parentID, childID).
		Update("is_default", 1)
	if res.Error != nil {
		return response.NewInternal(res.Error)
	}
	if res.RowsAffected != 1 {
		return response.NewNotFound(k.label + " link")
	}
	return nil
}

// RemoveAssoc deletes the edge. Removing the default edge leaves the
// parent with no default; callers must pick a new one.
func (k assocKind) RemoveAssoc(db *gorm.DB, parentID, childID uint) error {
	res := db.Exec("DELETE FROM "+k.table+" WHERE "+k.parentCol+" = ? AND "+k.childCol+" = ?",
		parentID, childID)
	if res.Error != nil {
		return response.NewInternal(res.Error)
	}
	if res.RowsAffected == 0 {
		return response.NewNotFound(k.label + " link")
	}
	return nil
}

func (k assocKind) requireRow(tx *gorm.DB, table string, id uint, label string) error {
	var n int64
	if err := tx.Table(table).Where("id = ? AND valid = 1", id).Count(&n).Error; err != nil {
		return response.NewInternal(err)
	}
	if n == 0 {
		return response.NewNotFound(label)
	}
	return nil
}

// registerAssoc mounts list/add/remove/set-default for one association
// kind under parentGroup/:id/childPath.
func registerAssoc(g *gin.RouterGroup, parentPath, childPath string, k assocKind) {
	base := "/" + parentPath + "/:id/" + childPath

	g.GET(base, func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		edges, err := k.ListAssoc(query.DB, id)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, edges)
	})

	g.POST(base, func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		var body map[string]json.RawMessage
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		childID, ok := uintField(body, k.childJSON)
		if !ok || childID == 0 {
			response.BadRequestError(c, k.childJSON+" required")
			return
		}
		isDefault := int8(0)
		if v, ok := uintField(body, "isDefault"); ok && v == 1 {
			isDefault = 1
		}
		sort := 0
		if v, ok := uintField(body, "sort"); ok {
			sort = int(v)
		}
		if err := k.AddAssoc(query.DB, id, childID, isDefault, sort); err != nil {
			response.HandleError(c, err)
			return
		}
		cache.BumpEpoch(c.Request.Context())
		response.Success(c, nil)
	})

	g.DELETE(base+"/:childId", func(c *gin.Context) {
		id, childID, err := parseEdgeParams(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		if err := k.RemoveAssoc(query.DB, id, childID); err != nil {
			response.HandleError(c, err)
			return
		}
		cache.BumpEpoch(c.Request.Context())
		response.Success(c, nil)
	})

	g.PUT(base+"/:childId/default", func(c *gin.Context) {
		id, childID, err := parseEdgeParams(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		if err := k.SetDefaultAssoc(query.DB, id, childID); err != nil {
			response.HandleError(c, err)
			return
		}
		cache.BumpEpoch(c.Request.Context())
		response.Success(c, nil)
	})
}

func parseEdgeParams(c *gin.Context) (parentID, childID uint, err error) {
	parentID, err = parseIDParam(c)
	if err != nil {
		return 0, 0, err
	}
	cid, perr := strconv.ParseUint(c.Param("childId"), 10, 64)
	if perr != nil || cid == 0 {
		return 0, 0, response.NewValidation("invalid childId")
	}
	return parentID, uint(cid), nil
}

func uintField(body map[string]json.RawMessage, key string) (uint, bool) {
	raw, ok := body[key]
	if !ok {
		return 0, false
	}
	var n uint
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// RegisterAssociations mounts all four association kinds.
func RegisterAssociations(g *gin.RouterGroup) {
	registerAssoc(g, "projects", "sim-types", projectSimTypeAssoc)
	registerAssoc(g, "sim-types", "param-groups", simTypeParamGroupAssoc)
	registerAssoc(g, "sim-types", "cond-out-groups", simTypeCondOutGroupAssoc)
	registerAssoc(g, "sim-types", "solvers", simTypeSolverAssoc)
}
