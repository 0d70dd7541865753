package service

import (
	"encoding/json"
	"fmt"
	"strconv"

	"simorder/cache"
	"simorder/dao/model"
	"simorder/dao/query"
	"simorder/response"
	"simorder/util"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// atomDef describes one catalog atom for the generic CRUD registrar.
// codeColumn names the unique-code column ("" disables the check) and
// validate runs at create time.
type atomDef[T any] struct {
	kind       string
	codeColumn string
	codeOf     func(*T) string
	validate   func(*T) error
}

type baseHolder interface {
	BasePtr() *model.Base
}

func registerAtom[T any](g *gin.RouterGroup, path string, def atomDef[T]) {
	g.GET("/"+path, listAtomsHandler(def))
	g.POST("/"+path, createAtomHandler(def))
	g.GET("/"+path+"/:id", getAtomHandler(def))
	g.PUT("/"+path+"/:id", updateAtomHandler(def))
	g.DELETE("/"+path+"/:id", deleteAtomHandler(def))
}

func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, response.NewValidation("invalid id")
	}
	return uint(id), nil
}

// ListAtoms returns the active rows of one atom kind in (sort, id) order.
func ListAtoms[T any](db *gorm.DB) ([]T, error) {
	var items []T
	err := db.Model(new(T)).Where("valid = 1").
		Order("sort asc, id asc").Find(&items).Error
	if err != nil {
		return nil, response.NewInternal(err)
	}
	return items, nil
}

// GetAtom loads one active row by id.
func GetAtom[T any](db *gorm.DB, kind string, id uint) (*T, error) {
	obj := new(T)
	err := db.Where("id = ? AND valid = 1", id).First(obj).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewNotFound(kind)
	}
	if err != nil {
		return nil, response.NewInternal(err)
	}
	return obj, nil
}

// CreateAtom validates and inserts a new atom; the code (when the kind has
// one) must be unique among valid rows.
func CreateAtom[T any](db *gorm.DB, def atomDef[T], obj *T) error {
	if def.validate != nil {
		if err := def.validate(obj); err != nil {
			return err
		}
	}
	base := any(obj).(baseHolder).BasePtr()
	base.ID = 0
	base.Valid = 1
	return db.Transaction(func(tx *gorm.DB) error {
		if def.codeColumn != "" {
			code := def.codeOf(obj)
			if code == "" {
				return response.NewValidation(def.codeColumn + " required")
			}
			var n int64
			if err := tx.Model(new(T)).
				Where(def.codeColumn+" = ? AND valid = 1", code).
				Count(&n).Error; err != nil {
				return response.NewInternal(err)
			}
			if n > 0 {
				return response.NewDuplicate(fmt.Sprintf("%s %q already exists", def.kind, code))
			}
		}
		if err := tx.Create(obj).Error; err != nil {
			return response.NewInternal(err)
		}
		return nil
	})
}

// UpdateAtom applies a partial update: only the keys present in the body
// are written, server-owned columns are stripped. The merged row must
// still pass the atom's validator or the write rolls back.
func UpdateAtom[T any](db *gorm.DB, def atomDef[T], id uint, body map[string]any) (*T, error) {
	cols := util.SnakeKeys(body, "id", "valid", "created_at", "updated_at")
	for k, v := range cols {
		cols[k] = normalizeJSONValue(v)
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetAtom[T](tx, def.kind, id); err != nil {
			return err
		}
		if def.codeColumn != "" {
			if code, ok := cols[def.codeColumn].(string); ok {
				var n int64
				if err := tx.Model(new(T)).
					Where(def.codeColumn+" = ? AND valid = 1 AND id <> ?", code, id).
					Count(&n).Error; err != nil {
					return response.NewInternal(err)
				}
				if n > 0 {
					return response.NewDuplicate(fmt.Sprintf("%s %q already exists", def.kind, code))
				}
			}
		}
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(new(T)).Where("id = ?", id).Updates(cols).Error; err != nil {
			return response.NewInternal(err)
		}
		if def.validate != nil {
			merged, err := GetAtom[T](tx, def.kind, id)
			if err != nil {
				return err
			}
			if err := def.validate(merged); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetAtom[T](db, def.kind, id)
}

// DeleteAtom soft-deletes one active row; deleting an already deleted row
// reports NotFound.
func DeleteAtom[T any](db *gorm.DB, kind string, id uint) error {
	res := db.Model(new(T)).Where("id = ? AND valid = 1", id).Update("valid", 0)
	if res.Error != nil {
		return response.NewInternal(res.Error)
	}
	if res.RowsAffected == 0 {
		return response.NewNotFound(kind)
	}
	return nil
}

// normalizeJSONValue re-marshals nested bodies so map updates can target
// JSON columns across drivers.
func normalizeJSONValue(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return v
		}
		return datatypes.JSON(b)
	default:
		return v
	}
}

func listAtomsHandler[T any](def atomDef[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := ListAtoms[T](query.DB)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, items)
	}
}

func getAtomHandler[T any](def atomDef[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		obj, err := GetAtom[T](query.DB, def.kind, id)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, obj)
	}
}

func createAtomHandler[T any](def atomDef[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		obj := new(T)
		if err := c.ShouldBindJSON(obj); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		if err := CreateAtom(query.DB, def, obj); err != nil {
			response.HandleError(c, err)
			return
		}
		cache.BumpEpoch(c.Request.Context())
		response.Success(c, obj)
	}
}

func updateAtomHandler[T any](def atomDef[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		obj, err := UpdateAtom(query.DB, def, id, body)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		cache.BumpEpoch(c.Request.Context())
		response.Success(c, obj)
	}
}

func deleteAtomHandler[T any](def atomDef[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		if err := DeleteAtom[T](query.DB, def.kind, id); err != nil {
			response.HandleError(c, err)
			return
		}
		cache.BumpEpoch(c.Request.Context())
		response.Success(c, nil)
	}
}
