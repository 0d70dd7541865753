package service

import (
	"testing"

	"simorder/dao/model"
	"simorder/response"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestDB opens an in-memory sqlite database with the full schema.
// MaxOpenConns(1) keeps every connection on the same memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.Project{},
		&model.SimType{},
		&model.ParamDef{},
		&model.ConditionDef{},
		&model.OutputDef{},
		&model.Solver{},
		&model.FoldType{},
		&model.StatusDef{},
		&model.Workflow{},
		&model.AutomationModule{},
		&model.ModelLevel{},
		&model.CareDevice{},
		&model.SolverResource{},
		&model.Department{},
		&model.ParamGroup{},
		&model.ParamGroupParamRel{},
		&model.CondOutGroup{},
		&model.CondOutGroupConditionRel{},
		&model.CondOutGroupOutputRel{},
		&model.ProjectSimTypeRel{},
		&model.SimTypeParamGroupRel{},
		&model.SimTypeCondOutGroupRel{},
		&model.SimTypeSolverRel{},
		&model.Order{},
		&model.SimTypeResult{},
		&model.Round{},
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.Menu{},
	))
	return db
}

func errCode(t *testing.T, err error) response.ErrorCode {
	t.Helper()
	var e *response.Error
	require.ErrorAs(t, err, &e)
	return e.Code
}

func seedProject(t *testing.T, db *gorm.DB, id uint, code string) *model.Project {
	t.Helper()
	p := &model.Project{Name: "project " + code, Code: code}
	p.ID = id
	p.Valid = 1
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedSimType(t *testing.T, db *gorm.DB, id uint, code string) *model.SimType {
	t.Helper()
	s := &model.SimType{Name: "sim type " + code, Code: code}
	s.ID = id
	s.Valid = 1
	require.NoError(t, db.Create(s).Error)
	return s
}

func seedParamGroup(t *testing.T, db *gorm.DB, id uint, name string) *model.ParamGroup {
	t.Helper()
	g := &model.ParamGroup{Name: name}
	g.ID = id
	g.Valid = 1
	require.NoError(t, db.Create(g).Error)
	return g
}

func seedParamDef(t *testing.T, db *gorm.DB, id uint, key string, defaultVal *string) *model.ParamDef {
	t.Helper()
	d := &model.ParamDef{Name: "param " + key, Key: key, ValType: model.ValTypeNumber, DefaultVal: defaultVal}
	d.ID = id
	d.Valid = 1
	require.NoError(t, db.Create(d).Error)
	return d
}

func seedCondOutGroup(t *testing.T, db *gorm.DB, id uint, name string) *model.CondOutGroup {
	t.Helper()
	g := &model.CondOutGroup{Name: name}
	g.ID = id
	g.Valid = 1
	require.NoError(t, db.Create(g).Error)
	return g
}

func seedConditionDef(t *testing.T, db *gorm.DB, id uint, code string) *model.ConditionDef {
	t.Helper()
	d := &model.ConditionDef{Name: "condition " + code, Code: code}
	d.ID = id
	d.Valid = 1
	require.NoError(t, db.Create(d).Error)
	return d
}

func seedOutputDef(t *testing.T, db *gorm.DB, id uint, code string) *model.OutputDef {
	t.Helper()
	d := &model.OutputDef{Name: "output " + code, Code: code, ValType: model.ValTypeNumber}
	d.ID = id
	d.Valid = 1
	require.NoError(t, db.Create(d).Error)
	return d
}

func seedSolver(t *testing.T, db *gorm.DB, id uint, code string) *model.Solver {
	t.Helper()
	s := &model.Solver{
		Name: "solver " + code, Code: code, Version: "1.0",
		CPUCoreMin: 1, CPUCoreDefault: 4, CPUCoreMax: 8,
		MemoryMin: 1, MemoryDefault: 8, MemoryMax: 16,
	}
	s.ID = id
	s.Valid = 1
	require.NoError(t, db.Create(s).Error)
	return s
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func uintPtr(n uint) *uint { return &n }
