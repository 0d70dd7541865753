package service

import (
	"testing"

	"simorder/dao/model"
	"simorder/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedInitConfigFixture(t *testing.T, db *gorm.DB) {
	t.Helper()
	seedProject(t, db, 1, "P1")
	seedSimType(t, db, 10, "ST-A")
	seedSimType(t, db, 20, "ST-B")
	require.NoError(t, projectSimTypeAssoc.AddAssoc(db, 1, 10, 1, 0))
	require.NoError(t, projectSimTypeAssoc.AddAssoc(db, 1, 20, 0, 1))

	seedParamGroup(t, db, 100, "PG-A")
	seedParamGroup(t, db, 101, "PG-B")
	seedParamDef(t, db, 200, "thickness", strPtr("1.0"))
	seedParamDef(t, db, 201, "width", strPtr("4.2"))
	require.NoError(t, AddParamGroupParam(db, 100, addParamGroupParamReq{
		ParamDefID: 200, DefaultValue: strPtr("2.5"), Sort: 1,
	}))
	require.NoError(t, AddParamGroupParam(db, 100, addParamGroupParamReq{
		ParamDefID: 201, Sort: 2,
	}))
	require.NoError(t, simTypeParamGroupAssoc.AddAssoc(db, 10, 100, 1, 0))
	require.NoError(t, simTypeParamGroupAssoc.AddAssoc(db, 10, 101, 0, 1))

	seedCondOutGroup(t, db, 300, "COG-A")
	seedConditionDef(t, db, 400, "thermal")
	seedOutputDef(t, db, 500, "maxStress")
	require.NoError(t, AddCondOutGroupCondition(db, 300, addCondReq{ConditionDefID: 400}))
	require.NoError(t, AddCondOutGroupOutput(db, 300, addOutputReq{OutputDefID: 500}))
	require.NoError(t, simTypeCondOutGroupAssoc.AddAssoc(db, 10, 300, 1, 0))

	seedSolver(t, db, 600, "nastran")
	seedSolver(t, db, 601, "abaqus")
	require.NoError(t, simTypeSolverAssoc.AddAssoc(db, 10, 600, 1, 0))
	require.NoError(t, simTypeSolverAssoc.AddAssoc(db, 10, 601, 0, 1))
}

func TestResolveInitConfigDefaults(t *testing.T) {
	db := newTestDB(t)
	seedInitConfigFixture(t, db)

	cfg, err := ResolveInitConfig(db, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, uint(1), cfg.ProjectID)
	assert.Equal(t, uint(10), cfg.SimTypeID)
	assert.Equal(t, "ST-A", cfg.SimTypeCode)

	require.NotNil(t, cfg.DefaultParamGroup)
	assert.Equal(t, uint(100), cfg.DefaultParamGroup.ParamGroupID)
	require.Len(t, cfg.ParamGroupOptions, 2)
	assert.Equal(t, uint(100), cfg.ParamGroupOptions[0].ParamGroupID)
	assert.Equal(t, uint(101), cfg.ParamGroupOptions[1].ParamGroupID)

	// group override beats the def's own default; absent override falls back
	params := cfg.DefaultParamGroup.Params
	require.Len(t, params, 2)
	assert.Equal(t, "thickness", params[0].ParamKey)
	require.NotNil(t, params[0].DefaultValue)
	assert.Equal(t, "2.5", *params[0].DefaultValue)
	assert.Equal(t, "width", params[1].ParamKey)
	require.NotNil(t, params[1].DefaultValue)
	assert.Equal(t, "4.2", *params[1].DefaultValue)

	require.NotNil(t, cfg.DefaultCondOutGroup)
	assert.Equal(t, uint(300), cfg.DefaultCondOutGroup.CondOutGroupID)
	require.Len(t, cfg.DefaultCondOutGroup.Conditions, 1)
	assert.Equal(t, "thermal", cfg.DefaultCondOutGroup.Conditions[0].ConditionCode)
	require.Len(t, cfg.DefaultCondOutGroup.Outputs, 1)
	assert.Equal(t, "maxStress", cfg.DefaultCondOutGroup.Outputs[0].OutputCode)

	require.NotNil(t, cfg.DefaultSolver)
	assert.Equal(t, uint(600), cfg.DefaultSolver.SolverID)
	assert.Equal(t, 4, cfg.DefaultSolver.CPUCoreDefault)
	require.Len(t, cfg.SolverOptions, 2)
}

func TestResolveInitConfigExplicitSimType(t *testing.T) {
	db := newTestDB(t)
	seedInitConfigFixture(t, db)

	cfg, err := ResolveInitConfig(db, 1, uintPtr(20))
	require.NoError(t, err)
	assert.Equal(t, uint(20), cfg.SimTypeID)
	assert.Empty(t, cfg.ParamGroupOptions)
	assert.Nil(t, cfg.DefaultParamGroup)
	assert.Nil(t, cfg.DefaultSolver)
}

func TestResolveInitConfigRejections(t *testing.T) {
	db := newTestDB(t)
	seedInitConfigFixture(t, db)

	_, err := ResolveInitConfig(db, 99, nil)
	assert.Equal(t, response.ResourceNotFound, errCode(t, err))

	_, err = ResolveInitConfig(db, 1, uintPtr(99))
	assert.Equal(t, response.BusinessError, errCode(t, err))

	// no default edge left after removing it
	require.NoError(t, projectSimTypeAssoc.RemoveAssoc(db, 1, 10))
	_, err = ResolveInitConfig(db, 1, nil)
	assert.Equal(t, response.BusinessError, errCode(t, err))
}

func TestResolveInitConfigSkipsDeletedChildren(t *testing.T) {
	db := newTestDB(t)
	seedInitConfigFixture(t, db)

	require.NoError(t, db.Model(&model.ParamGroup{}).Where("id = ?", 101).
		Update("valid", 0).Error)
	require.NoError(t, db.Model(&model.ParamDef{}).Where("id = ?", 201).
		Update("valid", 0).Error)

	cfg, err := ResolveInitConfig(db, 1, nil)
	require.NoError(t, err)
	require.Len(t, cfg.ParamGroupOptions, 1)
	assert.Equal(t, uint(100), cfg.ParamGroupOptions[0].ParamGroupID)
	require.Len(t, cfg.ParamGroupOptions[0].Params, 1)
	assert.Equal(t, "thickness", cfg.ParamGroupOptions[0].Params[0].ParamKey)
}
