package service

import (
	"testing"

	"simorder/dao/model"
	"simorder/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func projectDefaults(t *testing.T, db *gorm.DB, projectID uint) []uint {
	t.Helper()
	var rels []model.ProjectSimTypeRel
	require.NoError(t, db.Where("project_id = ? AND is_default = 1", projectID).
		Find(&rels).Error)
	ids := make([]uint, 0, len(rels))
	for _, r := range rels {
		ids = append(ids, r.SimTypeID)
	}
	return ids
}

func TestAddAssocDefaultStaysExclusive(t *testing.T) {
	db := newTestDB(t)
	seedProject(t, db, 1, "P1")
	seedSimType(t, db, 10, "ST-A")
	seedSimType(t, db, 20, "ST-B")
	seedSimType(t, db, 30, "ST-C")

	require.NoError(t, projectSimTypeAssoc.AddAssoc(db, 1, 10, 0, 0))
	require.NoError(t, projectSimTypeAssoc.AddAssoc(db, 1, 20, 1, 1))
	require.NoError(t, projectSimTypeAssoc.AddAssoc(db, 1, 30, 1, 2))

	// the last add with isDefault=1 displaced the earlier default
	assert.Equal(t, []uint{30}, projectDefaults(t, db, 1))
}

func TestSetDefaultAssoc(t *testing.T) {
	db := newTestDB(t)
	seedProject(t, db, 1, "P1")
	seedSimType(t, db, 10, "ST-A")
	seedSimType(t, db, 20, "ST-B")
	require.NoError(t, projectSimTypeAssoc.AddAssoc(db, 1, 10, 0, 0))
	require.NoError(t, projectSimTypeAssoc.AddAssoc(db, 1, 20, 1, 1))

	require.NoError(t, projectSimTypeAssoc.SetDefaultAssoc(db, 1, 10))
	assert.Equal(t, []uint{10}, projectDefaults(t, db, 1))

	// idempotent: re-flagging the current default changes nothing
	require.NoError(t, projectSimTypeAssoc.SetDefaultAssoc(db, 1, 10))
	assert.Equal(t, []uint{10}, projectDefaults(t, db, 1))

	// an unlinked child rolls back without clearing the current default
	err := projectSimTypeAssoc.SetDefaultAssoc(db, 1, 99)
	assert.Equal(t, response.ResourceNotFound, errCode(t, err))
	assert.Equal(t, []uint{10}, projectDefaults(t, db, 1))
}

func TestAddAssocRejections(t *testing.T) {
	db := newTestDB(t)
	seedProject(t, db, 1, "P1")
	seedSimType(t, db, 10, "ST-A")
	require.NoError(t, projectSimTypeAssoc.AddAssoc(db, 1, 10, 0, 0))

	err := projectSimTypeAssoc.AddAssoc(db, 1, 10, 0, 0)
	assert.Equal(t, response.DuplicateResource, errCode(t, err))

	err = projectSimTypeAssoc.AddAssoc(db, 99, 10, 0, 0)
	assert.Equal(t, response.ResourceNotFound, errCode(t, err))

	require.NoError(t, db.Model(&model.SimType{}).Where("id = ?", 10).
		Update("valid", 0).Error)
	err = projectSimTypeAssoc.AddAssoc(db, 1, 10, 0, 0)
	assert.Equal(t, response.ResourceNotFound, errCode(t, err))
}

func TestRemoveAssoc(t *testing.T) {
	db := newTestDB(t)
	seedProject(t, db, 1, "P1")
	seedSimType(t, db, 10, "ST-A")
	seedSimType(t, db, 20, "ST-B")
	require.NoError(t, projectSimTypeAssoc.AddAssoc(db, 1, 10, 1, 0))
	require.NoError(t, projectSimTypeAssoc.AddAssoc(db, 1, 20, 0, 1))

	// removing the default edge leaves the project with no default
	require.NoError(t, projectSimTypeAssoc.RemoveAssoc(db, 1, 10))
	assert.Empty(t, projectDefaults(t, db, 1))

	err := projectSimTypeAssoc.RemoveAssoc(db, 1, 10)
	assert.Equal(t, response.ResourceNotFound, errCode(t, err))
}

func TestListAssoc(t *testing.T) {
	db := newTestDB(t)
	seedProject(t, db, 1, "P1")
	seedSimType(t, db, 10, "ST-A")
	seedSimType(t, db, 20, "ST-B")
	seedSimType(t, db, 30, "ST-C")
	require.NoError(t, projectSimTypeAssoc.AddAssoc(db, 1, 10, 0, 5))
	require.NoError(t, projectSimTypeAssoc.AddAssoc(db, 1, 20, 1, 1))
	require.NoError(t, projectSimTypeAssoc.AddAssoc(db, 1, 30, 0, 3))

	edges, err := projectSimTypeAssoc.ListAssoc(db, 1)
	require.NoError(t, err)
	require.Len(t, edges, 3)
	assert.Equal(t, uint(20), edges[0].ChildID)
	assert.Equal(t, uint(30), edges[1].ChildID)
	assert.Equal(t, uint(10), edges[2].ChildID)
	assert.Equal(t, "sim type ST-B", edges[0].ChildName)
	assert.Equal(t, "ST-B", edges[0].ChildCode)
	assert.Equal(t, int8(1), edges[0].IsDefault)

	// an edge to a soft-deleted child keeps its row but loses its identity
	require.NoError(t, db.Model(&model.SimType{}).Where("id = ?", 30).
		Update("valid", 0).Error)
	edges, err = projectSimTypeAssoc.ListAssoc(db, 1)
	require.NoError(t, err)
	require.Len(t, edges, 3)
	assert.Equal(t, "", edges[1].ChildName)
}

func TestSolverAssocCarriesVersion(t *testing.T) {
	db := newTestDB(t)
	seedSimType(t, db, 10, "ST-A")
	seedSolver(t, db, 600, "nastran")
	require.NoError(t, simTypeSolverAssoc.AddAssoc(db, 10, 600, 1, 0))

	edges, err := simTypeSolverAssoc.ListAssoc(db, 10)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "1.0", edges[0].ChildVersion)
}

func TestParamGroupAssocHasNoCode(t *testing.T) {
	db := newTestDB(t)
	seedSimType(t, db, 10, "ST-A")
	seedParamGroup(t, db, 100, "PG-A")
	require.NoError(t, simTypeParamGroupAssoc.AddAssoc(db, 10, 100, 0, 0))

	edges, err := simTypeParamGroupAssoc.ListAssoc(db, 10)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "PG-A", edges[0].ChildName)
	assert.Equal(t, "", edges[0].ChildCode)
}
