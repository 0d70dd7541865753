package service

import (
	"testing"

	"simorder/config"
	"simorder/dao/model"
	"simorder/response"
	"simorder/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, id uint, email, password string, roleIDs ...uint) *model.User {
	t.Helper()
	u := &model.User{Username: email, Email: email, Name: "user " + email, RoleIDs: roleIDs}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		u.Password = strPtr(string(hash))
	}
	u.ID = id
	u.Valid = 1
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedRole(t *testing.T, db *gorm.DB, id uint, code string, permIDs ...uint) *model.Role {
	t.Helper()
	r := &model.Role{Name: "role " + code, Code: code, PermissionIDs: permIDs}
	r.ID = id
	r.Valid = 1
	require.NoError(t, db.Create(r).Error)
	return r
}

func seedPermission(t *testing.T, db *gorm.DB, id uint, code string) *model.Permission {
	t.Helper()
	p := &model.Permission{Name: "perm " + code, Code: code, Type: model.PermissionTypeAction}
	p.ID = id
	p.Valid = 1
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedMenu(t *testing.T, db *gorm.DB, id, parentID uint, name string, menuType model.MenuType, permCode *string, sort int) *model.Menu {
	t.Helper()
	m := &model.Menu{ParentID: parentID, Name: name, MenuType: menuType, PermissionCode: permCode}
	m.ID = id
	m.Valid = 1
	m.Sort = sort
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestResolvePermissions(t *testing.T) {
	db := newTestDB(t)
	seedPermission(t, db, 1, "orders:read")
	seedPermission(t, db, 2, "orders:write")
	seedPermission(t, db, 3, "config:write")

	codes, err := ResolvePermissions(db, []model.Role{
		{Code: "ENGINEER", PermissionIDs: []uint{2, 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"orders:read", "orders:write"}, codes)

	// ADMIN grants everything that is still active
	codes, err = ResolvePermissions(db, []model.Role{{Code: model.RoleCodeAdmin}})
	require.NoError(t, err)
	assert.Equal(t, []string{"config:write", "orders:read", "orders:write"}, codes)

	require.NoError(t, db.Model(&model.Permission{}).Where("id = ?", 3).
		Update("valid", 0).Error)
	codes, err = ResolvePermissions(db, []model.Role{{Code: model.RoleCodeAdmin}})
	require.NoError(t, err)
	assert.Equal(t, []string{"orders:read", "orders:write"}, codes)

	codes, err = ResolvePermissions(db, nil)
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestLoadUserRolesAdminInjection(t *testing.T) {
	db := newTestDB(t)
	seedRole(t, db, 1, "ENGINEER")

	adminEmail := config.GetConfig().Auth.PlatformAdminEmail
	admin := &model.User{Email: adminEmail}
	roles, err := LoadUserRoles(db, admin)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, model.RoleCodeAdmin, roles[0].Code)

	regular := &model.User{Email: "user@example.com", RoleIDs: []uint{1}}
	roles, err = LoadUserRoles(db, regular)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "ENGINEER", roles[0].Code)
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	seedPermission(t, db, 1, "orders:read")
	seedRole(t, db, 1, "ENGINEER", 1)
	seedUser(t, db, 5, "eng@example.com", "s3cret", 1)

	token, view, err := Login(db, loginReq{Email: "eng@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, uint(5), view.ID)
	assert.Equal(t, []string{"ENGINEER"}, view.RoleCodes)
	assert.Equal(t, []string{"orders:read"}, view.PermissionCodes)
	assert.NotZero(t, view.LastLoginAt)

	msg, err := util.GetTokenMgr().CheckToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(5), msg.UserID)
	assert.Equal(t, []string{"orders:read"}, msg.Permissions)

	_, _, err = Login(db, loginReq{Email: "eng@example.com", Password: "wrong"})
	assert.Equal(t, response.InvalidToken, errCode(t, err))

	_, _, err = Login(db, loginReq{Email: "nobody@example.com"})
	assert.Equal(t, response.UserNotFound, errCode(t, err))
}

func TestBuildMenuTree(t *testing.T) {
	db := newTestDB(t)
	seedMenu(t, db, 1, 0, "orders", model.MenuTypeMenu, nil, 1)
	seedMenu(t, db, 2, 1, "orderList", model.MenuTypeMenu, strPtr("orders:read"), 1)
	seedMenu(t, db, 3, 1, "orderAdmin", model.MenuTypeMenu, strPtr("config:write"), 2)
	seedMenu(t, db, 4, 0, "submitButton", model.MenuTypeButton, nil, 3)

	tree, err := BuildMenuTree(db, []string{"orders:read"}, false)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "orders", tree[0].Name)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "orderList", tree[0].Children[0].Name)

	tree, err = BuildMenuTree(db, nil, true)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "orderList", tree[0].Children[0].Name)
	assert.Equal(t, "orderAdmin", tree[0].Children[1].Name)

	// no permissions: only the unrestricted root remains
	tree, err = BuildMenuTree(db, nil, false)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Empty(t, tree[0].Children)
}

func TestBuildMenuTreeSkipsDeleted(t *testing.T) {
	db := newTestDB(t)
	seedMenu(t, db, 1, 0, "orders", model.MenuTypeMenu, nil, 1)
	seedMenu(t, db, 2, 1, "orderList", model.MenuTypeMenu, nil, 1)
	require.NoError(t, db.Model(&model.Menu{}).Where("id = ?", 2).
		Update("valid", 0).Error)

	tree, err := BuildMenuTree(db, nil, true)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Empty(t, tree[0].Children)
}
