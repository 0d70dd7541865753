package service

import (
	"sort"
	"time"

	"simorder/config"
	"simorder/dao/model"
	"simorder/dao/query"
	"simorder/response"
	"simorder/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// refreshThreshold is the remaining lifetime below which clients should
// refresh their token.
const refreshThreshold = 1800 * time.Second

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password"`
}

type userView struct {
	ID              uint     `json:"id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Name            string   `json:"name"`
	LastLoginAt     int64    `json:"lastLoginAt"`
	RoleIDs         []uint   `json:"roleIds"`
	RoleCodes       []string `json:"roleCodes"`
	PermissionCodes []string `json:"permissionCodes"`
}

// LoadUserRoles resolves the user's roles, injecting the ADMIN role at
// read time when the email matches the platform admin address. The
// injection is a view-time decoration; nothing is persisted.
func LoadUserRoles(db *gorm.DB, user *model.User) ([]model.Role, error) {
	var roles []model.Role
	if len(user.RoleIDs) > 0 {
		if err := db.Where("id IN ? AND valid = 1", []uint(user.RoleIDs)).
			Order("sort asc, id asc").Find(&roles).Error; err != nil {
			return nil, response.NewInternal(err)
		}
	}
	if user.Email == config.GetConfig().Auth.PlatformAdminEmail {
		hasAdmin := false
		for _, r := range roles {
			if r.Code == model.RoleCodeAdmin {
				hasAdmin = true
				break
			}
		}
		if !hasAdmin {
			roles = append(roles, model.Role{Code: model.RoleCodeAdmin, Name: "Platform Admin"})
		}
	}
	return roles, nil
}

// ResolvePermissions computes the permission code set for a role list.
// Any ADMIN role grants every active permission.
func ResolvePermissions(db *gorm.DB, roles []model.Role) ([]string, error) {
	isAdmin := false
	idSet := map[uint]bool{}
	for _, r := range roles {
		if r.Code == model.RoleCodeAdmin {
			isAdmin = true
		}
		for _, id := range r.PermissionIDs {
			idSet[id] = true
		}
	}
	var perms []model.Permission
	tx := db.Where("valid = 1")
	if !isAdmin {
		if len(idSet) == 0 {
			return []string{}, nil
		}
		ids := make([]uint, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}
		tx = tx.Where("id IN ?", ids)
	}
	if err := tx.Find(&perms).Error; err != nil {
		return nil, response.NewInternal(err)
	}
	codes := make([]string, 0, len(perms))
	for _, p := range perms {
		codes = append(codes, p.Code)
	}
	sort.Strings(codes)
	return codes, nil
}

func buildUserView(db *gorm.DB, user *model.User) (*userView, error) {
	roles, err := LoadUserRoles(db, user)
	if err != nil {
		return nil, err
	}
	codes, err := ResolvePermissions(db, roles)
	if err != nil {
		return nil, err
	}
	view := &userView{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Name:            user.Name,
		LastLoginAt:     user.LastLoginAt,
		RoleIDs:         user.RoleIDs,
		RoleCodes:       make([]string, 0, len(roles)),
		PermissionCodes: codes,
	}
	if view.RoleIDs == nil {
		view.RoleIDs = []uint{}
	}
	for _, r := range roles {
		view.RoleCodes = append(view.RoleCodes, r.Code)
	}
	return view, nil
}

// Login authenticates by email. In stub mode (pending SSO) the password
// is not checked, but the account must still be active.
func Login(db *gorm.DB, req loginReq) (token string, view *userView, err error) {
	var user model.User
	dberr := db.Where("email = ? AND valid = 1", req.Email).First(&user).Error
	if dberr == gorm.ErrRecordNotFound {
		return "", nil, response.NewUnauthorized(response.UserNotFound, "unknown account")
	}
	if dberr != nil {
		return "", nil, response.NewInternal(dberr)
	}
	if !config.GetConfig().Auth.StubLogin {
		if user.Password == nil ||
			bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(req.Password)) != nil {
			return "", nil, response.NewUnauthorized(response.InvalidToken, "wrong password")
		}
	}
	view, err = buildUserView(db, &user)
	if err != nil {
		return "", nil, err
	}
	token, terr := util.GetTokenMgr().CreateToken(user.ID, view.PermissionCodes)
	if terr != nil {
		return "", nil, response.NewInternal(terr)
	}
	if err := db.Model(&model.User{}).Where("id = ?", user.ID).
		Update("last_login_at", time.Now().Unix()).Error; err != nil {
		return "", nil, response.NewInternal(err)
	}
	view.LastLoginAt = time.Now().Unix()
	return token, view, nil
}

// MenuNode is a menu with its resolved children, ordered (sort, id).
type MenuNode struct {
	model.Menu
	Children []*MenuNode `json:"children"`
}

// BuildMenuTree filters active MENU entries by the permission code set
// (admin sees all) and assembles the tree rooted at parentId=0.
func BuildMenuTree(db *gorm.DB, permCodes []string, isAdmin bool) ([]*MenuNode, error) {
	var menus []model.Menu
	if err := db.Where("valid = 1 AND menu_type = ?", model.MenuTypeMenu).
		Order("sort asc, id asc").Find(&menus).Error; err != nil {
		return nil, response.NewInternal(err)
	}
	allowed := map[string]bool{}
	for _, c := range permCodes {
		allowed[c] = true
	}
	visible := make([]model.Menu, 0, len(menus))
	for _, m := range menus {
		if isAdmin || m.PermissionCode == nil || allowed[*m.PermissionCode] {
			visible = append(visible, m)
		}
	}
	byParent := map[uint][]model.Menu{}
	for _, m := range visible {
		byParent[m.ParentID] = append(byParent[m.ParentID], m)
	}
	var build func(parentID uint) []*MenuNode
	build = func(parentID uint) []*MenuNode {
		children := byParent[parentID]
		nodes := make([]*MenuNode, 0, len(children))
		for _, m := range children {
			nodes = append(nodes, &MenuNode{Menu: m, Children: build(m.ID)})
		}
		return nodes
	}
	return build(0), nil
}

func getCurrentUser(db *gorm.DB, c *gin.Context) (*model.User, error) {
	var user model.User
	err := db.Where("id = ? AND valid = 1", currentUserID(c)).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, response.NewUnauthorized(response.UserNotFound, "unknown account")
	}
	if err != nil {
		return nil, response.NewInternal(err)
	}
	return &user, nil
}

func isAdminView(view *userView) bool {
	for _, code := range view.RoleCodes {
		if code == model.RoleCodeAdmin {
			return true
		}
	}
	return false
}

func RegisterAuth(public, authed *gin.RouterGroup) {
	public.POST("/auth/login", func(c *gin.Context) {
		var req loginReq
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		token, view, err := Login(query.DB, req)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, gin.H{
			"token":       token,
			"user":        view,
			"permissions": view.PermissionCodes,
		})
	})

	// Heartbeat verifies the raw token itself so an expired one yields the
	// 401 envelope rather than a middleware rejection.
	public.GET("/auth/heartbeat", func(c *gin.Context) {
		msg, err := CheckJWTToken(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		expiresIn := time.Until(msg.ExpiresAt)
		if expiresIn < 0 {
			expiresIn = 0
		}
		response.Success(c, gin.H{
			"valid":         true,
			"expiresIn":     int64(expiresIn.Seconds()),
			"shouldRefresh": expiresIn < refreshThreshold,
		})
	})

	authed.GET("/auth/me", func(c *gin.Context) {
		user, err := getCurrentUser(query.DB, c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		view, err := buildUserView(query.DB, user)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, view)
	})

	authed.GET("/auth/users", func(c *gin.Context) {
		users, err := ListAtoms[model.User](query.DB)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, users)
	})

	authed.GET("/auth/menus", func(c *gin.Context) {
		user, err := getCurrentUser(query.DB, c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		view, err := buildUserView(query.DB, user)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		tree, err := BuildMenuTree(query.DB, view.PermissionCodes, isAdminView(view))
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, tree)
	})

	authed.POST("/auth/refresh", func(c *gin.Context) {
		user, err := getCurrentUser(query.DB, c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		view, err := buildUserView(query.DB, user)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		token, terr := util.GetTokenMgr().CreateToken(user.ID, view.PermissionCodes)
		if terr != nil {
			response.HandleError(c, response.NewInternal(terr))
			return
		}
		response.Success(c, gin.H{"token": token})
	})

	authed.POST("/auth/logout", func(c *gin.Context) {
		// Tokens are stateless; logout is an acknowledgment for the client.
		response.Success(c, nil)
	})
}
