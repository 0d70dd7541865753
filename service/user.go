package service

import (
	"simorder/dao/model"
	"simorder/dao/query"
	"simorder/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var userDef = atomDef[model.User]{
	kind: "user", codeColumn: "username",
	codeOf:   func(u *model.User) string { return u.Username },
	validate: validateUser,
}

func validateUser(u *model.User) error {
	if u.Email == "" {
		return response.NewValidation("email required")
	}
	return nil
}

type createUserReq struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name"`
	Password string `json:"password"`
	RoleIDs  []uint `json:"roleIds"`
	Sort     int    `json:"sort"`
}

// CreateUser provisions an account. The password never leaves the server
// and is stored only as a bcrypt hash; an empty one leaves the account
// without local login (SSO or stub mode).
func CreateUser(db *gorm.DB, req createUserReq) (*model.User, error) {
	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		RoleIDs:  req.RoleIDs,
	}
	user.Sort = req.Sort
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, response.NewInternal(err)
		}
		h := string(hash)
		user.Password = &h
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.User{}).
			Where("email = ? AND valid = 1", req.Email).Count(&n).Error; err != nil {
			return response.NewInternal(err)
		}
		if n > 0 {
			return response.NewDuplicate("email already registered")
		}
		return CreateAtom(tx, userDef, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser is UpdateAtom plus write-only password handling: a non-empty
// password in the body is replaced by its bcrypt hash before the write,
// an empty one is dropped so the stored hash survives.
func UpdateUser(db *gorm.DB, id uint, body map[string]any) (*model.User, error) {
	if raw, ok := body["password"]; ok {
		delete(body, "password")
		if s, ok := raw.(string); ok && s != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
			if err != nil {
				return nil, response.NewInternal(err)
			}
			body["password"] = string(hash)
		}
	}
	return UpdateAtom(db, userDef, id, body)
}

// registerUsers mounts the users atom. Create and update go through
// dedicated handlers because the password is write-only and the model
// never serializes it.
func registerUsers(g *gin.RouterGroup) {
	g.GET("/users", listAtomsHandler(userDef))
	g.POST("/users", func(c *gin.Context) {
		var req createUserReq
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		user, err := CreateUser(query.DB, req)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, user)
	})
	g.GET("/users/:id", getAtomHandler(userDef))
	g.PUT("/users/:id", func(c *gin.Context) {
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
		user, err := UpdateUser(query.DB, id, body)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		response.Success(c, user)
	})
	g.DELETE("/users/:id", deleteAtomHandler(userDef))
}
