package service

import (
	"testing"

	"simorder/dao/model"
	"simorder/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUserHashesPassword(t *testing.T) {
	db := newTestDB(t)

	user, err := CreateUser(db, createUserReq{
		Username: "jane", Email: "jane@example.com", Name: "Jane", Password: "s3cret",
	})
	require.NoError(t, err)
	require.NotNil(t, user.Password)
	assert.NotEqual(t, "s3cret", *user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte("s3cret")))

	// the provisioned account can log in through the normal path
	_, view, err := Login(db, loginReq{Email: "jane@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, view.ID)
}

func TestCreateUserWithoutPassword(t *testing.T) {
	db := newTestDB(t)

	user, err := CreateUser(db, createUserReq{Username: "sso", Email: "sso@example.com"})
	require.NoError(t, err)
	assert.Nil(t, user.Password)

	// without a hash the account has no local login
	_, _, err = Login(db, loginReq{Email: "sso@example.com", Password: ""})
	assert.Equal(t, response.InvalidToken, errCode(t, err))
}

func TestCreateUserRejections(t *testing.T) {
	db := newTestDB(t)
	_, err := CreateUser(db, createUserReq{Username: "jane", Email: "jane@example.com"})
	require.NoError(t, err)

	_, err = CreateUser(db, createUserReq{Username: "jane", Email: "other@example.com"})
	assert.Equal(t, response.DuplicateResource, errCode(t, err))

	_, err = CreateUser(db, createUserReq{Username: "jane2", Email: "jane@example.com"})
	assert.Equal(t, response.DuplicateResource, errCode(t, err))

	_, err = CreateUser(db, createUserReq{Username: "jane3"})
	assert.Equal(t, response.InvalidRequest, errCode(t, err))
}

func TestUpdateUserPassword(t *testing.T) {
	db := newTestDB(t)
	user, err := CreateUser(db, createUserReq{
		Username: "jane", Email: "jane@example.com", Password: "old-pass",
	})
	require.NoError(t, err)
	oldHash := *user.Password

	updated, err := UpdateUser(db, user.ID, map[string]any{
		"password": "new-pass",
		"name":     "Jane R",
		"roleIds":  []any{float64(1), float64(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane R", updated.Name)
	assert.Equal(t, []uint{1, 2}, []uint(updated.RoleIDs))
	require.NotNil(t, updated.Password)
	assert.NotEqual(t, oldHash, *updated.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*updated.Password), []byte("new-pass")))

	// an empty password in the body leaves the stored hash untouched
	updated, err = UpdateUser(db, user.ID, map[string]any{"password": ""})
	require.NoError(t, err)
	require.NotNil(t, updated.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*updated.Password), []byte("new-pass")))
}

func TestUserSoftDelete(t *testing.T) {
	db := newTestDB(t)
	user, err := CreateUser(db, createUserReq{Username: "jane", Email: "jane@example.com"})
	require.NoError(t, err)

	require.NoError(t, DeleteAtom[model.User](db, "user", user.ID))
	_, err = GetAtom[model.User](db, "user", user.ID)
	assert.Equal(t, response.ResourceNotFound, errCode(t, err))

	// deleted accounts can no longer log in
	_, _, err = Login(db, loginReq{Email: "jane@example.com"})
	assert.Equal(t, response.UserNotFound, errCode(t, err))
}
