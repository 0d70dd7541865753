// Migration script for gorm-gen
package main

import (
	"fmt"

	"simorder/config"
	"simorder/dao/model"

	"github.com/go-gormigrate/gormigrate/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectPostgres() *gorm.DB {
	db, err := gorm.Open(postgres.Open(config.GetConfig().DSN()))
	if err != nil {
		panic(fmt.Errorf("connect to postgres: %w", err))
	}
	return db
}

func main() {
	db := ConnectPostgres()

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// your migrations here
	})

	m.InitSchema(func(tx *gorm.DB) error {
		err := tx.AutoMigrate(
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
		)
		if err != nil {
			return err
		}

		// Seed the catalog-administration permission so the /config
		// guard has a grantable code from the first boot.
		managePerm := model.Permission{
			Name: "Manage catalog",
			Code: model.PermConfigManage,
			Type: model.PermissionTypeAction,
		}
		managePerm.Valid = 1
		if res := tx.Create(&managePerm); res.Error != nil {
			return res.Error
		}

		// Seed the platform admin so the implicit ADMIN decoration is
		// also durable in storage.
		adminRole := model.Role{
			Name:          "Platform Admin",
			Code:          model.RoleCodeAdmin,
			PermissionIDs: []uint{managePerm.ID},
		}
		adminRole.Valid = 1
		if res := tx.Create(&adminRole); res.Error != nil {
			return res.Error
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		password := string(hash)
		admin := model.User{
			Username: "admin",
			Email:    config.GetConfig().Auth.PlatformAdminEmail,
			Name:     "Administrator",
			Password: &password,
			RoleIDs:  []uint{adminRole.ID},
		}
		admin.Valid = 1
		if res := tx.Create(&admin); res.Error != nil {
			return res.Error
		}
		return nil
	})

	if err := m.Migrate(); err != nil {
		panic(fmt.Errorf("could not migrate: %w", err))
	}
}
