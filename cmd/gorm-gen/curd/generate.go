// Description: 生成所有表的 Model 结构体和 CRUD 代码
package main

import (
	"fmt"

	"simorder/config"
	"simorder/dao/model"

	"gorm.io/driver/postgres"
	"gorm.io/gen"
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
	g := gen.NewGenerator(gen.Config{
		OutPath: "./dao/query",

		// gen.WithoutContext：禁用WithContext模式
		// gen.WithDefaultQuery：生成一个全局Query对象Q
		// gen.WithQueryInterface：生成Query接口
		Mode: gen.WithDefaultQuery | gen.WithQueryInterface,
	})

	// 通常复用项目中已有的SQL连接配置 db(*gorm.DB)
	g.UseDB(ConnectPostgres())

	g.ApplyBasic(
		model.Project{},
		model.SimType{},
		model.ParamDef{},
		model.ConditionDef{},
		model.OutputDef{},
		model.Solver{},
		model.FoldType{},
		model.StatusDef{},
		model.Workflow{},
		model.AutomationModule{},
		model.ModelLevel{},
		model.CareDevice{},
		model.SolverResource{},
		model.Department{},
		model.ParamGroup{},
		model.ParamGroupParamRel{},
		model.CondOutGroup{},
		model.CondOutGroupConditionRel{},
		model.CondOutGroupOutputRel{},
		model.ProjectSimTypeRel{},
		model.SimTypeParamGroupRel{},
		model.SimTypeCondOutGroupRel{},
		model.SimTypeSolverRel{},
		model.Order{},
		model.SimTypeResult{},
		model.Round{},
		model.User{},
		model.Role{},
		model.Permission{},
		model.Menu{},
	)

	// 执行并生成代码
	g.Execute()
}
