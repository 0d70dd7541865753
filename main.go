package main

import (
	"fmt"
	"os"

	"simorder/cache"
	"simorder/config"
	"simorder/dao/model"
	"simorder/dao/query"
	"simorder/logutils"
	"simorder/service"

	"github.com/gin-gonic/gin"
)

func main() {
	r := gin.Default()
	err := query.InitDB()
	if err != nil {
		fmt.Println("err init:", err)
		os.Exit(1)
	}
	cache.Init()

	r.Use(service.TraceMiddleware())

	public := r.Group("/api/v1")
	authed := r.Group("/api/v1", service.AuthMiddleware())

	service.RegisterAuth(public, authed)
	service.RegisterConfig(authed.Group("/config", service.RequirePermission(model.PermConfigManage)))
	service.RegisterParamGroup(authed)
	service.RegisterCondOutGroup(authed)
	service.RegisterAssociations(authed)
	service.RegisterOrder(authed)
	service.RegisterResult(authed)

	err = r.Run(":" + config.GetConfig().Server.Port)
	if err != nil {
		logutils.Log.Fatal(err)
	}
}
