// File: cmd/service/main.go
// @title        UserHub API
// @version      1.0
// @description  使用者管理後端：列出、建立使用者與即時事件推播
// @host         localhost:8080
// @BasePath     /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"log"
	"os"
)

var exitFunc = os.Exit

func main() {
	if err := run(); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
