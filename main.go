package main

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"hrtracker/connection"
)

func main() {
	gin.SetMode(gin.ReleaseMode)
	cfg, err := connection.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := connection.StartServer(cfg); err != nil {
		log.Fatalf("server: %v", err)
	}
}
