// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/subwaydeal/server/internal/auth"
	"github.com/subwaydeal/server/internal/cache"
	"github.com/subwaydeal/server/internal/database"
	"github.com/subwaydeal/server/internal/handlers"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis unavailable, action archiving disabled: %v", err)
	}

	ms := handlers.NewMatchServer()
	mux := handlers.NewAPIMux(logger, ms)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
