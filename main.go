package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.SetPrefix("lg/nutrition-coach-go-api: ")
	log.SetFlags(0)

	// .env is optional in production — env vars may come from the platform.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	pool := getDBPool()
	defer pool.Close()

	h := newHandler(pool)

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	fmt.Printf("Starting coach API on :%s...\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
