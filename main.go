package main

import (
	"log"

	"shop_manager/database"
	"shop_manager/helper"
	"shop_manager/router"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowCredentials: true,
		ExposeHeaders:    "Set-Cookie",
		MaxAge:           600,
	}))

	database.ConnectDB()

	helper.StartTrashScheduler()
	defer helper.StopTrashScheduler()

	router.SetupRoutes(app)
	log.Fatal(app.Listen(":8003"))
}
