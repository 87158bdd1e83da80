package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/lestade/fanzone-api/cmd/app"
)

// @contact.name   Le Stade
// @contact.email  resto@lestade.example
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
