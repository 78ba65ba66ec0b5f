// cmd/main.go
package main

import (
	"backups-api/app"
)

// @title           Backups Session API
// @version         1.0
// @description     Authentication session lifecycle service: login, refresh token rotation and logout.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
