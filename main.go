package main

import "remindme-server/cmd"

// @title RemindMe API
// @version 1.0
// @description Natural-language reminders attached to content
// @host localhost:8080
// @BasePath /api
func main() {
	cmd.Execute()
}
