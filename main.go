package main

import "github.com/killallgit/guidepack/cmd"

// @title           Guidepack API
// @version         1.0.0
// @description     Audio to guidepack video rendering pipeline
// @contact.name    API Support
// @contact.url     https://github.com/killallgit/guidepack
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /
// @schemes         http https
func main() {
	cmd.Execute()
}
