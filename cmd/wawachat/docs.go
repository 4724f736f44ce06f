package main

// General API documentation for swaggo. Run `swag init -g cmd/wawachat/docs.go`
// to regenerate docs/.
//
// @title           wawachat API
// @version         1.0
// @description     HTTP API for the wawachat generation session daemon.
//
// @contact.name   wawachat maintainers
// @contact.url    https://github.com/your-org/wawachat
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
