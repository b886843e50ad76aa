package main

// General API documentation for swaggo. Run `swag init -g cmd/genaid/docs.go` to generate docs.
//
// @title           genaid API
// @version         1.0
// @description     Local model storage, session management and serialized generation.
//
// @contact.name   genaid maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
