package main

import (
	"github.com/templateapi/go-todo/app"
	_ "github.com/templateapi/go-todo/docs"
)

//	@title        Todo Template API
//	@version      1.0
//	@description  Template CRUD API exposing a single todo resource with token auth, pagination and search.

//	@securityDefinitions.apikey BearerAuth
//	@in   header
//	@name Authorization

func main() {
	// setup and run app
	err := app.SetupAndRunApp()
	if err != nil {
		panic(err)
	}
}
