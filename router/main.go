package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/templateapi/go-todo/handlers"
	"github.com/templateapi/go-todo/middleware"
)

// SetupRoutes wires the resource routes. Authenticate sits under the same
// prefix as the items but is registered before the token guard, so it stays
// reachable without credentials.
func SetupRoutes(app *fiber.App, h *handlers.TodoHandler, jwtSecret []byte) {
	app.Get("/health", handlers.HandleHealthCheck)

	app.Post("/api/todos/authenticate", h.Authenticate)

	todos := app.Group("/api/todos", middleware.Protected(jwtSecret))
	todos.Get("/", h.GetTodoItems)
	todos.Post("/", h.PostTodoItem)
	todos.Get("/:id", h.GetTodoItem)
	todos.Put("/:id", h.PutTodoItem)
	todos.Delete("/:id", h.DeleteTodoItem)
}
