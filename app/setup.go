package app

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/templateapi/go-todo/config"
	"github.com/templateapi/go-todo/database"
	"github.com/templateapi/go-todo/handlers"
	"github.com/templateapi/go-todo/repository"
	"github.com/templateapi/go-todo/router"
	"github.com/templateapi/go-todo/services"
)

const (
	defaultUsername = "test"
	defaultPassword = "test"
)

// SetupAndRunApp wires the store, auth service and routes, then serves until
// the listener stops. The store is the only state shared across requests;
// handlers build a repository over it per request.
func SetupAndRunApp() error {
	if err := config.LoadENV(); err != nil {
		return err
	}

	store, cleanup, err := setupStore()
	if err != nil {
		return err
	}
	defer cleanup()

	secret := []byte(os.Getenv("JWT_SECRET"))
	auth, err := setupAuthService(secret)
	if err != nil {
		return err
	}

	handler := handlers.NewTodoHandler(store, auth)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${ip}]:${port} ${status} - ${method} ${path} ${latency}\n",
	}))

	router.SetupRoutes(app, handler, secret)
	config.AddSwaggerRoutes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	return app.Listen(":" + port)
}

// setupStore picks PostgreSQL when POSTGRESQL_URI is set, otherwise an
// in-memory store so the template runs without infrastructure.
func setupStore() (repository.Store, func(), error) {
	uri := os.Getenv("POSTGRESQL_URI")
	if uri == "" {
		log.Warn("POSTGRESQL_URI not set, using in-memory store")
		return database.NewMemoryStore(), func() {}, nil
	}

	store, err := database.NewPostgresStore(uri)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Connected to PostgreSQL successfully")
	return store, func() { store.Close() }, nil
}

// setupAuthService reads the configured principal. AUTH_PASSWORD_HASH must be
// a bcrypt hash; when unset, the default test credentials are hashed at
// startup.
func setupAuthService(secret []byte) (services.AuthService, error) {
	username := os.Getenv("AUTH_USERNAME")
	if username == "" {
		username = defaultUsername
	}

	hash := []byte(os.Getenv("AUTH_PASSWORD_HASH"))
	if len(hash) == 0 {
		var err error
		hash, err = services.HashPassword(defaultPassword)
		if err != nil {
			return nil, err
		}
	}

	return services.NewAuthService(username, hash, secret), nil
}
