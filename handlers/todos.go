package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/templateapi/go-todo/models"
	"github.com/templateapi/go-todo/repository"
	"github.com/templateapi/go-todo/services"
)

// TodoHandler exposes the todo resource over HTTP. The store is the only
// state shared across requests; each request gets its own repository so
// staged changes never leak between concurrent callers.
type TodoHandler struct {
	store repository.Store
	auth  services.AuthService
}

func NewTodoHandler(store repository.Store, auth services.AuthService) *TodoHandler {
	return &TodoHandler{store: store, auth: auth}
}

func (h *TodoHandler) newRepo() repository.TodoRepository {
	return repository.NewTodoRepository(h.store)
}

type paginationMetadata struct {
	TotalCount  int `json:"totalCount"`
	PageSize    int `json:"pageSize"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
}

// Authenticate issues a bearer token for valid credentials.
//
//	@Summary  Authenticate and receive a bearer token
//	@Accept   json
//	@Produce  json
//	@Param    credentials body models.AuthUser true "Username and password"
//	@Success  200 {object} models.User
//	@Router   /api/todos/authenticate [post]
func (h *TodoHandler) Authenticate(c *fiber.Ctx) error {
	creds := new(models.AuthUser)
	if err := c.BodyParser(creds); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Username or password is incorrect"})
	}

	user, err := h.auth.Authenticate(creds.Username, creds.Password)
	if err != nil {
		log.Errorf("an unhandled error occurred when authenticating: %v", err)
		return c.SendStatus(500)
	}
	if user == nil {
		return c.Status(400).JSON(fiber.Map{"message": "Username or password is incorrect"})
	}

	return c.Status(200).JSON(user)
}

// GetTodoItems lists a page of items, with the full-set pagination metadata
// in the X-Pagination header.
//
//	@Summary  List todo items
//	@Produce  json
//	@Param    query     query string false "Substring filter on name"
//	@Param    page      query int    false "Page number, 1-based"
//	@Param    pageCount query int    false "Page size"
//	@Success  200 {object} map[string][]models.TodoItemResponseDTO
//	@Security BearerAuth
//	@Router   /api/todos [get]
func (h *TodoHandler) GetTodoItems(c *fiber.Ctx) error {
	repo := h.newRepo()
	qp := models.NewQueryParameters(
		c.Query("query"),
		c.QueryInt("page", models.DefaultPage),
		c.QueryInt("pageCount", models.DefaultPageCount),
	)

	items, err := repo.GetAll(qp)
	if err != nil {
		log.Errorf("an unhandled error occurred when getting items: %v", err)
		return c.SendStatus(500)
	}

	allItemCount, err := repo.Count()
	if err != nil {
		log.Errorf("an unhandled error occurred when getting items: %v", err)
		return c.SendStatus(500)
	}

	metadata, _ := json.Marshal(paginationMetadata{
		TotalCount:  allItemCount,
		PageSize:    qp.PageCount,
		CurrentPage: qp.Page,
		TotalPages:  int(math.Ceil(float64(allItemCount) / float64(qp.PageCount))),
	})
	c.Set("X-Pagination", string(metadata))

	return c.Status(200).JSON(fiber.Map{"value": models.EntitiesToResponses(items)})
}

// GetTodoItem returns a single item by id.
//
//	@Summary  Get a todo item
//	@Produce  json
//	@Param    id path int true "Todo item id"
//	@Success  200 {object} models.TodoItemResponseDTO
//	@Security BearerAuth
//	@Router   /api/todos/{id} [get]
func (h *TodoHandler) GetTodoItem(c *fiber.Ctx) error {
	repo := h.newRepo()
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	item, err := repo.GetSingle(id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.SendStatus(404)
	}
	if err != nil {
		log.Errorf("an unhandled error occurred when getting an item: %v", err)
		return c.SendStatus(500)
	}

	return c.Status(200).JSON(models.EntityToResponse(item))
}

// PostTodoItem creates an item. The id is assigned from the current count
// plus one before insertion; there is no isolation against a concurrent
// create racing the count.
//
//	@Summary  Create a todo item
//	@Accept   json
//	@Produce  json
//	@Param    item body models.TodoItemUpsertDTO true "Item to create"
//	@Success  201 {object} models.TodoItemResponseDTO
//	@Security BearerAuth
//	@Router   /api/todos [post]
func (h *TodoHandler) PostTodoItem(c *fiber.Ctx) error {
	repo := h.newRepo()
	dto := new(models.TodoItemUpsertDTO)
	if err := c.BodyParser(dto); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}

	count, err := repo.Count()
	if err != nil {
		log.Errorf("an unhandled error occurred when adding items: %v", err)
		return c.SendStatus(500)
	}

	item := models.UpsertToEntity(*dto)
	item.ID = count + 1
	repo.Add(item)
	repo.Save()

	c.Location(fmt.Sprintf("/api/todos/%d", item.ID))
	return c.Status(201).JSON(models.EntityToResponse(item))
}

// PutTodoItem updates an item in place. A commit failure after staging is a
// fatal operation error.
//
//	@Summary  Update a todo item
//	@Accept   json
//	@Produce  json
//	@Param    id   path int                       true "Todo item id"
//	@Param    item body models.TodoItemUpsertDTO true "New item fields"
//	@Success  200 {object} models.TodoItemResponseDTO
//	@Security BearerAuth
//	@Router   /api/todos/{id} [put]
func (h *TodoHandler) PutTodoItem(c *fiber.Ctx) error {
	repo := h.newRepo()
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	dto := new(models.TodoItemUpsertDTO)
	if err := c.BodyParser(dto); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}

	if _, err := repo.GetSingle(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.SendStatus(404)
		}
		log.Errorf("an unhandled error occurred when updating items: %v", err)
		return c.SendStatus(500)
	}

	item := repo.Update(id, models.UpsertToEntity(*dto))

	if !repo.Save() {
		log.Errorf("an unhandled error occurred when updating items: updating a todo item failed on save")
		return c.SendStatus(500)
	}

	return c.Status(200).JSON(models.EntityToResponse(item))
}

// DeleteTodoItem removes an item. Deletion is physical; a commit failure is a
// fatal operation error.
//
//	@Summary  Delete a todo item
//	@Param    id path int true "Todo item id"
//	@Success  204
//	@Security BearerAuth
//	@Router   /api/todos/{id} [delete]
func (h *TodoHandler) DeleteTodoItem(c *fiber.Ctx) error {
	repo := h.newRepo()
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	item, err := repo.GetSingle(id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.SendStatus(404)
	}
	if err != nil {
		log.Errorf("an unhandled error occurred when deleting items: %v", err)
		return c.SendStatus(500)
	}

	repo.Delete(item)

	if !repo.Save() {
		log.Errorf("an unhandled error occurred when deleting items: deleting a todo item failed on save")
		return c.SendStatus(500)
	}

	return c.SendStatus(204)
}
