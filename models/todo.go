package models

// TodoEntity is the persisted shape of a todo item.
type TodoEntity struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	IsComplete bool   `json:"isComplete"`
}

// TodoItemUpsertDTO is the request body for create and update. It carries no
// ID: identity is assigned by the server on create and taken from the route
// on update.
type TodoItemUpsertDTO struct {
	Name       string `json:"name"`
	IsComplete bool   `json:"isComplete"`
}

// TodoItemResponseDTO is the shape returned to clients.
type TodoItemResponseDTO struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	IsComplete bool   `json:"isComplete"`
}

// AuthUser carries the credentials posted to the authenticate endpoint.
type AuthUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User is the authenticate response: the principal plus its bearer token.
type User struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

const (
	DefaultPage      = 1
	DefaultPageCount = 50
)

// QueryParameters is built per request from the query string.
type QueryParameters struct {
	Query     string
	Page      int
	PageCount int
}

// NewQueryParameters clamps non-positive page and pageCount to the defaults
// so they never reach the skip/take arithmetic.
func NewQueryParameters(query string, page, pageCount int) QueryParameters {
	if page < 1 {
		page = DefaultPage
	}
	if pageCount < 1 {
		pageCount = DefaultPageCount
	}
	return QueryParameters{Query: query, Page: page, PageCount: pageCount}
}
