package models

// UpsertToEntity copies the upsert fields onto a new entity. The ID is left
// zero; the caller assigns it.
func UpsertToEntity(dto TodoItemUpsertDTO) TodoEntity {
	return TodoEntity{
		Name:       dto.Name,
		IsComplete: dto.IsComplete,
	}
}

// EntityToResponse copies an entity into its response shape.
func EntityToResponse(item TodoEntity) TodoItemResponseDTO {
	return TodoItemResponseDTO{
		ID:         item.ID,
		Name:       item.Name,
		IsComplete: item.IsComplete,
	}
}

// EntitiesToResponses maps a page of entities, never returning nil so the
// JSON body always carries an array.
func EntitiesToResponses(items []TodoEntity) []TodoItemResponseDTO {
	out := make([]TodoItemResponseDTO, 0, len(items))
	for _, item := range items {
		out = append(out, EntityToResponse(item))
	}
	return out
}
