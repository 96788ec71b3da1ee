package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/majordomo/internal/model"
	"github.com/Veraticus/majordomo/internal/service"
)

// TodoHandler applies and queries todo items.
type TodoHandler struct {
	storage service.Storage
	now     func() time.Time
}

// NewTodoHandler creates the todo domain handler.
func NewTodoHandler(storage service.Storage) *TodoHandler {
	return &TodoHandler{storage: storage, now: time.Now}
}

// Apply creates a todo or updates an existing one by resolved target.
func (h *TodoHandler) Apply(ctx context.Context, action *model.Action) (model.Confirmation, error) {
	switch action.Type {
	case model.ActionCreateTodo:
		return h.create(ctx, action)
	case model.ActionUpdateTodo:
		return h.update(ctx, action)
	default:
		return model.Confirmation{}, fmt.Errorf("todo handler cannot apply %s", action.Type)
	}
}

func (h *TodoHandler) create(ctx context.Context, action *model.Action) (model.Confirmation, error) {
	if action.Todo == nil {
		return model.Confirmation{}, fmt.Errorf("todo apply without payload")
	}

	item := *action.Todo
	item.ID = uuid.NewString()
	item.CreatedAt = h.now()
	item.Status = model.TodoPending

	if err := h.storage.SaveTodo(ctx, &item); err != nil {
		return model.Confirmation{}, fmt.Errorf("failed to save todo: %w", err)
	}

	text := fmt.Sprintf("Todo added: %s (priority %s", item.Title, item.Priority)
	if item.Due != nil {
		text += fmt.Sprintf(", due %s", item.Due.Format("2006-01-02 15:04"))
	}
	text += ")."

	return model.Confirmation{Todo: &item, Text: text}, nil
}

func (h *TodoHandler) update(ctx context.Context, action *model.Action) (model.Confirmation, error) {
	if action.TodoUpdate == nil {
		return model.Confirmation{}, fmt.Errorf("todo update without payload")
	}

	item, err := h.storage.GetTodoByID(ctx, action.TodoUpdate.TargetID)
	if err != nil {
		return model.Confirmation{}, fmt.Errorf("failed to load todo %s: %w", action.TodoUpdate.TargetID, err)
	}

	var changes []string
	upd := action.TodoUpdate
	if upd.NewStatus != "" && upd.NewStatus != item.Status {
		item.Status = upd.NewStatus
		changes = append(changes, fmt.Sprintf("status %s", upd.NewStatus))
	}
	if upd.NewPriority != "" && upd.NewPriority != item.Priority {
		item.Priority = upd.NewPriority
		changes = append(changes, fmt.Sprintf("priority %s", upd.NewPriority))
	}
	if upd.NewDue != nil {
		item.Due = upd.NewDue
		changes = append(changes, fmt.Sprintf("due %s", upd.NewDue.Format("2006-01-02 15:04")))
	}

	if len(changes) == 0 {
		return model.Confirmation{Todo: item, Text: fmt.Sprintf("Todo %s is already up to date.", item.Title)}, nil
	}

	if err := h.storage.UpdateTodo(ctx, item); err != nil {
		return model.Confirmation{}, fmt.Errorf("failed to update todo %s: %w", item.ID, err)
	}

	text := fmt.Sprintf("Updated %s: %s.", item.Title, strings.Join(changes, ", "))
	return model.Confirmation{Todo: item, Text: text}, nil
}

// Query lists todos matching the action's query filter.
func (h *TodoHandler) Query(ctx context.Context, action *model.Action) (model.Confirmation, error) {
	filter := service.TodoFilter{}
	if action.Query != nil {
		filter.Status = model.TodoStatus(action.Query.Status)
		filter.Priority = model.TodoPriority(action.Query.Priority)
		filter.DueOn = action.Query.DueOn
	}

	todos, err := h.storage.GetTodos(ctx, action.UserID, filter)
	if err != nil {
		return model.Confirmation{}, fmt.Errorf("failed to query todos: %w", err)
	}

	if len(todos) == 0 {
		return model.Confirmation{Text: "No matching todos."}, nil
	}

	now := h.now()
	var b strings.Builder
	fmt.Fprintf(&b, "Todos (%d):", len(todos))
	for i := range todos {
		item := &todos[i]
		fmt.Fprintf(&b, "\n  [%s] %s (%s", item.Status, item.Title, item.Priority)
		if item.Due != nil {
			fmt.Fprintf(&b, ", due %s", item.Due.Format("2006-01-02 15:04"))
			if item.Overdue(now) {
				b.WriteString(", overdue")
			}
		}
		b.WriteString(")")
	}

	return model.Confirmation{Todos: todos, Text: b.String()}, nil
}
