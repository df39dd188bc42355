package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/corvus-index/corvus"
	"github.com/corvus-index/corvus/application/service"
	"github.com/corvus-index/corvus/domain/task"
	"github.com/corvus-index/corvus/infrastructure/api/middleware"
	"github.com/corvus-index/corvus/infrastructure/api/v1/dto"
)

// QueueRouter handles task queue API endpoints.
type QueueRouter struct {
	client *corvus.Client
	logger *slog.Logger
}

// NewQueueRouter creates a new QueueRouter.
func NewQueueRouter(client *corvus.Client) *QueueRouter {
	return &QueueRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for queue endpoints.
func (r *QueueRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Get("/{id}", r.Get)

	return router
}

// List handles GET /api/v1/queue.
//
//	@Summary		List queued tasks
//	@Description	List pending tasks in the indexing queue
//	@Tags			queue
//	@Accept			json
//	@Produce		json
//	@Param			operation	query	string	false	"Filter by operation"
//	@Param			page		query	int		false	"Page number (default: 1)"
//	@Param			page_size	query	int		false	"Results per page (default: 20, max: 100)"
//	@Success		200	{object}	dto.TaskListResponse
//	@Failure		500	{object}	middleware.JSONAPIErrorResponse
//	@Security		APIKeyAuth
//	@Router			/queue [get]
func (r *QueueRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	pagination := ParsePagination(req)

	params := &service.TaskListParams{
		Limit:  pagination.Limit(),
		Offset: pagination.Offset(),
	}
	if opStr := req.URL.Query().Get("operation"); opStr != "" {
		op := task.Operation(opStr)
		params.Operation = &op
	}

	tasks, err := r.client.Tasks.List(ctx, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total, err := r.client.Tasks.Count(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data := make([]dto.TaskData, 0, len(tasks))
	for _, t := range tasks {
		data = append(data, taskToDTO(t))
	}

	middleware.WriteJSON(w, http.StatusOK, dto.TaskListResponse{
		Data:  data,
		Meta:  PaginationMeta(pagination, total),
		Links: PaginationLinks(req, pagination, total),
	})
}

// Get handles GET /api/v1/queue/{id}.
//
//	@Summary		Get queued task
//	@Description	Get a queued task by ID
//	@Tags			queue
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Task ID"
//	@Success		200	{object}	dto.TaskResponse
//	@Failure		404	{object}	middleware.JSONAPIErrorResponse
//	@Failure		500	{object}	middleware.JSONAPIErrorResponse
//	@Security		APIKeyAuth
//	@Router			/queue/{id} [get]
func (r *QueueRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	idStr := chi.URLParam(req, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	t, err := r.client.Tasks.Get(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.TaskResponse{Data: taskToDTO(t)})
}

func taskToDTO(t task.Task) dto.TaskData {
	return dto.TaskData{
		Type: "task",
		ID:   strconv.FormatInt(t.ID(), 10),
		Attributes: dto.TaskAttributes{
			Operation: t.Operation().String(),
			Priority:  t.Priority(),
			Payload:   t.Payload(),
			CreatedAt: t.CreatedAt(),
			UpdatedAt: t.UpdatedAt(),
		},
	}
}
