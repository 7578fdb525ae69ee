package chat

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	appMiddleware "github.com/FACorreiaa/go-khonkaen-travel-planner/app/middleware"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

type HandlerImpl struct {
	logger  *slog.Logger
	service Service
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:  logger,
		service: service,
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := appMiddleware.SessionIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "missing chat session")
		return uuid.Nil, false
	}
	return id, true
}

// StartSession godoc
// @Summary      Start an assistant conversation
// @Description  Returns a session token. Send it as a Bearer token on the other chat endpoints.
// @Tags         Chat
// @Produce      json
// @Success      201 {object} types.ChatSessionResponse
// @Failure      502 {object} api.Response "Assistant unavailable"
// @Router       /chat/sessions [post]
func (h *HandlerImpl) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "StartSession")
	defer span.End()

	resp, err := h.service.StartSession(ctx)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, resp)
}

// SendMessage godoc
// @Summary      Send a message to the assistant
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body types.ChatRequest true "Message"
// @Success      200 {object} types.ChatReply
// @Failure      401 {object} api.Response "Missing or invalid session"
// @Failure      404 {object} api.Response "Session expired"
// @Failure      422 {object} api.Response "Empty message"
// @Router       /chat/messages [post]
func (h *HandlerImpl) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "SendMessage")
	defer span.End()

	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req types.ChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.service.Send(ctx, id, req.Message)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, reply)
}

// GetHistory godoc
// @Summary      Conversation history
// @Tags         Chat
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} types.ChatMessage
// @Failure      404 {object} api.Response "Session expired"
// @Router       /chat/messages [get]
func (h *HandlerImpl) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "GetHistory")
	defer span.End()

	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	messages, err := h.service.History(ctx, id)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, messages)
}

// ClearHistory godoc
// @Summary      Restart the conversation
// @Tags         Chat
// @Security     BearerAuth
// @Success      204
// @Failure      404 {object} api.Response "Session expired"
// @Router       /chat/messages [delete]
func (h *HandlerImpl) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "ClearHistory")
	defer span.End()

	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.service.Clear(ctx, id); err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
