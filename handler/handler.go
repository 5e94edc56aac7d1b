package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"message-store/internal/domain"
	"message-store/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	messagesResource  = "messages"
	codeNoRoute       = "NOT_FOUND"
	codeBadMethod     = "METHOD_NOT_ALLOWED"
)

// MessageUseCase is the operation surface fronted by both transports.
type MessageUseCase interface {
	ListMessages(ctx context.Context) ([]domain.Message, error)
	GetMessage(ctx context.Context, id string) (domain.Message, error)
	AddMessage(ctx context.Context, payload domain.Payload) (domain.Message, error)
	UpdateMessage(ctx context.Context, id string, payload domain.Payload) (domain.Message, error)
	DeleteMessage(ctx context.Context, id string) (domain.Message, error)
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handler serves the message routes behind an API Gateway proxy integration.
type Handler struct {
	uc  MessageUseCase
	log *slog.Logger
}

func NewHandler(uc MessageUseCase, log *slog.Logger) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{uc: uc, log: log}, nil
}

// Handle never returns an error: every failure is rendered as a response.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	resp := h.dispatch(ctx, req)
	if resp.Headers == nil {
		resp.Headers = map[string]string{}
	}
	resp.Headers[correlationHeader] = correlationID

	h.log.Info("request handled",
		"method", req.HTTPMethod,
		"path", req.Path,
		"status", resp.StatusCode,
		"correlation_id", correlationID,
	)
	return resp, nil
}

func (h *Handler) dispatch(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	id, withID, ok := parsePath(req)
	if !ok {
		return errorJSON(http.StatusNotFound, codeNoRoute, "route not found")
	}

	switch {
	case !withID && req.HTTPMethod == http.MethodGet:
		msgs, err := h.uc.ListMessages(ctx)
		return result(http.StatusOK, msgs, err)
	case !withID && req.HTTPMethod == http.MethodPost:
		payload, err := decodePayload(req)
		if err != nil {
			return errorJSON(http.StatusBadRequest, string(usecase.ErrorInvalidArgument), "invalid request body")
		}
		msg, err := h.uc.AddMessage(ctx, payload)
		return result(http.StatusCreated, msg, err)
	case withID && req.HTTPMethod == http.MethodGet:
		msg, err := h.uc.GetMessage(ctx, id)
		return result(http.StatusOK, msg, err)
	case withID && req.HTTPMethod == http.MethodPut:
		payload, err := decodePayload(req)
		if err != nil {
			return errorJSON(http.StatusBadRequest, string(usecase.ErrorInvalidArgument), "invalid request body")
		}
		msg, err := h.uc.UpdateMessage(ctx, id, payload)
		return result(http.StatusOK, msg, err)
	case withID && req.HTTPMethod == http.MethodDelete:
		msg, err := h.uc.DeleteMessage(ctx, id)
		return result(http.StatusOK, msg, err)
	default:
		return errorJSON(http.StatusMethodNotAllowed, codeBadMethod, "method not allowed")
	}
}

// parsePath accepts /messages and /messages/{id}. A path parameter named
// "id" from the API Gateway resource takes precedence over the raw path.
func parsePath(req events.APIGatewayProxyRequest) (id string, withID bool, ok bool) {
	parts := strings.Split(strings.Trim(req.Path, "/"), "/")
	if parts[0] != messagesResource || len(parts) > 2 {
		return "", false, false
	}
	if v, found := req.PathParameters["id"]; found {
		return v, true, true
	}
	if len(parts) == 2 {
		return parts[1], true, true
	}
	return "", false, true
}

func decodePayload(req events.APIGatewayProxyRequest) (domain.Payload, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return domain.Payload{}, err
		}
		body = decoded
	}
	var payload domain.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.Payload{}, err
	}
	return payload, nil
}

// StatusFor maps a use case error to an HTTP status and error body.
func StatusFor(err error) (int, ErrorResponse) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, ErrorResponse{Error: string(usecase.ErrorInternal), Message: "internal error"}
	}
	body := ErrorResponse{Error: string(ucErr.Code), Message: ucErr.Message}
	switch ucErr.Code {
	case usecase.ErrorInvalidArgument:
		return http.StatusBadRequest, body
	case usecase.ErrorNotFound:
		return http.StatusNotFound, body
	default:
		return http.StatusInternalServerError, body
	}
}

func result(status int, v any, err error) events.APIGatewayProxyResponse {
	if err != nil {
		code, body := StatusFor(err)
		return respondJSON(code, body)
	}
	return respondJSON(status, v)
}

func errorJSON(status int, code, message string) events.APIGatewayProxyResponse {
	return respondJSON(status, ErrorResponse{Error: code, Message: message})
}

func respondJSON(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR","message":"encode response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
