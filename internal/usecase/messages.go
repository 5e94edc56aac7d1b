package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"message-store/internal/domain"
)

// MessageStore is the keyed message table consumed by MessageService.
type MessageStore interface {
	List(ctx context.Context) ([]domain.Message, error)
	Get(ctx context.Context, id string) (domain.Message, bool, error)
	Insert(ctx context.Context, msg domain.Message) error
	Replace(ctx context.Context, msg domain.Message) error
	Delete(ctx context.Context, id string) (domain.Message, bool, error)
}

// MessageService implements the list/get/add/update/delete operations over a
// MessageStore. Mutations are serialized so that the lookup and the write of
// one call never interleave with another call.
type MessageService struct {
	store    MessageStore
	ids      IDGenerator
	clock    Clock
	log      *slog.Logger
	validate *validator.Validate

	mu sync.Mutex
}

type Option func(*MessageService)

func WithIDGenerator(ids IDGenerator) Option {
	return func(s *MessageService) {
		s.ids = ids
	}
}

func WithClock(clock Clock) Option {
	return func(s *MessageService) {
		s.clock = clock
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *MessageService) {
		s.log = log
	}
}

func NewMessageService(store MessageStore, opts ...Option) (*MessageService, error) {
	if store == nil {
		return nil, errors.New("usecase: message store must not be nil")
	}
	s := &MessageService{
		store:    store,
		ids:      UUIDGenerator,
		clock:    NewMonotonicClock(),
		log:      slog.Default(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		return nil, errors.New("usecase: id generator must not be nil")
	}
	if s.clock == nil {
		return nil, errors.New("usecase: clock must not be nil")
	}
	if s.log == nil {
		return nil, errors.New("usecase: logger must not be nil")
	}
	return s, nil
}

func (s *MessageService) ListMessages(ctx context.Context) ([]domain.Message, error) {
	msgs, err := s.store.List(ctx)
	if err != nil {
		s.log.Error("failed to list messages", "err", err)
		return nil, newError(ErrorInternal, "store_list_error", "Error retrieving messages", err)
	}
	return msgs, nil
}

func (s *MessageService) GetMessage(ctx context.Context, id string) (domain.Message, error) {
	if id == "" {
		return domain.Message{}, invalidID()
	}
	msg, ok, err := s.store.Get(ctx, id)
	if err != nil {
		s.log.Error("failed to get message", "id", id, "err", err)
		return domain.Message{}, newError(ErrorInternal, "store_get_error", "Error retrieving message", err)
	}
	if !ok {
		return domain.Message{}, notFound(id, "")
	}
	return msg, nil
}

func (s *MessageService) AddMessage(ctx context.Context, payload domain.Payload) (domain.Message, error) {
	if err := s.validate.Struct(payload); err != nil {
		return domain.Message{}, newError(ErrorInvalidArgument, "missing_fields", "All data must be added", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := domain.Message{
		ID:            s.ids.NewID(),
		Title:         payload.Title,
		Body:          payload.Body,
		AttachmentURL: payload.AttachmentURL,
		CreatedAt:     s.clock.Now(),
		UpdatedAt:     domain.None[domain.Timestamp](),
	}
	if msg.ID == "" {
		return domain.Message{}, newError(ErrorInternal, "empty_id", "Failed to add message", errors.New("id generator returned an empty id"))
	}
	if err := s.store.Insert(ctx, msg); err != nil {
		if errors.Is(err, domain.ErrMessageExists) {
			s.log.Error("generated message id collides with a live record", "id", msg.ID)
			return domain.Message{}, newError(ErrorInternal, "id_collision", "Failed to add message", err)
		}
		s.log.Error("failed to add message", "id", msg.ID, "err", err)
		return domain.Message{}, newError(ErrorInternal, "store_insert_error", "Failed to add message", err)
	}
	s.log.Info("message created", "id", msg.ID)
	return msg, nil
}

// UpdateMessage overwrites title, body and attachmentURL of an existing
// message as a whole. The payload is rejected only when every field is empty;
// otherwise empty fields are stored as empty.
func (s *MessageService) UpdateMessage(ctx context.Context, id string, payload domain.Payload) (domain.Message, error) {
	if id == "" {
		return domain.Message{}, invalidID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok, err := s.store.Get(ctx, id)
	if err != nil {
		s.log.Error("failed to load message for update", "id", id, "err", err)
		return domain.Message{}, newError(ErrorInternal, "store_get_error", "Error updating message", err)
	}
	if !ok {
		return domain.Message{}, notFound(id, "update")
	}
	if payload.IsEmpty() {
		return domain.Message{}, newError(ErrorInvalidArgument, "empty_update", "At least one field must be updated", nil)
	}

	now := s.clock.Now()
	if now < current.CreatedAt {
		now = current.CreatedAt
	}
	updated := domain.Message{
		ID:            current.ID,
		Title:         payload.Title,
		Body:          payload.Body,
		AttachmentURL: payload.AttachmentURL,
		CreatedAt:     current.CreatedAt,
		UpdatedAt:     domain.Some(now),
	}
	if err := s.store.Replace(ctx, updated); err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			return domain.Message{}, notFound(id, "update")
		}
		s.log.Error("failed to update message", "id", id, "err", err)
		return domain.Message{}, newError(ErrorInternal, "store_replace_error", "Error updating message", err)
	}
	s.log.Info("message updated", "id", id)
	return updated, nil
}

// DeleteMessage removes a message and returns the removed record.
func (s *MessageService) DeleteMessage(ctx context.Context, id string) (domain.Message, error) {
	if id == "" {
		return domain.Message{}, invalidID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, ok, err := s.store.Delete(ctx, id)
	if err != nil {
		s.log.Error("failed to delete message", "id", id, "err", err)
		return domain.Message{}, newError(ErrorInternal, "store_delete_error", "Error deleting message", err)
	}
	if !ok {
		return domain.Message{}, notFound(id, "delete")
	}
	s.log.Info("message deleted", "id", id)
	return deleted, nil
}
