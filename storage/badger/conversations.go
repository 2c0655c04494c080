package badger

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
)

// appendRetries bounds retry attempts when concurrent appends to the same
// conversation collide on the aggregate counter update.
const appendRetries = 3

// ConversationRepository implements storage.ConversationRepository for
// BadgerDB.
type ConversationRepository struct {
	backend *Backend
	convSeq *badger.Sequence
	msgSeq  *badger.Sequence
}

var _ storage.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(backend *Backend) (*ConversationRepository, error) {
	convSeq, err := backend.GetSequence(conversationIDSeq)
	if err != nil {
		return nil, err
	}

	msgSeq, err := backend.GetSequence(messageIDSeq)
	if err != nil {
		convSeq.Release()
		return nil, err
	}

	return &ConversationRepository{
		backend: backend,
		convSeq: convSeq,
		msgSeq:  msgSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *ConversationRepository) Close() error {
	err := r.convSeq.Release()
	if msgErr := r.msgSeq.Release(); err == nil {
		err = msgErr
	}
	return err
}

// WithTransaction delegates to the backend.
func (r *ConversationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddConversation adds a conversation, generating its ID from sequence.
func (r *ConversationRepository) AddConversation(ctx context.Context, conversation *core.Conversation) (*core.Conversation, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id, err := r.nextID(r.convSeq)
		if err != nil {
			return err
		}
		conversation.Id = id

		conversation.InsertedAt = time.Now().UTC()
		conversation.UpdatedAt = conversation.InsertedAt

		key := makeConversationKey(conversation.Id)
		if err := tx.Set(key, storage.MarshalConversation(conversation)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return conversation, err
}

// GetConversation retrieves a conversation by ID.
func (r *ConversationRepository) GetConversation(ctx context.Context, id core.ID) (*core.Conversation, error) {
	var result *core.Conversation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readConversation(tx, makeConversationKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// UpdateConversation updates an existing conversation.
func (r *ConversationRepository) UpdateConversation(ctx context.Context, conversation *core.Conversation) (*core.Conversation, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeConversationKey(conversation.Id)
		old, err := r.readConversation(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		conversation.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalConversation(conversation)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return conversation, err
}

// DeleteConversation removes a conversation and cascades the delete to all
// of its messages.
func (r *ConversationRepository) DeleteConversation(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeConversationKey(id)
		conversation, err := r.readConversation(tx, key)
		if err != nil {
			return err
		}
		if conversation == nil {
			return storage.ErrNotFound
		}

		// Collect message keys first, then delete.
		var messageKeys [][]byte
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeMessagePrefix(id)
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			messageKeys = append(messageKeys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, msgKey := range messageKeys {
			if err := tx.Delete(msgKey); err != nil {
				return err
			}
		}

		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListConversations returns a tenant's conversations ordered by most recent
// activity first.
func (r *ConversationRepository) ListConversations(ctx context.Context, tenantID string, limit int) ([]*core.Conversation, error) {
	var results []*core.Conversation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(conversationPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var conversation *core.Conversation
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				conversation, err = storage.UnmarshalConversation(val)
				return err
			}); err != nil {
				return err
			}
			if conversation == nil {
				continue
			}
			if tenantID != "" && conversation.TenantID != tenantID {
				continue
			}
			results = append(results, conversation)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Conversation) int {
		if a.UpdatedAt.After(b.UpdatedAt) {
			return -1
		}
		if a.UpdatedAt.Before(b.UpdatedAt) {
			return 1
		}
		return int(b.Id) - int(a.Id)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// AppendMessage adds a message and updates its conversation's aggregates in
// one transaction. The read-modify-write of the counters is retried on
// commit conflict so concurrent appends to the same conversation each land
// atomically.
func (r *ConversationRepository) AppendMessage(ctx context.Context, message *core.Message) (*core.Message, error) {
	if err := core.ValidateMessage(message); err != nil {
		return nil, err
	}

	var err error
	for attempt := 0; attempt < appendRetries; attempt++ {
		err = r.backend.WithTx(func(tx *badger.Txn) error {
			convKey := makeConversationKey(message.ConversationID)
			conversation, readErr := r.readConversation(tx, convKey)
			if readErr != nil {
				return readErr
			}
			if conversation == nil {
				return storage.ErrNotFound
			}

			if message.Id == 0 {
				id, idErr := r.nextID(r.msgSeq)
				if idErr != nil {
					return idErr
				}
				message.Id = id
			}
			message.InsertedAt = time.Now().UTC()

			msgKey := makeMessageKey(message.ConversationID, message.Id)
			if setErr := tx.Set(msgKey, storage.MarshalMessage(message)); setErr != nil {
				return setErr
			}

			conversation.MessageCount++
			if message.Role == core.MessageRoleAssistant {
				conversation.TotalTokens += message.TotalTokens
				conversation.TotalCost += message.Cost
			}
			conversation.UpdatedAt = time.Now().UTC()

			if setErr := tx.Set(convKey, storage.MarshalConversation(conversation)); setErr != nil {
				return setErr
			}
			return tx.Commit()
		}, true)

		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}

	if err != nil {
		return nil, err
	}
	return message, nil
}

// GetMessages retrieves a conversation's messages in creation order.
func (r *ConversationRepository) GetMessages(ctx context.Context, conversationID core.ID, limit int) ([]*core.Message, error) {
	var results []*core.Message
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeMessagePrefix(conversationID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var message *core.Message
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				message, err = storage.UnmarshalMessage(val)
				return err
			}); err != nil {
				return err
			}
			if message != nil {
				results = append(results, message)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	if limit > 0 && len(results) > limit {
		results = results[len(results)-limit:]
	}

	return results, nil
}

// GetMessage retrieves a single message.
func (r *ConversationRepository) GetMessage(ctx context.Context, conversationID, messageID core.ID) (*core.Message, error) {
	var result *core.Message
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeMessageKey(conversationID, messageID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalMessage(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// UpdateMessage updates an existing message.
func (r *ConversationRepository) UpdateMessage(ctx context.Context, message *core.Message) (*core.Message, error) {
	if err := core.ValidateMessage(message); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeMessageKey(message.ConversationID, message.Id)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		if err := tx.Set(key, storage.MarshalMessage(message)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return message, nil
}

// nextID draws the next non-zero ID from a sequence.
// BadgerDB sequences can return 0 on first call, so we skip it.
func (r *ConversationRepository) nextID(seq *badger.Sequence) (core.ID, error) {
	next, err := seq.Next()
	if err != nil {
		return 0, err
	}
	if next == 0 {
		next, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}

// readConversation reads a conversation from the transaction.
func (r *ConversationRepository) readConversation(tx *badger.Txn, key []byte) (*core.Conversation, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var conversation *core.Conversation
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		conversation, unmarshalErr = storage.UnmarshalConversation(val)
		return unmarshalErr
	})
	return conversation, err
}
