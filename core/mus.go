package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the persisted domain types. The layout is
// a plain field-by-field encoding: varints for integers, raw little-endian
// for floats, length-prefixed slices, timestamps as Unix microseconds.
// Field order is part of the storage format and must not change.

// IDMUS serializes IDs.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

// ChunkMUS serializes Chunks.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(c.Id), bs)
	n += ord.String.Marshal(c.DocumentID, bs[n:])
	n += ord.String.Marshal(c.TenantID, bs[n:])
	n += ord.String.Marshal(c.CategoryID, bs[n:])
	n += varint.Int.Marshal(c.Ordinal, bs[n:])
	n += varint.Int.Marshal(c.StartChar, bs[n:])
	n += varint.Int.Marshal(c.EndChar, bs[n:])
	n += varint.Int.Marshal(c.Size, bs[n:])
	n += varint.Int.Marshal(c.Overlap, bs[n:])
	n += ord.String.Marshal(c.Method, bs[n:])
	n += ord.String.Marshal(c.Content, bs[n:])
	n += varint.Int.Marshal(int(c.Status), bs[n:])
	n += ord.String.Marshal(c.Error, bs[n:])
	n += marshalVector(c.Vector, bs[n:])
	n += ord.String.Marshal(c.EmbeddingModel, bs[n:])
	n += varint.Int.Marshal(c.Tokens, bs[n:])
	n += raw.Float64.Marshal(c.Cost, bs[n:])
	n += marshalTime(c.InsertedAt, bs[n:])
	n += marshalTime(c.UpdatedAt, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var (
		id     uint64
		status int
		m      int
	)
	if id, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	c.Id = ID(id)
	if c.DocumentID, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.TenantID, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.CategoryID, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.Ordinal, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.StartChar, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.EndChar, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.Size, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.Overlap, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.Method, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.Content, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if status, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	c.Status = ChunkStatus(status)
	if c.Error, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.Vector, m, err = unmarshalVector(bs[n:]); err != nil {
		return
	}
	n += m
	if c.EmbeddingModel, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.Tokens, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.Cost, m, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.InsertedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += m
	if c.UpdatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += m
	return
}

func (chunkMUS) Size(c Chunk) (size int) {
	size = varint.Uint64.Size(uint64(c.Id))
	size += ord.String.Size(c.DocumentID)
	size += ord.String.Size(c.TenantID)
	size += ord.String.Size(c.CategoryID)
	size += varint.Int.Size(c.Ordinal)
	size += varint.Int.Size(c.StartChar)
	size += varint.Int.Size(c.EndChar)
	size += varint.Int.Size(c.Size)
	size += varint.Int.Size(c.Overlap)
	size += ord.String.Size(c.Method)
	size += ord.String.Size(c.Content)
	size += varint.Int.Size(int(c.Status))
	size += ord.String.Size(c.Error)
	size += sizeVector(c.Vector)
	size += ord.String.Size(c.EmbeddingModel)
	size += varint.Int.Size(c.Tokens)
	size += raw.Float64.Size(c.Cost)
	size += sizeTime(c.InsertedAt)
	size += sizeTime(c.UpdatedAt)
	return size
}

// ConversationMUS serializes Conversations.
var ConversationMUS = conversationMUS{}

type conversationMUS struct{}

func (conversationMUS) Marshal(c Conversation, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(c.Id), bs)
	n += ord.String.Marshal(c.TenantID, bs[n:])
	n += ord.String.Marshal(c.UserID, bs[n:])
	n += ord.String.Marshal(c.Title, bs[n:])
	n += ord.String.Marshal(c.Model, bs[n:])
	n += raw.Float64.Marshal(c.Temperature, bs[n:])
	n += varint.Int.Marshal(c.MaxTokens, bs[n:])
	n += varint.Int.Marshal(c.TopK, bs[n:])
	n += raw.Float32.Marshal(c.Threshold, bs[n:])
	n += ord.String.Marshal(c.CategoryID, bs[n:])
	n += marshalStrings(c.DocumentIDs, bs[n:])
	n += raw.Float32.Marshal(c.VectorWeight, bs[n:])
	n += raw.Float32.Marshal(c.KeywordWeight, bs[n:])
	n += varint.Int.Marshal(int(c.Status), bs[n:])
	n += varint.Int.Marshal(c.MessageCount, bs[n:])
	n += varint.Int.Marshal(c.TotalTokens, bs[n:])
	n += raw.Float64.Marshal(c.TotalCost, bs[n:])
	n += marshalTime(c.InsertedAt, bs[n:])
	n += marshalTime(c.UpdatedAt, bs[n:])
	return n
}

func (conversationMUS) Unmarshal(bs []byte) (c Conversation, n int, err error) {
	var (
		id     uint64
		status int
		m      int
	)
	if id, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	c.Id = ID(id)
	if c.TenantID, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.UserID, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.Title, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.Model, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.Temperature, m, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.MaxTokens, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.TopK, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.Threshold, m, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.CategoryID, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.DocumentIDs, m, err = unmarshalStrings(bs[n:]); err != nil {
		return
	}
	n += m
	if c.VectorWeight, m, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.KeywordWeight, m, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if status, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	c.Status = ConversationStatus(status)
	if c.MessageCount, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.TotalTokens, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.TotalCost, m, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if c.InsertedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += m
	if c.UpdatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += m
	return
}

func (conversationMUS) Size(c Conversation) (size int) {
	size = varint.Uint64.Size(uint64(c.Id))
	size += ord.String.Size(c.TenantID)
	size += ord.String.Size(c.UserID)
	size += ord.String.Size(c.Title)
	size += ord.String.Size(c.Model)
	size += raw.Float64.Size(c.Temperature)
	size += varint.Int.Size(c.MaxTokens)
	size += varint.Int.Size(c.TopK)
	size += raw.Float32.Size(c.Threshold)
	size += ord.String.Size(c.CategoryID)
	size += sizeStrings(c.DocumentIDs)
	size += raw.Float32.Size(c.VectorWeight)
	size += raw.Float32.Size(c.KeywordWeight)
	size += varint.Int.Size(int(c.Status))
	size += varint.Int.Size(c.MessageCount)
	size += varint.Int.Size(c.TotalTokens)
	size += raw.Float64.Size(c.TotalCost)
	size += sizeTime(c.InsertedAt)
	size += sizeTime(c.UpdatedAt)
	return size
}

// MessageMUS serializes Messages.
var MessageMUS = messageMUS{}

type messageMUS struct{}

func (messageMUS) Marshal(msg Message, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(msg.Id), bs)
	n += varint.Uint64.Marshal(uint64(msg.ConversationID), bs[n:])
	n += varint.Int.Marshal(int(msg.Role), bs[n:])
	n += ord.String.Marshal(msg.Content, bs[n:])
	n += varint.Int.Marshal(len(msg.Retrieved), bs[n:])
	for _, rc := range msg.Retrieved {
		n += retrievedChunkMUS{}.Marshal(rc, bs[n:])
	}
	n += varint.Int.Marshal(msg.PromptTokens, bs[n:])
	n += varint.Int.Marshal(msg.CompletionTokens, bs[n:])
	n += varint.Int.Marshal(msg.TotalTokens, bs[n:])
	n += raw.Float64.Marshal(msg.Cost, bs[n:])
	n += varint.Int.Marshal(msg.Rating, bs[n:])
	n += ord.String.Marshal(msg.Feedback, bs[n:])
	n += marshalTime(msg.InsertedAt, bs[n:])
	return n
}

func (messageMUS) Unmarshal(bs []byte) (msg Message, n int, err error) {
	var (
		id     uint64
		role   int
		length int
		m      int
	)
	if id, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	msg.Id = ID(id)
	if id, m, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	msg.ConversationID = ID(id)
	if role, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	msg.Role = MessageRole(role)
	if msg.Content, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if length, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if length > 0 {
		msg.Retrieved = make([]RetrievedChunk, length)
		for i := 0; i < length; i++ {
			if msg.Retrieved[i], m, err = (retrievedChunkMUS{}).Unmarshal(bs[n:]); err != nil {
				return
			}
			n += m
		}
	}
	if msg.PromptTokens, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if msg.CompletionTokens, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if msg.TotalTokens, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if msg.Cost, m, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if msg.Rating, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if msg.Feedback, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if msg.InsertedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += m
	return
}

func (messageMUS) Size(msg Message) (size int) {
	size = varint.Uint64.Size(uint64(msg.Id))
	size += varint.Uint64.Size(uint64(msg.ConversationID))
	size += varint.Int.Size(int(msg.Role))
	size += ord.String.Size(msg.Content)
	size += varint.Int.Size(len(msg.Retrieved))
	for _, rc := range msg.Retrieved {
		size += retrievedChunkMUS{}.Size(rc)
	}
	size += varint.Int.Size(msg.PromptTokens)
	size += varint.Int.Size(msg.CompletionTokens)
	size += varint.Int.Size(msg.TotalTokens)
	size += raw.Float64.Size(msg.Cost)
	size += varint.Int.Size(msg.Rating)
	size += ord.String.Size(msg.Feedback)
	size += sizeTime(msg.InsertedAt)
	return size
}

type retrievedChunkMUS struct{}

func (retrievedChunkMUS) Marshal(rc RetrievedChunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(rc.ChunkID), bs)
	n += ord.String.Marshal(rc.DocumentID, bs[n:])
	n += varint.Int.Marshal(rc.Ordinal, bs[n:])
	n += raw.Float32.Marshal(rc.Score, bs[n:])
	return n
}

func (retrievedChunkMUS) Unmarshal(bs []byte) (rc RetrievedChunk, n int, err error) {
	var (
		id uint64
		m  int
	)
	if id, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	rc.ChunkID = ID(id)
	if rc.DocumentID, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if rc.Ordinal, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if rc.Score, m, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	return
}

func (retrievedChunkMUS) Size(rc RetrievedChunk) (size int) {
	size = varint.Uint64.Size(uint64(rc.ChunkID))
	size += ord.String.Size(rc.DocumentID)
	size += varint.Int.Size(rc.Ordinal)
	size += raw.Float32.Size(rc.Score)
	return size
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	var (
		length int
		m      int
	)
	if length, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	for i := 0; i < length; i++ {
		if v[i], m, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += m
	}
	return
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

func marshalStrings(ss []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(ss), bs)
	for _, s := range ss {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) (ss []string, n int, err error) {
	var (
		length int
		m      int
	)
	if length, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if length == 0 {
		return nil, n, nil
	}
	ss = make([]string, length)
	for i := 0; i < length; i++ {
		if ss[i], m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += m
	}
	return
}

func sizeStrings(ss []string) (size int) {
	size = varint.Int.Size(len(ss))
	for _, s := range ss {
		size += ord.String.Size(s)
	}
	return size
}

// Timestamps are stored as Unix microseconds. The zero time is stored as 0
// so that records created without a timestamp round-trip to the zero time.
func marshalTime(t time.Time, bs []byte) int {
	var micros int64
	if !t.IsZero() {
		micros = t.UnixMicro()
	}
	return raw.Int64.Marshal(micros, bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := raw.Int64.Unmarshal(bs)
	if err != nil || micros == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	var micros int64
	if !t.IsZero() {
		micros = t.UnixMicro()
	}
	return raw.Int64.Size(micros)
}
