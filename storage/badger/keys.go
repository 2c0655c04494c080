package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/askit/core"
)

// Key prefixes for different data types
const (
	chunkPrefix         = "chnk"
	chunkDocumentPrefix = "dchnk"
	conversationPrefix  = "conv"
	conversationIDSeq   = "convseq"
	messagePrefix       = "cmsg"
	messageIDSeq        = "cmsgseq"
)

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeChunkDocumentKey generates a composite key for the document ordinal
// index. Format: prefix:documentID:ordinal
func makeChunkDocumentKey(documentID string, ordinal int) []byte {
	prefix := chunkDocumentPrefix + ":" + documentID + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort matches ordinal order
	binary.BigEndian.PutUint64(buf[offset:], uint64(ordinal))
	return buf
}

// makeChunkDocumentPrefix generates the scan prefix for one document's
// ordinal index entries.
func makeChunkDocumentPrefix(documentID string) []byte {
	return []byte(chunkDocumentPrefix + ":" + documentID + ":")
}

// makeConversationKey generates a key for a conversation by ID.
func makeConversationKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", conversationPrefix, id))
}

// makeMessageKey generates a composite key for a message.
// Format: prefix:conversationID:messageID, both BigEndian so iteration over
// one conversation's prefix yields messages in creation order.
func makeMessageKey(conversationID, messageID core.ID) []byte {
	prefix := messagePrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(conversationID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(messageID))
	return buf
}

// makeMessagePrefix generates the scan prefix for one conversation's
// messages.
func makeMessagePrefix(conversationID core.ID) []byte {
	prefix := messagePrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(conversationID))
	return buf
}
