package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/rgsearch/core"
)

const (
	historyPrefix     = "hist"
	historyDatePrefix = "histd"
)

// makeHistoryKey generates a key for a history entry by ID.
func makeHistoryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", historyPrefix, id))
}

// historyKeyPrefix matches primary entry keys only, not the date index.
func historyKeyPrefix() []byte {
	return []byte(historyPrefix + ":")
}

// makeHistoryDateKey builds "histd:" + big-endian micros + big-endian id,
// so keys sort by time.
func makeHistoryDateKey(timestamp time.Time, id core.ID) []byte {
	key := make([]byte, 0, len(historyDatePrefix)+1+16)
	key = append(key, historyDatePrefix+":"...)
	key = binary.BigEndian.AppendUint64(key, uint64(timestamp.UnixMicro()))
	return binary.BigEndian.AppendUint64(key, uint64(id))
}

// historyDateKeyPrefix matches every date index key.
func historyDateKeyPrefix() []byte {
	return []byte(historyDatePrefix + ":")
}
