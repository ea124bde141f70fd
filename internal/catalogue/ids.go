package catalogue

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const idSuffixLen = 9

// NewItemID returns "item-<unix-ms>-<suffix>" where suffix is nine random
// base36 characters.
func NewItemID(now time.Time) string {
	u := uuid.New()
	suffix := strconv.FormatUint(binary.BigEndian.Uint64(u[:8]), 36)
	if len(suffix) < idSuffixLen {
		suffix = strings.Repeat("0", idSuffixLen-len(suffix)) + suffix
	}
	return fmt.Sprintf("item-%d-%s", now.UnixMilli(), suffix[:idSuffixLen])
}
