package compositor

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// diagnosticNonce is reserved for unsolicited log frames from the child. The
// nonce source can never produce it.
const diagnosticNonce = "0"

// nonceSource hands out correlation nonces. A per-instance random prefix
// keeps nonces unique across supervisor restarts; the counter keeps them
// unique within one.
type nonceSource struct {
	prefix string
	n      atomic.Uint64
}

func newNonceSource() *nonceSource {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return &nonceSource{prefix: id[:8]}
}

func (s *nonceSource) next() string {
	return s.prefix + "-" + strconv.FormatUint(s.n.Add(1), 10)
}
