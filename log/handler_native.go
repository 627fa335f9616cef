//go:build !wasip1

package log

import (
	"fmt"
	"os"
)

// defaultSink writes serialized records to stderr outside the guest, so the
// handler stays usable in native tests and tools.
func defaultSink(payload []byte) {
	fmt.Fprintln(os.Stderr, string(payload))
}
