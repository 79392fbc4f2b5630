// Binary encoding for run records.
//
// Keys are the run sequence number as 8 big-endian bytes so bbolt's byte
// ordering equals numeric ordering. Values are a one-byte format version
// followed by a gob-encoded ports.RunRecord:
//
//	version: uint8 (currently 1)
//	payload: gob(RunRecord)
package bbolt

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"strconv"

	"github.com/corey/xdedup/internal/ports"
)

// formatVersion tags every stored value so the codec can evolve.
const formatVersion byte = 1

// runKey encodes a sequence number as a sortable bucket key.
func runKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

// formatRunID renders a sequence number as a run ID.
func formatRunID(seq uint64) string {
	return strconv.FormatUint(seq, 10)
}

// parseRunID parses a run ID back into its sequence number.
func parseRunID(id string) (uint64, error) {
	seq, err := strconv.ParseUint(id, 10, 64)
	if err != nil || seq == 0 {
		return 0, fmt.Errorf("invalid run id %q", id)
	}
	return seq, nil
}

// encodeRun encodes a run with the version prefix.
func encodeRun(run *ports.RunRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(formatVersion)
	if err := gob.NewEncoder(&buf).Encode(run); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeRun decodes a versioned value. The input may alias bbolt memory;
// gob copies everything it decodes.
func decodeRun(data []byte) (*ports.RunRecord, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("run record too short: %d bytes", len(data))
	}
	if data[0] != formatVersion {
		return nil, fmt.Errorf("unsupported run record version %d", data[0])
	}
	var run ports.RunRecord
	if err := gob.NewDecoder(bytes.NewReader(data[1:])).Decode(&run); err != nil {
		return nil, err
	}
	return &run, nil
}
