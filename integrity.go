package swimfit

import (
	"encoding/binary"
	"fmt"

	"github.com/tormoder/fit/dyncrc16"
)

const (
	headerSizeNoCRC = 12
	headerSizeCRC   = 14
)

// checkIntegrity validates the FIT header and both CRCs before a full decode
// so corrupt files are reported with a precise reason. Bytes after the first
// FIT stream (chained files) are ignored and reported as a warning.
func checkIntegrity(data []byte) ([]string, error) {
	if len(data) < headerSizeNoCRC+2 {
		return nil, fmt.Errorf("fit file too short: %d bytes", len(data))
	}

	size := int(data[0])
	if size != headerSizeNoCRC && size != headerSizeCRC {
		return nil, fmt.Errorf("invalid fit header size: %d", size)
	}
	if len(data) < size {
		return nil, fmt.Errorf("truncated fit header: need %d bytes", size)
	}
	if dataType := string(data[8:12]); dataType != ".FIT" {
		return nil, fmt.Errorf("invalid fit data type in header: %q", dataType)
	}

	// A stored header CRC of zero means the writer skipped it.
	if size == headerSizeCRC {
		stored := binary.LittleEndian.Uint16(data[12:14])
		if stored != 0 {
			if computed := dyncrc16.Checksum(data[:12]); stored != computed {
				return nil, fmt.Errorf("header crc mismatch: stored 0x%04X computed 0x%04X", stored, computed)
			}
		}
	}

	dataSize := int(binary.LittleEndian.Uint32(data[4:8]))
	end := size + dataSize
	if len(data) < end+2 {
		return nil, fmt.Errorf("fit file truncated: have %d bytes, need at least %d", len(data), end+2)
	}
	stored := binary.LittleEndian.Uint16(data[end : end+2])
	if computed := dyncrc16.Checksum(data[:end]); stored != computed {
		return nil, fmt.Errorf("file crc mismatch: stored 0x%04X computed 0x%04X", stored, computed)
	}

	var warnings []string
	if leftover := len(data) - (end + 2); leftover > 0 {
		warnings = append(warnings, fmt.Sprintf("ignored %d trailing bytes after the first fit stream", leftover))
	}
	return warnings, nil
}
