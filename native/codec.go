package native

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/arloliu/go-insight/internal/util"
)

const (
	// hexLineWidth is the number of hexadecimal characters per wrapped data
	// line (40 payload bytes).
	hexLineWidth = 80

	// checksumLen is the length of the checksum token in hexadecimal
	// characters.
	checksumLen = 4
)

// lineReceiver supplies successive batches of received lines to the decoder.
type lineReceiver func() ([]string, error)

// decodePayload reassembles a bulk payload whose declared byte count is known
// up front but whose hex encoding spans an unknown number of received lines.
//
// The decoder accumulates hexadecimal characters rather than whole lines, so
// a data line split across two socket reads is reassembled correctly; read
// boundaries carry no meaning, only the declared character budget does.
//
// pending holds the lines already received after the transfer header within
// the same socket read; they are consumed before further reads. Decoding
// fails with ErrProtocol if the stream ends before size bytes have been
// accumulated; there is no partial-payload success.
//
// The returned checksum is the raw four-hex-character token taken according
// to the category framing. It is not verified here; verification is
// performed device-side.
func decodePayload(recv lineReceiver, pending []string, size int, category PayloadCategory) ([]byte, string, error) {
	if size < 0 {
		return nil, "", fmt.Errorf("%w: negative payload size %d", ErrProtocol, size)
	}

	// The declared size is in bytes; the encoding is exactly twice that many
	// characters, excluding line-wrap delimiters.
	need := size * 2
	hexChars := make([]byte, 0, need)
	batch := pending
	var leftover []string

	for {
		for i, line := range batch {
			if len(hexChars) >= need {
				leftover = util.CloneSlice(batch[i:], 0)
				break
			}
			if line == "" {
				continue
			}

			j := 0
			for ; j < len(line) && len(hexChars) < need; j++ {
				c := line[j]
				// A socket read can split the CRLF delimiter itself, leaving
				// a stray carriage return at a fragment edge.
				if c == '\r' || c == '\n' {
					continue
				}
				if !util.IsHexDigit(c) {
					return nil, "", fmt.Errorf("%w: malformed payload line %q", ErrProtocol, line)
				}
				hexChars = append(hexChars, c)
			}
			if j < len(line) {
				// Budget met mid-line; the remainder belongs to the trailer.
				leftover = append([]string{line[j:]}, util.CloneSlice(batch[i+1:], 0)...)
				break
			}
		}

		if len(hexChars) >= need {
			break
		}

		var err error
		batch, err = recv()
		if err != nil {
			return nil, "", fmt.Errorf("%w: payload truncated after %d of %d declared bytes",
				ErrProtocol, len(hexChars)/2, size)
		}
	}

	data, err := hex.DecodeString(string(hexChars))
	if err != nil {
		return nil, "", fmt.Errorf("%w: malformed payload encoding", ErrProtocol)
	}

	checksum, err := extractChecksum(recv, leftover, category)
	if err != nil {
		return nil, "", err
	}

	return data, checksum, nil
}

// extractChecksum locates the checksum token after the data lines.
//
// Image transfers place the checksum as the second-to-last line of the data
// stream, so the decoder must retain line context around the terminal
// boundary. File, job, and settings transfers send the checksum as a
// separate trailing line.
func extractChecksum(recv lineReceiver, leftover []string, category PayloadCategory) (string, error) {
	if category.trailingChecksum() {
		for _, line := range leftover {
			if !isBlankLine(line) {
				return validateChecksum(line)
			}
		}

		for {
			batch, err := recv()
			if err != nil {
				return "", fmt.Errorf("%w: stream ended before checksum line", ErrProtocol)
			}
			for _, line := range batch {
				if !isBlankLine(line) {
					return validateChecksum(line)
				}
			}
		}
	}

	// Image category: the terminal read ends with the checksum line followed
	// by the empty fragment its delimiter leaves behind.
	for len(leftover) < 2 {
		batch, err := recv()
		if err != nil {
			return "", fmt.Errorf("%w: stream ended before checksum line", ErrProtocol)
		}
		leftover = append(leftover, batch...)
	}

	return validateChecksum(leftover[len(leftover)-2])
}

// isBlankLine reports whether line is empty or holds only stray delimiter
// characters left by a read boundary inside a CRLF sequence.
func isBlankLine(line string) bool {
	for i := 0; i < len(line); i++ {
		if line[i] != '\r' && line[i] != '\n' {
			return false
		}
	}

	return true
}

// validateChecksum checks that token is exactly four case-insensitive
// hexadecimal characters.
func validateChecksum(token string) (string, error) {
	if len(token) != checksumLen {
		return "", fmt.Errorf("%w: checksum token %q is not %d characters", ErrProtocol, token, checksumLen)
	}
	for i := 0; i < len(token); i++ {
		if !util.IsHexDigit(token[i]) {
			return "", fmt.Errorf("%w: checksum token %q is not hexadecimal", ErrProtocol, token)
		}
	}

	return token, nil
}

// encodePayload renders data as uppercase hexadecimal wrapped at hexLineWidth
// characters per line. Every returned line except possibly the last is
// exactly hexLineWidth characters.
func encodePayload(data []byte) []string {
	encoded := strings.ToUpper(hex.EncodeToString(data))

	lines := make([]string, 0, (len(encoded)+hexLineWidth-1)/hexLineWidth)
	for len(encoded) > hexLineWidth {
		lines = append(lines, encoded[:hexLineWidth])
		encoded = encoded[hexLineWidth:]
	}
	if len(encoded) > 0 {
		lines = append(lines, encoded)
	}

	return lines
}
