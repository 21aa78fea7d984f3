package native

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"syscall"

	"github.com/arloliu/go-insight/internal/util"
)

// StatusSuccess is the status code the device returns for a successful
// command. Nearly all commands use it; the meanings of every other code are
// command-specific and owned by the insight package.
const StatusSuccess = 1

// Execute runs exactly one command/response cycle with the declared response
// shape and returns the raw transaction result.
//
// The command must be a single ASCII line with no embedded CR or LF. The
// session must be in the ready state, and no other transaction may be in
// flight; a concurrent call fails with ErrTransactionInFlight.
//
// Execute does not interpret status-code semantics beyond recognizing the
// generic success marker for chunked transfers. A well-formed non-success
// status is returned as a normal result, not an error. Transport and protocol
// failures abort the transaction; the session is not closed automatically,
// but its state is indeterminate and it should be discarded.
func (s *Session) Execute(command string, shape ResponseShape, opts ...ExecOption) (*TransactionResult, error) {
	options := execOptions{category: CategoryFile}
	for _, opt := range opts {
		opt.apply(&options)
	}

	if err := validateCommand(command); err != nil {
		return nil, err
	}

	if err := s.beginTransaction(); err != nil {
		return nil, err
	}
	defer s.endTransaction()

	if err := s.transport.sendLine(command); err != nil {
		return nil, s.recordFailure(err)
	}
	s.metrics.incCommandCount()

	sc := &lineScanner{recv: s.transport.receiveLines}

	var result *TransactionResult
	var err error
	switch shape {
	case ShapeAck:
		result, err = s.readAck(sc, &options)
	case ShapeAckValue:
		result, err = s.readAckValue(sc)
	case ShapeChunked:
		result, err = s.readChunked(sc, &options)
	default:
		return nil, fmt.Errorf("%w: unknown response shape %d", ErrProtocol, shape)
	}

	if err != nil {
		return nil, s.recordFailure(err)
	}

	s.logger.Debug("transaction complete", "command", command, "shape", shape, "status", result.StatusCode)

	return result, nil
}

// ExecuteWrite runs one outbound bulk-transfer cycle: it sends the command
// line, an optional name line, the declared byte count, the payload encoded
// as uppercase hexadecimal wrapped at 80 characters per line, and the
// caller-supplied checksum, then reads a single status line.
//
// The checksum must be four hexadecimal characters computed over the payload
// bytes; it is framed, not verified, here. The device verifies it and reports
// a dedicated status code on mismatch.
func (s *Session) ExecuteWrite(command string, name string, payload []byte, checksum string) (*TransactionResult, error) {
	if err := validateCommand(command); err != nil {
		return nil, err
	}
	if name != "" {
		if err := validateCommand(name); err != nil {
			return nil, err
		}
	}
	if _, err := validateChecksum(checksum); err != nil {
		return nil, err
	}

	if err := s.beginTransaction(); err != nil {
		return nil, err
	}
	defer s.endTransaction()

	data := encodePayload(payload)
	lines := make([]string, 0, len(data)+4)
	lines = append(lines, command)
	if name != "" {
		lines = append(lines, name)
	}
	lines = append(lines, strconv.Itoa(len(payload)))
	lines = append(lines, data...)
	lines = append(lines, checksum)

	for _, line := range lines {
		if err := s.transport.sendLine(line); err != nil {
			return nil, s.recordFailure(err)
		}
	}
	s.metrics.incCommandCount()
	s.metrics.addPayloadBytesSent(uint64(len(payload)))

	sc := &lineScanner{recv: s.transport.receiveLines}
	result, err := s.readAck(sc, &execOptions{})
	if err != nil {
		return nil, s.recordFailure(err)
	}

	s.logger.Debug("write transaction complete", "command", command, "bytes", len(payload), "status", result.StatusCode)

	return result, nil
}

// beginTransaction gates a new transaction on the session being ready and no
// other transaction being outstanding.
func (s *Session) beginTransaction() error {
	if !s.stateMgr.State().IsReady() {
		return fmt.Errorf("%w: state is %s", ErrNotReady, s.stateMgr.State())
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrTransactionInFlight
	}

	// Re-check after acquiring the busy flag; Close may have raced in.
	if !s.stateMgr.State().IsReady() {
		s.busy.Store(false)
		return fmt.Errorf("%w: state is %s", ErrNotReady, s.stateMgr.State())
	}

	return nil
}

func (s *Session) endTransaction() {
	s.busy.Store(false)
}

// recordFailure bumps the matching failure metric and passes err through.
func (s *Session) recordFailure(err error) error {
	switch {
	case errors.Is(err, ErrTransport):
		s.metrics.incTransportErrCount()
	case errors.Is(err, ErrProtocol):
		s.metrics.incProtocolErrCount()
	}

	return err
}

func (s *Session) readAck(sc *lineScanner, options *execOptions) (*TransactionResult, error) {
	line, err := sc.nextNonEmpty()
	if err != nil {
		// The reset-type command drops the connection instead of replying on
		// success; tolerate that only when the caller opted in. A read
		// deadline expiring is a slow device, not a drop.
		if options.emptyAckSuccess && isConnectionDrop(err) {
			return &TransactionResult{StatusCode: StatusSuccess}, nil
		}
		return nil, err
	}

	code, err := parseStatus(line)
	if err != nil {
		return nil, err
	}

	return &TransactionResult{StatusCode: code}, nil
}

func (s *Session) readAckValue(sc *lineScanner) (*TransactionResult, error) {
	statusLine, err := sc.nextNonEmpty()
	if err != nil {
		return nil, err
	}

	code, err := parseStatus(statusLine)
	if err != nil {
		return nil, err
	}
	if code != StatusSuccess {
		// A failed query carries no value token.
		return &TransactionResult{StatusCode: code}, nil
	}

	value, err := sc.nextNonEmpty()
	if err != nil {
		return nil, err
	}

	result := &TransactionResult{StatusCode: code, Value: value}
	// Keep any further lines already delivered in the same read; multi-line
	// reporting commands carry their result this way.
	for _, line := range sc.rest() {
		if line != "" {
			result.Extra = append(result.Extra, line)
		}
	}

	return result, nil
}

func (s *Session) readChunked(sc *lineScanner, options *execOptions) (*TransactionResult, error) {
	statusLine, err := sc.nextNonEmpty()
	if err != nil {
		return nil, err
	}

	code, err := parseStatus(statusLine)
	if err != nil {
		return nil, err
	}
	if code != StatusSuccess {
		// A failed transfer carries no header or data lines.
		return &TransactionResult{StatusCode: code}, nil
	}

	result := &TransactionResult{StatusCode: code}

	if options.category.hasNameToken() {
		result.PayloadName, err = sc.nextNonEmpty()
		if err != nil {
			return nil, err
		}
	}

	sizeToken, err := sc.nextNonEmpty()
	if err != nil {
		return nil, err
	}
	size, err := strconv.Atoi(strings.TrimSpace(sizeToken))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed size token %q", ErrProtocol, sizeToken)
	}
	result.PayloadSize = size

	result.Payload, result.Checksum, err = decodePayload(sc.recv, sc.rest(), size, options.category)
	if err != nil {
		return nil, err
	}
	s.metrics.addPayloadBytesRecv(uint64(len(result.Payload)))

	return result, nil
}

// lineScanner yields successive lines across read boundaries, buffering the
// unconsumed remainder of the most recent read.
type lineScanner struct {
	recv    lineReceiver
	pending []string
}

// nextNonEmpty returns the next non-empty line, reading further batches as
// needed.
func (sc *lineScanner) nextNonEmpty() (string, error) {
	for {
		for len(sc.pending) > 0 {
			line := sc.pending[0]
			sc.pending = sc.pending[1:]
			if line != "" {
				return line, nil
			}
		}

		batch, err := sc.recv()
		if err != nil {
			return "", err
		}
		sc.pending = batch
	}
}

// rest returns the unconsumed lines of the most recent read without
// performing further reads.
func (sc *lineScanner) rest() []string {
	return sc.pending
}

// isConnectionDrop reports whether err stems from the peer closing or
// resetting the connection, as opposed to a deadline expiring.
func isConnectionDrop(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// parseStatus extracts the leading signed decimal status token of a response
// line.
func parseStatus(line string) (int, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: empty status line", ErrProtocol)
	}

	code, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("%w: malformed status token %q", ErrProtocol, fields[0])
	}

	return code, nil
}

// validateCommand checks that a command line is pure ASCII with no embedded
// line delimiters, before any wire interaction is attempted.
func validateCommand(command string) error {
	if strings.ContainsAny(command, lineDelimiter) {
		return fmt.Errorf("%w: command contains a line delimiter", ErrProtocol)
	}
	if !util.IsASCII([]byte(command)) {
		return fmt.Errorf("%w: command contains non-ASCII bytes", ErrProtocol)
	}

	return nil
}
