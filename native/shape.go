package native

// ResponseShape declares how many response tokens a transaction expects and
// how they are framed. The caller of Execute selects the shape; the engine
// reads exactly the lines the shape requires and nothing more.
type ResponseShape uint8

const (
	// ShapeAck expects a bare status line.
	ShapeAck ResponseShape = iota
	// ShapeAckValue expects a status line plus exactly one follow-on value
	// token, from the same or a subsequent line.
	ShapeAckValue
	// ShapeChunked expects a status line followed by a bulk payload transfer:
	// category-specific header tokens, hex-encoded data lines, and a
	// four-character checksum token.
	ShapeChunked
)

// String returns the string representation of the response shape.
func (rs ResponseShape) String() string {
	switch rs {
	case ShapeAck:
		return "ack"
	case ShapeAckValue:
		return "ack-value"
	case ShapeChunked:
		return "chunked"
	default:
		return "unknown"
	}
}

// PayloadCategory identifies the kind of bulk data carried by a chunked
// transaction. The category selects the transfer framing: where the size
// token sits in the response header, whether a name token precedes it, and
// where the trailing checksum is placed.
type PayloadCategory uint8

const (
	// CategoryImage is an image transfer (RB/RI). The size token directly
	// follows the status line, and the checksum arrives as the second-to-last
	// line of the data stream itself.
	CategoryImage PayloadCategory = iota
	// CategoryFile is a file transfer (RF). A filename token precedes the
	// size token, and the checksum arrives as a separate trailing line.
	CategoryFile
	// CategoryJob is a job-slot transfer (RJ). Framed like CategoryFile,
	// with the slot's job name as the name token.
	CategoryJob
	// CategorySettings is a settings (proc.set) transfer (RS). The size token
	// directly follows the status line like CategoryImage, but the checksum
	// arrives as a separate trailing line like CategoryFile.
	CategorySettings
)

// String returns the string representation of the payload category.
func (pc PayloadCategory) String() string {
	switch pc {
	case CategoryImage:
		return "image"
	case CategoryFile:
		return "file"
	case CategoryJob:
		return "job"
	case CategorySettings:
		return "settings"
	default:
		return "unknown"
	}
}

// hasNameToken reports whether the response header carries a name token
// before the size token.
func (pc PayloadCategory) hasNameToken() bool {
	return pc == CategoryFile || pc == CategoryJob
}

// trailingChecksum reports whether the checksum arrives as a separate line
// after the data, rather than embedded as the second-to-last data-stream line.
func (pc PayloadCategory) trailingChecksum() bool {
	return pc != CategoryImage
}

// TransactionResult carries the raw outcome of one command/response cycle.
//
// The engine does not interpret status-code semantics; a well-formed
// non-success status is a normal result, translated into a domain error by
// the command layer.
type TransactionResult struct {
	// StatusCode is the leading response token. 1 denotes success for nearly
	// all commands.
	StatusCode int

	// Value is the follow-on value token of an AckValue transaction.
	Value string

	// Extra holds any further non-empty lines received in the same read as
	// the status and value tokens, for commands that report multi-line
	// results (e.g. system information).
	Extra []string

	// Payload is the reassembled bulk data of a chunked transaction.
	Payload []byte

	// PayloadName is the name token of file and job transfers.
	PayloadName string

	// PayloadSize is the declared byte count of a chunked transaction.
	PayloadSize int

	// Checksum is the four-hex-character checksum token accompanying a
	// payload. The engine does not verify it; the device does.
	Checksum string
}

// execOptions holds per-call settings for Execute.
type execOptions struct {
	category        PayloadCategory
	emptyAckSuccess bool
}

// ExecOption represents a per-call option for Execute.
type ExecOption interface {
	apply(*execOptions)
}

type execOptFunc func(*execOptions)

func (f execOptFunc) apply(opts *execOptions) { f(opts) }

// WithCategory selects the payload category of a chunked transaction.
//
// The default is CategoryFile.
func WithCategory(category PayloadCategory) ExecOption {
	return execOptFunc(func(opts *execOptions) {
		opts.category = category
	})
}

// WithEmptyAckSuccess makes an Ack transaction treat "no more data" (the
// device dropping the connection without a status line) as success.
//
// The reset command is documented to return no status line on success; this
// option tolerates that asymmetry without assuming it for other commands.
func WithEmptyAckSuccess() ExecOption {
	return execOptFunc(func(opts *execOptions) {
		opts.emptyAckSuccess = true
	})
}
