// Package native implements the transaction core of the Cognex In-Sight
// Native Mode protocol: a line-oriented ASCII remote-command protocol spoken
// over a single persistent TCP connection to the vision system's command port.
//
// Key Features:
//   - Session Management: Establishes the TCP connection, verifies the device
//     greeting, and performs the plaintext credential handshake.
//   - Transaction Engine: Executes one command/response cycle at a time, in one
//     of three response shapes declared by the caller (Ack, AckValue, Chunked).
//   - Chunked Payload Codec: Reassembles hex-encoded bulk payloads (jobs,
//     images, settings files) that span multiple received lines, and encodes
//     outbound payloads with the protocol's 80-characters-per-line wrapping.
//   - State Management: Tracks the session lifecycle state and notifies
//     registered handlers on state changes.
//   - Error Handling: Distinguishes transport failures, handshake failures,
//     and protocol violations with sentinel errors usable with errors.Is.
//
// The protocol is strictly half-duplex: exactly one command may be in flight
// per session, and Execute must not be called again until the prior call has
// returned. A second call while a transaction is outstanding fails with
// ErrTransactionInFlight. Multiple sessions to different devices are fully
// independent.
//
// Command semantics (mnemonics, argument layouts, and status-code meanings)
// are owned by the insight package; this package only delivers accurate status
// codes and correctly framed data.
//
// Connection Establishment:
//   - Create a SessionConfig with NewSessionConfig and functional options.
//   - Create a Session with NewSession.
//   - Call Open to dial, verify the greeting, and log in.
//
// Usage Example:
//
//	cfg, err := native.NewSessionConfig("10.20.30.40",
//	    native.WithCredentials("admin", ""),
//	    native.WithConnectTimeout(3*time.Second),
//	)
//	// ... handle error ...
//	sess, err := native.NewSession(cfg)
//	// ... handle error ...
//	defer sess.Close()
//
//	err = sess.Open(ctx)
//	// ... handle error ...
//
//	// Query the device's online state ("GO" replies with a bare status line).
//	result, err := sess.Execute("GO", native.ShapeAck)
//	// ... handle error, inspect result.StatusCode ...
package native
