package insight

import (
	"github.com/arloliu/go-insight/native"
)

// commandDesc declares how one Native Mode command behaves on the wire: the
// response shape the transaction engine should read, the payload framing of
// chunked transfers, whether a silent connection drop counts as success, and
// the documented meaning of each non-success status code.
//
// Every command method builds its command line, then funnels through a
// single dispatch path keyed by its descriptor; the per-command code is the
// argument validation and result extraction only.
type commandDesc struct {
	mnemonic        string
	shape           native.ResponseShape
	category        native.PayloadCategory
	emptyAckSuccess bool
	statusText      map[int]string
}

// commandError translates a non-success status code into a *CommandError
// using the descriptor's status table.
func (d *commandDesc) commandError(code int) *CommandError {
	msg, ok := d.statusText[code]
	if !ok {
		msg = "unknown status code"
	}

	return &CommandError{Command: d.mnemonic, Code: code, Message: msg}
}

// do issues command and maps a non-success status to a *CommandError.
func (c *Client) do(desc *commandDesc, command string) (*native.TransactionResult, error) {
	var opts []native.ExecOption
	if desc.shape == native.ShapeChunked {
		opts = append(opts, native.WithCategory(desc.category))
	}
	if desc.emptyAckSuccess {
		opts = append(opts, native.WithEmptyAckSuccess())
	}

	result, err := c.sess.Execute(command, desc.shape, opts...)
	if err != nil {
		return nil, err
	}
	if result.StatusCode != native.StatusSuccess {
		return nil, desc.commandError(result.StatusCode)
	}

	return result, nil
}

// doWrite issues an outbound bulk transfer and maps a non-success status to
// a *CommandError. An empty name omits the name line.
func (c *Client) doWrite(desc *commandDesc, command string, name string, payload []byte, checksum string) error {
	result, err := c.sess.ExecuteWrite(command, name, payload, checksum)
	if err != nil {
		return err
	}
	if result.StatusCode != native.StatusSuccess {
		return desc.commandError(result.StatusCode)
	}

	return nil
}

// doStatusValue issues a command whose status token is itself the result
// value (GO, GL) and returns the raw code without success mapping.
func (c *Client) doStatusValue(command string) (int, error) {
	result, err := c.sess.Execute(command, native.ShapeAck)
	if err != nil {
		return 0, err
	}

	return result.StatusCode, nil
}
