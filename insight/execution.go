package insight

import (
	"fmt"
	"strings"

	"github.com/arloliu/go-insight/native"
)

// Online states reported by GetOnline and accepted by SetOnline.
const (
	Offline = 0
	Online  = 1
)

var setOnlineDesc = commandDesc{
	mnemonic: "SO",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the mode value is out of range or not a valid integer",
		-2: "the command could not be executed",
		-5: "the sensor did not go online because it is set offline manually or by a discrete I/O signal",
		-6: "user does not have full access to execute the command",
	},
}

// SetOnline sets the vision system into Online (1) or Offline (0) mode.
//
// The device refuses to go online when it has been set offline manually or
// by a discrete input signal; that refusal surfaces as a *CommandError with
// code -5.
func (c *Client) SetOnline(mode int) error {
	if mode != Offline && mode != Online {
		return newValidationError("mode", "must be 0 for offline or 1 for online")
	}

	_, err := c.do(&setOnlineDesc, fmt.Sprintf("SO%d", mode))

	return err
}

// GetOnline returns the online state of the vision system: Offline (0) or
// Online (1). The state arrives as the status token itself.
func (c *Client) GetOnline() (int, error) {
	state, err := c.doStatusValue("GO")
	if err != nil {
		return 0, err
	}
	if state != Offline && state != Online {
		return 0, &CommandError{Command: "GO", Code: state, Message: "unknown online state"}
	}

	return state, nil
}

var setEventDesc = commandDesc{
	mnemonic: "SE",
	shape:    native.ShapeAckValue,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the event code is out of range (0 to 8) or not an integer",
		-2: "the command could not be executed",
		-6: "user does not have full access to execute the command",
	},
}

// SetEvent triggers the spreadsheet event identified by code and returns the
// result the device reports for it, in XML form.
//
// Codes 0 to 7 fire the soft triggers; code 8 acquires an image and updates
// the spreadsheet. SetEvent responds as soon as the image is acquired; use
// SetEventAndWait when the response must also cover the inspection.
func (c *Client) SetEvent(code int) (string, error) {
	if err := validateEventCode(code); err != nil {
		return "", err
	}

	result, err := c.do(&setEventDesc, fmt.Sprintf("SE%d", code))
	if err != nil {
		return "", err
	}

	return result.Value, nil
}

var setEventAndWaitDesc = commandDesc{
	mnemonic: "SW",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the event code is out of range (0 to 8) or not an integer",
		-2: "the command could not be executed, or the sensor is offline",
		-6: "user does not have full access to execute the command",
	},
}

// SetEventAndWait triggers the spreadsheet event identified by code and
// blocks until both the acquisition and the inspection complete.
//
// The vision system must be online. This is the form recommended for
// trigger-from-controller setups (SW8): the response guarantees the
// inspection results are current before they are read back.
func (c *Client) SetEventAndWait(code int) error {
	if err := validateEventCode(code); err != nil {
		return err
	}

	_, err := c.do(&setEventAndWaitDesc, fmt.Sprintf("SW%d", code))

	return err
}

var resetSystemDesc = commandDesc{
	mnemonic:        "RT",
	shape:           native.ShapeAck,
	emptyAckSuccess: true,
	statusText: map[int]string{
		-6: "user does not have full access to execute the command",
	},
}

// ResetSystem resets the vision system, equivalent to cycling its power.
//
// On success the device drops the connection without sending a status line;
// that is reported as success here. The session is unusable afterwards and
// must be reopened once the device has rebooted.
func (c *Client) ResetSystem() error {
	_, err := c.do(&resetSystemDesc, "RT")

	return err
}

var sendMessageDesc = commandDesc{
	mnemonic: "SM",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the event code is out of range (0 to 8) or not an integer",
		-2: "the command could not be executed",
		-6: "user does not have full access to execute the command",
	},
}

// SendMessage sends a string to the spreadsheet and optionally triggers the
// event identified by the single optional event code.
func (c *Client) SendMessage(message string, eventCode ...int) error {
	if len(eventCode) > 1 {
		return newValidationError("event code", "at most one event code may be given")
	}
	if strings.ContainsRune(message, '"') {
		return newValidationError("message", "must not contain quotation marks")
	}

	command := `SM"` + message + `"`
	if len(eventCode) == 1 {
		if err := validateEventCode(eventCode[0]); err != nil {
			return err
		}
		command += fmt.Sprintf("%d", eventCode[0])
	}

	_, err := c.do(&sendMessageDesc, command)

	return err
}

func validateEventCode(code int) error {
	if code < 0 || code > 8 {
		return newValidationError("event code", "must be between 0 and 8")
	}

	return nil
}
