package insight

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/go-insight/native"
)

// SettingsTransfer carries the system settings (proc.set) read from the
// vision system.
type SettingsTransfer struct {
	// Size is the declared byte count of the settings data.
	Size int
	// Data is the proc.set content.
	Data []byte
	// Checksum is the four-hex-character checksum the device sent alongside
	// the data. It is reported, not verified.
	Checksum string
}

// Region describes an edit region control, in image coordinates.
type Region struct {
	// X is the x-offset of the origin.
	X float64
	// Y is the y-offset of the origin.
	Y float64
	// High is the dimension along the region's x-axis.
	High float64
	// Wide is the dimension along the region's y-axis.
	Wide float64
	// Angle is the orientation.
	Angle float64
	// Curve is the angle of orientation.
	Curve float64
}

func (r Region) wireFields() string {
	fields := []float64{r.X, r.Y, r.High, r.Wide, r.Angle, r.Curve}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}

	return strings.Join(parts, " ")
}

var getValueDesc = commandDesc{
	mnemonic: "GV",
	shape:    native.ShapeAckValue,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the cell ID or symbolic tag is invalid",
		-2: "the command could not be executed",
	},
}

// GetCellValue returns the value contained in the spreadsheet cell at the
// given column (A to Z) and row (0 to 399).
func (c *Client) GetCellValue(column string, row int) (string, error) {
	cell, err := cellAddress(column, row)
	if err != nil {
		return "", err
	}

	result, err := c.do(&getValueDesc, "GV"+cell)
	if err != nil {
		return "", err
	}

	return result.Value, nil
}

// GetTagValue returns the contents of the named symbolic tag.
func (c *Client) GetTagValue(tag string) (string, error) {
	if tag == "" {
		return "", newValidationError("tag", "must not be empty")
	}

	result, err := c.do(&getValueDesc, "GV"+tag)
	if err != nil {
		return "", err
	}

	return result.Value, nil
}

var setIntDesc = commandDesc{
	mnemonic: "SI",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the cell ID or symbolic tag is invalid",
		-2: "the command could not be executed, or the value is outside the control's valid range",
		-6: "user does not have full access to execute the command",
	},
}

// SetCellInt sets the edit box control in the cell at the given column
// (A to Z) and row (0 to 399) to an integer value.
func (c *Client) SetCellInt(column string, row int, value int) error {
	cell, err := cellAddress(column, row)
	if err != nil {
		return err
	}

	_, err = c.do(&setIntDesc, fmt.Sprintf("SI%s%d", cell, value))

	return err
}

// SetTagInt sets the named symbolic tag to an integer value.
func (c *Client) SetTagInt(tag string, value int) error {
	if tag == "" {
		return newValidationError("tag", "must not be empty")
	}

	_, err := c.do(&setIntDesc, fmt.Sprintf("SI%s %d", tag, value))

	return err
}

var setFloatDesc = commandDesc{
	mnemonic: "SF",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the cell ID or symbolic tag is invalid, or the value is not a floating-point number",
		-2: "the command could not be executed, or the control was not created by the EditFloat function",
		-6: "user does not have full access to execute the command",
	},
}

// SetCellFloat sets the edit box control in the cell at the given column
// (A to Z) and row (0 to 399) to a floating-point value.
func (c *Client) SetCellFloat(column string, row int, value float64) error {
	cell, err := cellAddress(column, row)
	if err != nil {
		return err
	}

	_, err = c.do(&setFloatDesc, "SF"+cell+strconv.FormatFloat(value, 'g', -1, 64))

	return err
}

// SetTagFloat sets the named symbolic tag to a floating-point value.
func (c *Client) SetTagFloat(tag string, value float64) error {
	if tag == "" {
		return newValidationError("tag", "must not be empty")
	}

	_, err := c.do(&setFloatDesc, "SF"+tag+" "+strconv.FormatFloat(value, 'g', -1, 64))

	return err
}

var setRegionDesc = commandDesc{
	mnemonic: "SR",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the cell ID or symbolic tag is invalid",
		-2: "the cell or tag does not contain an edit region control created by the EditRegion function",
	},
}

// SetCellRegion sets the edit region control in the cell at the given column
// (A to Z) and row (0 to 399). The control must be an EditRegion function.
func (c *Client) SetCellRegion(column string, row int, region Region) error {
	cell, err := cellAddress(column, row)
	if err != nil {
		return err
	}

	_, err = c.do(&setRegionDesc, "SR"+cell+region.wireFields())

	return err
}

// SetTagRegion sets the edit region control held by the named symbolic tag.
func (c *Client) SetTagRegion(tag string, region Region) error {
	if tag == "" {
		return newValidationError("tag", "must not be empty")
	}

	_, err := c.do(&setRegionDesc, "SR"+tag+" "+region.wireFields())

	return err
}

var setStringDesc = commandDesc{
	mnemonic: "SS",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the cell ID is invalid",
		-2: "the string is longer than the control's maximum length, or the cell does not contain an EditString function",
	},
}

// SetCellString sets the edit box control in the cell at the given column
// (A to Z) and row (0 to 399) to a string. The control must be an EditString
// function.
func (c *Client) SetCellString(column string, row int, value string) error {
	cell, err := cellAddress(column, row)
	if err != nil {
		return err
	}
	if value == "" {
		return newValidationError("value", "must not be empty")
	}

	_, err = c.do(&setStringDesc, "SS"+cell+value)

	return err
}

var getInfoDesc = commandDesc{
	mnemonic: "GI",
	shape:    native.ShapeAckValue,
	statusText: map[int]string{
		0:  "unrecognized command",
		-2: "the command could not be executed",
	},
}

// GetInfo returns the system information of the vision system as a map of
// "key: value" report lines.
func (c *Client) GetInfo() (map[string]string, error) {
	result, err := c.do(&getInfoDesc, "GI")
	if err != nil {
		return nil, err
	}

	info := make(map[string]string, len(result.Extra)+1)
	for _, line := range append([]string{result.Value}, result.Extra...) {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		info[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return info, nil
}

var readSettingsDesc = commandDesc{
	mnemonic: "RS",
	shape:    native.ShapeChunked,
	category: native.CategorySettings,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the settings could not be read",
		-4: "the sensor is out of memory",
		-6: "user does not have full access to execute the command",
	},
}

// ReadSettings reads the system settings (the proc.set file content) from
// the vision system.
func (c *Client) ReadSettings() (*SettingsTransfer, error) {
	result, err := c.do(&readSettingsDesc, "RS")
	if err != nil {
		return nil, err
	}

	return &SettingsTransfer{
		Size:     result.PayloadSize,
		Data:     result.Payload,
		Checksum: result.Checksum,
	}, nil
}

var writeSettingsDesc = commandDesc{
	mnemonic: "WS",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-2: "the settings could not be saved",
		-3: "the checksum does not match the settings data",
		-4: "the vision system is out of memory",
	},
}

// WriteSettings sends system settings data to the vision system. The vision
// system must be offline.
func (c *Client) WriteSettings(data []byte, checksum string) error {
	if len(data) == 0 {
		return newValidationError("settings", "must not be empty")
	}

	return c.doWrite(&writeSettingsDesc, "WS", "", data, checksum)
}

var storeSettingsDesc = commandDesc{
	mnemonic: "TS",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-2: "the sensor is online",
	},
}

// StoreSettings stores the vision system settings to the proc.set file.
func (c *Client) StoreSettings() error {
	_, err := c.do(&storeSettingsDesc, "TS")

	return err
}

var setIPAddressLockDesc = commandDesc{
	mnemonic: "SL",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the lock value is out of range or not a valid integer",
		-2: "the command could not be executed",
	},
}

// SetIPAddressLock locks (1) or unlocks (0) the vision system's IP address
// against unauthorized changes.
func (c *Client) SetIPAddressLock(lock int) error {
	if lock != 0 && lock != 1 {
		return newValidationError("lock", "must be 0 to unlock or 1 to lock")
	}

	_, err := c.do(&setIPAddressLockDesc, fmt.Sprintf("SL%d", lock))

	return err
}

// GetIPAddressLock returns the security status of the vision system's IP
// address: 0 for unlocked, 1 for locked. The status arrives as the status
// token itself.
func (c *Client) GetIPAddressLock() (int, error) {
	state, err := c.doStatusValue("GL")
	if err != nil {
		return 0, err
	}
	if state != 0 && state != 1 {
		return 0, &CommandError{Command: "GL", Code: state, Message: "unknown lock state"}
	}

	return state, nil
}

// cellAddress packs a column letter (A to Z) and a row number (0 to 399,
// zero-padded to three digits) into the wire form of a cell reference.
func cellAddress(column string, row int) (string, error) {
	if len(column) != 1 || column[0] < 'A' || column[0] > 'Z' {
		return "", newValidationError("column", "must be a letter between A and Z")
	}
	if row < 0 || row > 399 {
		return "", newValidationError("row", "must be between 0 and 399")
	}

	return fmt.Sprintf("%s%03d", column, row), nil
}
