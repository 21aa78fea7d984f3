package insight

import (
	"github.com/arloliu/go-insight/native"
)

// ImageTransfer carries an image read from the vision system.
type ImageTransfer struct {
	// Size is the declared byte count of the image file.
	Size int
	// Data is the image file content (BMP).
	Data []byte
	// Checksum is the four-hex-character checksum the device sent alongside
	// the data. It is reported, not verified.
	Checksum string
}

var readImageStatus = map[int]string{
	0:  "unrecognized command",
	-4: "the sensor is out of memory",
	-6: "user does not have full access to execute the command",
}

var readBMPDesc = commandDesc{
	mnemonic:   "RB",
	shape:      native.ShapeChunked,
	category:   native.CategoryImage,
	statusText: readImageStatus,
}

// ReadBMP reads the current image from the vision system as a BMP file.
func (c *Client) ReadBMP() (*ImageTransfer, error) {
	return c.readImage(&readBMPDesc, "RB")
}

var readImageDesc = commandDesc{
	mnemonic:   "RI",
	shape:      native.ShapeChunked,
	category:   native.CategoryImage,
	statusText: readImageStatus,
}

// ReadImage reads the current image from the vision system.
func (c *Client) ReadImage() (*ImageTransfer, error) {
	return c.readImage(&readImageDesc, "RI")
}

func (c *Client) readImage(desc *commandDesc, command string) (*ImageTransfer, error) {
	result, err := c.do(desc, command)
	if err != nil {
		return nil, err
	}

	return &ImageTransfer{
		Size:     result.PayloadSize,
		Data:     result.Payload,
		Checksum: result.Checksum,
	}, nil
}

var writeImageStatus = map[int]string{
	0:  "unrecognized command",
	-2: "the image could not be written, or the image data is invalid",
	-3: "the checksum does not match the image data",
	-4: "the sensor is out of memory",
	-6: "user does not have full access to execute the command",
}

var writeBMPDesc = commandDesc{
	mnemonic:   "WB",
	shape:      native.ShapeAck,
	statusText: writeImageStatus,
}

// WriteBMP sends image data to the vision system as a BMP file. The checksum
// must be four hexadecimal characters computed over the data; the device
// verifies it and rejects a mismatch with status -3.
func (c *Client) WriteBMP(data []byte, checksum string) error {
	return c.doWrite(&writeBMPDesc, "WB", "", data, checksum)
}

var writeImageDesc = commandDesc{
	mnemonic:   "WI",
	shape:      native.ShapeAck,
	statusText: writeImageStatus,
}

// WriteImage sends image data to the vision system.
func (c *Client) WriteImage(data []byte, checksum string) error {
	return c.doWrite(&writeImageDesc, "WI", "", data, checksum)
}
