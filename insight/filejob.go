package insight

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/go-insight/native"
)

// FileTransfer carries a job file read from the vision system.
type FileTransfer struct {
	// Name is the filename reported by the device.
	Name string
	// Size is the declared byte count of the file.
	Size int
	// Data is the file content.
	Data []byte
	// Checksum is the four-hex-character checksum the device sent alongside
	// the data. It is reported, not verified.
	Checksum string
}

// JobTransfer carries a job read from a numbered job slot.
type JobTransfer struct {
	// Name is the job name stored in the slot.
	Name string
	// Size is the declared byte count of the job.
	Size int
	// Data is the job content.
	Data []byte
	// Checksum is the four-hex-character checksum the device sent alongside
	// the data. It is reported, not verified.
	Checksum string
}

var loadFileDesc = commandDesc{
	mnemonic: "LF",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the filename is missing",
		-2: "the job failed to load, the vision system is online, or the file was not found",
		-4: "the vision system is out of memory",
		-6: "user does not have full access to execute the command",
	},
}

// LoadFile loads the named job from the vision system's flash memory,
// RAM disk, or SD card, making it the active job. The vision system must be
// offline.
//
// Prefix the filename with "RAMDisk/" or "SDCARD/" to address those folders,
// e.g. "RAMDisk/Product.job".
func (c *Client) LoadFile(filename string) error {
	if filename == "" {
		return newValidationError("filename", "must not be empty")
	}

	_, err := c.do(&loadFileDesc, "LF"+filename)

	return err
}

var storeFileDesc = commandDesc{
	mnemonic: "TF",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the filename is missing",
		-2: "the job failed to save, the vision system is online, or the file was not found",
		-6: "user does not have full access to execute the command",
	},
}

// StoreFile saves the active job under the given filename, which must carry
// the .JOB extension.
func (c *Client) StoreFile(filename string) error {
	if !strings.HasSuffix(strings.ToUpper(filename), ".JOB") {
		return newValidationError("filename", "must have a .JOB extension")
	}

	_, err := c.do(&storeFileDesc, "TF"+filename)

	return err
}

var readFileDesc = commandDesc{
	mnemonic: "RF",
	shape:    native.ShapeChunked,
	category: native.CategoryFile,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the job filename is missing",
		-2: "there is no job saved with the given name, or the job data is invalid",
		-6: "user does not have full access to execute the command",
	},
}

// ReadFile reads the named job file from the vision system's flash memory,
// RAM disk, or SD card.
func (c *Client) ReadFile(filename string) (*FileTransfer, error) {
	if filename == "" {
		return nil, newValidationError("filename", "must not be empty")
	}

	result, err := c.do(&readFileDesc, "RF"+filename)
	if err != nil {
		return nil, err
	}

	return &FileTransfer{
		Name:     result.PayloadName,
		Size:     result.PayloadSize,
		Data:     result.Payload,
		Checksum: result.Checksum,
	}, nil
}

var writeFileDesc = commandDesc{
	mnemonic: "WF",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-2: "the job could not be written, or the job data is invalid",
		-3: "the checksum does not match the job data",
		-4: "the vision system is out of memory",
		-6: "user does not have full access to execute the command",
	},
}

// WriteFile sends a job file to the vision system under the given filename.
// The vision system must be offline. The checksum must be four hexadecimal
// characters computed over the data; the device verifies it and rejects a
// mismatch with status -3.
func (c *Client) WriteFile(filename string, data []byte, checksum string) error {
	if filename == "" {
		return newValidationError("filename", "must not be empty")
	}

	return c.doWrite(&writeFileDesc, "WF", filename, data, checksum)
}

var deleteFileDesc = commandDesc{
	mnemonic: "DF",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the filename is missing",
		-2: "the file could not be deleted, the vision system is online, or no file exists with the given name",
		-6: "user does not have full access to execute the command",
	},
}

// DeleteFile deletes a job or .CXD file from the vision system's RAM disk or
// SD card folders. The filename must carry the .JOB or .CXD extension, and
// the vision system must be offline.
func (c *Client) DeleteFile(filename string) error {
	upper := strings.ToUpper(filename)
	if !strings.HasSuffix(upper, ".JOB") && !strings.HasSuffix(upper, ".CXD") {
		return newValidationError("filename", "must have a .JOB or .CXD extension")
	}

	_, err := c.do(&deleteFileDesc, "DF"+filename)

	return err
}

var getFileDesc = commandDesc{
	mnemonic: "GF",
	shape:    native.ShapeAckValue,
	statusText: map[int]string{
		0:  "unrecognized command",
		-2: "the active job has not been saved",
	},
}

// GetFile returns the filename of the active job, including the RAMDisk or
// SDCARD folder prefix when the job is saved there. The active job must have
// been saved.
func (c *Client) GetFile() (string, error) {
	result, err := c.do(&getFileDesc, "GF")
	if err != nil {
		return "", err
	}

	return result.Value, nil
}

var setJobDesc = commandDesc{
	mnemonic: "SJ",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the job ID is less than 0 or not an integer",
		-2: "the job failed to load, the sensor is online, or the file was not found",
		-4: "the sensor is out of memory",
		-6: "user does not have full access to execute the command",
	},
}

// SetJob loads the job stored in the numbered flash-memory slot, making it
// the active job. The vision system must be offline, and the slot's job must
// have been saved with a numerical prefix of 0 to 999.
func (c *Client) SetJob(id int) error {
	if err := validateJobID(id); err != nil {
		return err
	}

	_, err := c.do(&setJobDesc, fmt.Sprintf("SJ%d", id))

	return err
}

var storeJobDesc = commandDesc{
	mnemonic: "TJ",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the job ID is invalid or not an integer",
		-2: "the sensor is online",
		-6: "user does not have full access to execute the command",
	},
}

// StoreJob saves the active job into the numbered flash-memory slot under
// the given name. The name is accepted with or without the .JOB extension.
func (c *Client) StoreJob(id int, name string) error {
	if err := validateJobID(id); err != nil {
		return err
	}
	if name == "" {
		return newValidationError("job name", "must not be empty")
	}

	_, err := c.do(&storeJobDesc, fmt.Sprintf("TJ%d%s", id, name))

	return err
}

var readJobDesc = commandDesc{
	mnemonic: "RJ",
	shape:    native.ShapeChunked,
	category: native.CategoryJob,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the job ID is outside the allowable range (0 to 999)",
		-2: "the job could not be read, or the job slot is empty",
		-4: "the sensor is out of memory",
		-6: "user does not have full access to execute the command",
	},
}

// ReadJob reads the job stored in the numbered flash-memory slot.
func (c *Client) ReadJob(id int) (*JobTransfer, error) {
	if err := validateJobID(id); err != nil {
		return nil, err
	}

	result, err := c.do(&readJobDesc, fmt.Sprintf("RJ%d", id))
	if err != nil {
		return nil, err
	}

	return &JobTransfer{
		Name:     result.PayloadName,
		Size:     result.PayloadSize,
		Data:     result.Payload,
		Checksum: result.Checksum,
	}, nil
}

var writeJobDesc = commandDesc{
	mnemonic: "WJ",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the job ID is outside the allowable range (0 to 999)",
		-2: "the job could not be written, or the job data is invalid",
		-3: "the checksum does not match the job data",
		-4: "the vision system is out of memory",
		-6: "user does not have full access to execute the command",
	},
}

// WriteJob sends a job to the numbered flash-memory slot under the given
// name.
func (c *Client) WriteJob(id int, name string, data []byte, checksum string) error {
	if err := validateJobID(id); err != nil {
		return err
	}
	if name == "" {
		return newValidationError("job name", "must not be empty")
	}

	return c.doWrite(&writeJobDesc, fmt.Sprintf("WJ%d", id), name, data, checksum)
}

var deleteJobDesc = commandDesc{
	mnemonic: "DJ",
	shape:    native.ShapeAck,
	statusText: map[int]string{
		0:  "unrecognized command",
		-1: "the job ID is outside the allowable range (0 to 999)",
		-2: "the job could not be deleted, the sensor is online, or the job slot is empty",
		-6: "user does not have full access to execute the command",
	},
}

// DeleteJob deletes the job stored in the numbered flash-memory slot.
func (c *Client) DeleteJob(id int) error {
	if err := validateJobID(id); err != nil {
		return err
	}

	_, err := c.do(&deleteJobDesc, fmt.Sprintf("DJ%d", id))

	return err
}

var getJobDesc = commandDesc{
	mnemonic: "GJ",
	shape:    native.ShapeAckValue,
	statusText: map[int]string{
		0:  "unrecognized command",
		-2: "the active job has not been saved or does not have a numerical prefix",
	},
}

// GetJob returns the slot ID of the active job. The active job must have
// been saved with a numerical prefix of 0 to 999.
func (c *Client) GetJob() (int, error) {
	result, err := c.do(&getJobDesc, "GJ")
	if err != nil {
		return 0, err
	}

	id, err := strconv.Atoi(strings.TrimSpace(result.Value))
	if err != nil {
		return 0, fmt.Errorf("%w: malformed job ID %q", native.ErrProtocol, result.Value)
	}

	return id, nil
}

func validateJobID(id int) error {
	if id < 0 || id > 999 {
		return newValidationError("job ID", "must be between 0 and 999")
	}

	return nil
}
